package front

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kyri56xcaesar/pms-workspace/internal/access"
	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/utils"
	"kyri56xcaesar/pms-workspace/internal/validate"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := clientFrom(c).Projects.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusOK, gin.H{"projects": filter.Projects(projects, c.Query("q"))})
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "bad data")
		return
	}
	api := clientFrom(c).Projects
	existing, err := api.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := validate.ProjectName(req.Name, existing, nil); err != nil {
		s.fail(c, err)
		return
	}

	created, err := api.Create(c.Request.Context(), models.Project{
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		IsActive:    true,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusCreated, created)
}

// projectRole opens :id and refuses callers whose role is below least.
func (s *Server) projectRole(c *gin.Context, least access.Role, what string) (*workspace.Workspace, bool) {
	ws, ok := s.openWorkspace(c)
	if !ok {
		return nil, false
	}
	if err := ws.Snapshot().Require(least, what); err != nil {
		s.fail(c, err)
		return nil, false
	}

	return ws, true
}

func (s *Server) handleEditProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "bad data")
		return
	}
	ws, ok := s.projectRole(c, access.Manager, "edit project")
	if !ok {
		return
	}
	api := clientFrom(c).Projects
	existing, err := api.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	project := ws.Snapshot().Info.Project
	if err := validate.ProjectName(req.Name, existing, models.Int64P(ws.Snapshot().Info.ProjectID)); err != nil {
		s.fail(c, err)
		return
	}
	project.Name = req.Name
	project.Description = req.Description
	if req.AvatarURL != nil {
		project.AvatarURL = req.AvatarURL
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if _, err := api.Edit(c.Request.Context(), ws.Snapshot().Info.ProjectID, project); err != nil {
		s.fail(c, err)
		return
	}
	if err := ws.Refresh(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}

	boardResponse(c, ws)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	ws, ok := s.projectRole(c, access.Owner, "delete project")
	if !ok {
		return
	}
	if err := clientFrom(c).Projects.Delete(c.Request.Context(), ws.Snapshot().Info.ProjectID); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleBoard(c *gin.Context) {
	ws, ok := s.openWorkspace(c)
	if !ok {
		return
	}

	boardResponse(c, ws)
}

func (s *Server) handleProjectWeek(c *gin.Context) {
	week, ok := weekFrom(c)
	if !ok {
		return
	}
	ws, ok := s.openWorkspace(c)
	if !ok {
		return
	}
	snap := ws.Snapshot()
	tasks := snap.Tasks()
	if c.Query("mine") == "true" {
		tasks = utils.Filter(tasks, func(t models.Task) bool { return t.IsAssignedTo(snap.User.ID) })
	}

	respondInFormat(c, http.StatusOK, weekVM(week, tasks))
}

func (s *Server) handleAddBranch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "bad data")
		return
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.AddBranch(c.Request.Context(), req.Name)
	})
}

func (s *Server) handleDeleteBranch(c *gin.Context) {
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.DeleteBranch(c.Request.Context(), c.Param("bid"))
	})
}

func (s *Server) handleAddTask(c *gin.Context) {
	var edit workspace.TaskEdit
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&edit); err != nil {
			badRequest(c, "bad data")
			return
		}
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.AddTask(c.Request.Context(), c.Param("bid"), edit)
	})
}

func (s *Server) handleEditTask(c *gin.Context) {
	var edit workspace.TaskEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		badRequest(c, "bad data")
		return
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.Edit(c.Request.Context(), c.Param("bid"), c.Param("tid"), edit)
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.DeleteTask(c.Request.Context(), c.Param("bid"), c.Param("tid"))
	})
}

func (s *Server) handleMarkDone(c *gin.Context) {
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.MarkDone(c.Request.Context(), c.Param("bid"), c.Param("tid"))
	})
}

func (s *Server) handleMarkProblem(c *gin.Context) {
	var req ProblemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "bad data")
			return
		}
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.MarkProblem(c.Request.Context(), c.Param("bid"), c.Param("tid"), req.Message)
	})
}

func (s *Server) handleAssign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "userId is required")
		return
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.Assign(c.Request.Context(), c.Param("bid"), c.Param("tid"), req.UserID)
	})
}

func (s *Server) handleUnassign(c *gin.Context) {
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.Unassign(c.Request.Context(), c.Param("bid"), c.Param("tid"))
	})
}

func (s *Server) handleAddMembers(c *gin.Context) {
	var req MembersRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "userIds are required")
		return
	}
	role := access.Member
	if req.Role != "" {
		parsed, err := access.ParseRole(req.Role)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		role = parsed
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		_, err := ws.AddMembers(c.Request.Context(), req.UserIDs, role)
		return err
	})
}

func (s *Server) handleRemoveMember(c *gin.Context) {
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.RemoveMember(c.Request.Context(), userID)
	})
}

func (s *Server) handleMemberRole(c *gin.Context) {
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	var req RoleRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "role is required")
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	s.mutateBoard(c, func(ws *workspace.Workspace) error {
		return ws.ChangeMemberRole(c.Request.Context(), userID, role)
	})
}

func (s *Server) handleLeave(c *gin.Context) {
	ws, ok := s.openWorkspace(c)
	if !ok {
		return
	}
	if err := ws.RemoveMember(c.Request.Context(), ws.Snapshot().User.ID); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left", "redirect": "/projects"})
}

// handleUserSearch backs the add-member and assign dialogs. ?project=<id>
// drops users already in that project.
func (s *Server) handleUserSearch(c *gin.Context) {
	var skillIDs []int64
	for _, raw := range c.QueryArray("skill") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid skill id")
			return
		}
		skillIDs = append(skillIDs, id)
	}

	ctx := c.Request.Context()
	api := clientFrom(c)
	users, err := api.Admin.Users(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	if raw := c.Query("project"); raw != "" {
		projectID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid project id")
			return
		}
		info, err := api.Project.Info(ctx, projectID)
		if err != nil {
			s.fail(c, err)
			return
		}
		users = filter.NonMembers(users, info.Project)
	}

	skills, err := api.Admin.Skills(ctx)
	if err != nil {
		// the skill facets are optional
		log.Printf("failed to fetch skills: %v", err)
		skills = nil
	}

	respondInFormat(c, http.StatusOK, UserSearchVM{
		Users:  filter.Users(users, c.Query("q"), skillIDs),
		Skills: filter.HeldSkills(users, skills),
	})
}

const maxUploadSize = 10 << 20

func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing file")
		return
	}
	if fh.Size > maxUploadSize {
		badRequest(c, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	// stored under a random name, keeping the extension
	name := uuid.NewString() + filepath.Ext(fh.Filename)
	api := clientFrom(c).Storage
	path, err := api.Upload(c.Request.Context(), name, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if path == "" {
		s.fail(c, errors.New("storage returned an empty path"))
		return
	}

	respondInFormat(c, http.StatusOK, gin.H{"path": path, "url": api.ResolveURL(path)})
}
