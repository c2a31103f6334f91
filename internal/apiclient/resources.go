package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"kyri56xcaesar/pms-workspace/internal/models"
)

// AuthAPI signs users in and up. Both answer a bearer token.
type AuthAPI struct{ c *Client }

func (a *AuthAPI) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var tok string
	err := a.c.post(ctx, "/auth/login", creds, &tok)

	return tok, err
}

func (a *AuthAPI) Register(ctx context.Context, creds models.Credentials) (string, error) {
	var tok string
	err := a.c.post(ctx, "/auth/register", creds, &tok)

	return tok, err
}

// ProjectAPI works inside one project: branches, tasks and statistics.
type ProjectAPI struct{ c *Client }

func projectPath(projectID int64, rest ...string) string {
	p := fmt.Sprintf("/project/%d", projectID)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}

	return p
}

func (p *ProjectAPI) Info(ctx context.Context, projectID int64) (models.ProjectInfo, error) {
	var info models.ProjectInfo
	err := p.c.get(ctx, projectPath(projectID), &info)

	return info, err
}

// Stats asks for the project's task statistics. The backend exposes this as a
// POST on the project path.
func (p *ProjectAPI) Stats(ctx context.Context, projectID int64) (models.TaskStatistics, error) {
	var stats models.TaskStatistics
	err := p.c.post(ctx, projectPath(projectID), nil, &stats)

	return stats, err
}

func (p *ProjectAPI) AddBranch(ctx context.Context, projectID int64, branch models.Branch) error {
	return p.c.post(ctx, projectPath(projectID)+"/branch", branch, nil)
}

func (p *ProjectAPI) EditBranch(ctx context.Context, projectID int64, branch models.Branch) error {
	return p.c.post(ctx, projectPath(projectID)+"/branch/edit", branch, nil)
}

func (p *ProjectAPI) DeleteBranch(ctx context.Context, projectID int64, branch models.Branch) error {
	return p.c.post(ctx, projectPath(projectID)+"/branch/delete", branch, nil)
}

func (p *ProjectAPI) AddTask(ctx context.Context, projectID int64, branchID string, task models.Task) error {
	return p.c.post(ctx, projectPath(projectID, "branch", branchID), task, nil)
}

func (p *ProjectAPI) EditTask(ctx context.Context, projectID int64, branchID, taskID string, task models.Task) error {
	return p.c.post(ctx, projectPath(projectID, "branch", branchID, "task", taskID), task, nil)
}

func (p *ProjectAPI) DeleteTask(ctx context.Context, projectID int64, branchID, taskID string, task models.Task) error {
	return p.c.post(ctx, projectPath(projectID, "branch", branchID, "task", taskID, "delete"), task, nil)
}

func (p *ProjectAPI) MarkDone(ctx context.Context, projectID int64, branchID, taskID string) error {
	return p.c.post(ctx, projectPath(projectID, "branch", branchID, "task", taskID, "done"), nil, nil)
}

type problemReport struct {
	ProblemMessage string `json:"problemMessage"`
}

func (p *ProjectAPI) MarkProblem(ctx context.Context, projectID int64, branchID, taskID, message string) error {
	return p.c.post(ctx, projectPath(projectID, "branch", branchID, "task", taskID, "problem"), problemReport{ProblemMessage: message}, nil)
}

// ProjectsAPI manages the project collection and its memberships.
type ProjectsAPI struct{ c *Client }

func (p *ProjectsAPI) List(ctx context.Context) ([]models.Project, error) {
	out := []models.Project{}
	err := p.c.get(ctx, "/projects/list", &out)

	return out, err
}

func (p *ProjectsAPI) Create(ctx context.Context, project models.Project) (models.Project, error) {
	var out models.Project
	err := p.c.post(ctx, "/projects", project, &out)

	return out, err
}

func (p *ProjectsAPI) Edit(ctx context.Context, projectID int64, project models.Project) (models.Project, error) {
	var out models.Project
	err := p.c.post(ctx, fmt.Sprintf("/projects/%d/edit", projectID), project, &out)

	return out, err
}

func (p *ProjectsAPI) Delete(ctx context.Context, projectID int64) error {
	return p.c.post(ctx, fmt.Sprintf("/projects/%d/delete", projectID), nil, nil)
}

func (p *ProjectsAPI) AddMember(ctx context.Context, projectID int64, up models.UserProject) error {
	return p.c.post(ctx, fmt.Sprintf("/projects/%d/users", projectID), up, nil)
}

func (p *ProjectsAPI) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return p.c.post(ctx, fmt.Sprintf("/projects/%d/users/%d", projectID, userID), nil, nil)
}

func (p *ProjectsAPI) ModifyMember(ctx context.Context, projectID, userID int64, member models.ProjectMember) error {
	return p.c.post(ctx, fmt.Sprintf("/projects/%d/users/%d/edit", projectID, userID), member, nil)
}

// UsersAPI is the signed-in user's own profile and tasks.
type UsersAPI struct{ c *Client }

func (u *UsersAPI) Me(ctx context.Context) (models.User, error) {
	var me models.User
	err := u.c.get(ctx, "/user", &me)

	return me, err
}

func (u *UsersAPI) Edit(ctx context.Context, user models.User) (models.User, error) {
	var out models.User
	err := u.c.post(ctx, "/user/edit", user, &out)

	return out, err
}

func (u *UsersAPI) Tasks(ctx context.Context) ([]models.Task, error) {
	out := []models.Task{}
	err := u.c.get(ctx, "/user/tasks", &out)

	return out, err
}

// AdminAPI is the admin panel: the skill catalogue and user accounts.
type AdminAPI struct{ c *Client }

func (a *AdminAPI) Skills(ctx context.Context) ([]models.Skill, error) {
	out := []models.Skill{}
	err := a.c.get(ctx, "/admin/skills", &out)

	return out, err
}

func (a *AdminAPI) AddSkill(ctx context.Context, skill models.Skill) ([]models.Skill, error) {
	out := []models.Skill{}
	err := a.c.post(ctx, "/admin/skills", skill, &out)

	return out, err
}

// DeleteSkill is a GET on the backend.
func (a *AdminAPI) DeleteSkill(ctx context.Context, skillID int64) error {
	return a.c.get(ctx, fmt.Sprintf("/admin/skills/%d/delete", skillID), nil)
}

func (a *AdminAPI) Users(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := a.c.get(ctx, "/admin/user", &out)

	return out, err
}

func (a *AdminAPI) SetRole(ctx context.Context, userID int64, globalRole string) error {
	r := a.c.request(ctx).SetQueryParam("role", globalRole)

	return a.c.do(r, "POST", fmt.Sprintf("/admin/user/%d", userID), nil)
}

func (a *AdminAPI) DeleteUser(ctx context.Context, userID int64) error {
	return a.c.post(ctx, fmt.Sprintf("/admin/user/%d/delete", userID), nil, nil)
}

// StorageAPI uploads files and resolves the relative paths it hands back.
type StorageAPI struct{ c *Client }

// Upload sends one file as multipart field "file" and returns its
// storage-relative path.
func (s *StorageAPI) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	var path string
	r := s.c.request(ctx).SetFileReader("file", fileName, content)
	err := s.c.do(r, "POST", "/images", &path)

	return path, err
}

// ResolveURL joins a storage-relative path onto the storage base URL.
// Absolute URLs and empty paths come back unchanged.
func (s *StorageAPI) ResolveURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return s.c.storageURL + path
}
