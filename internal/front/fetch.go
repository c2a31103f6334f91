package front

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/validate"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

// genericFailure is the toast shown for any failed backend action.
const genericFailure = "Something went wrong, please try again"

// fail maps err onto a response and aborts the chain. A rejected session
// signs the browser out.
func (s *Server) fail(c *gin.Context, err error) {
	if fe, ok := validate.AsFieldErrors(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": fe})
		return
	}

	switch {
	case apiclient.IsAuthError(err):
		s.signOut(c, sessionFrom(c))
		unauthorized(c, "session expired")
	case errors.Is(err, workspace.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, workspace.ErrLastOwner):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workspace.ErrTaskNotFound),
		errors.Is(err, workspace.ErrBranchNotFound),
		errors.Is(err, workspace.ErrNotMember),
		apiclient.IsNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Printf("[%s] failed backend call: %v", c.GetString(requestIDKey), err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": genericFailure})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}

	return id, true
}

// openWorkspace fetches the project in :id as seen by the signed-in user.
func (s *Server) openWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	me, ok := s.currentUser(c)
	if !ok {
		return nil, false
	}

	ws, err := workspace.Open(c.Request.Context(), workspace.NewGateway(clientFrom(c)), projectID, me)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}

	return ws, true
}

// boardResponse is what every board action answers with: the refetched
// board and its members.
func boardResponse(c *gin.Context, ws *workspace.Workspace) {
	snap := ws.Snapshot()
	respondInFormat(c, http.StatusOK, BoardVM{
		Board:   snap.Board(),
		Project: snap.Info.Project,
	})
}

// mutateBoard runs one workspace action and answers with the fresh board.
func (s *Server) mutateBoard(c *gin.Context, action func(ws *workspace.Workspace) error) {
	ws, ok := s.openWorkspace(c)
	if !ok {
		return
	}
	if err := action(ws); err != nil {
		s.fail(c, err)
		return
	}

	boardResponse(c, ws)
}
