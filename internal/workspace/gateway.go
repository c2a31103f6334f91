package workspace

import (
	"context"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/models"
)

// Gateway is the slice of the backend a workspace needs.
type Gateway interface {
	ProjectInfo(ctx context.Context, projectID int64) (models.ProjectInfo, error)

	AddBranch(ctx context.Context, projectID int64, branch models.Branch) error
	DeleteBranch(ctx context.Context, projectID int64, branch models.Branch) error

	AddTask(ctx context.Context, projectID int64, branchID string, task models.Task) error
	EditTask(ctx context.Context, projectID int64, branchID, taskID string, task models.Task) error
	DeleteTask(ctx context.Context, projectID int64, branchID, taskID string, task models.Task) error
	MarkDone(ctx context.Context, projectID int64, branchID, taskID string) error
	MarkProblem(ctx context.Context, projectID int64, branchID, taskID, message string) error

	AddMember(ctx context.Context, projectID int64, up models.UserProject) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
	ModifyMember(ctx context.Context, projectID, userID int64, member models.ProjectMember) error
}

type apiGateway struct {
	c *apiclient.Client
}

// NewGateway serves a workspace from the backend behind c.
func NewGateway(c *apiclient.Client) Gateway {
	return apiGateway{c: c}
}

func (g apiGateway) ProjectInfo(ctx context.Context, projectID int64) (models.ProjectInfo, error) {
	return g.c.Project.Info(ctx, projectID)
}

func (g apiGateway) AddBranch(ctx context.Context, projectID int64, branch models.Branch) error {
	return g.c.Project.AddBranch(ctx, projectID, branch)
}

func (g apiGateway) DeleteBranch(ctx context.Context, projectID int64, branch models.Branch) error {
	return g.c.Project.DeleteBranch(ctx, projectID, branch)
}

func (g apiGateway) AddTask(ctx context.Context, projectID int64, branchID string, task models.Task) error {
	return g.c.Project.AddTask(ctx, projectID, branchID, task)
}

func (g apiGateway) EditTask(ctx context.Context, projectID int64, branchID, taskID string, task models.Task) error {
	return g.c.Project.EditTask(ctx, projectID, branchID, taskID, task)
}

func (g apiGateway) DeleteTask(ctx context.Context, projectID int64, branchID, taskID string, task models.Task) error {
	return g.c.Project.DeleteTask(ctx, projectID, branchID, taskID, task)
}

func (g apiGateway) MarkDone(ctx context.Context, projectID int64, branchID, taskID string) error {
	return g.c.Project.MarkDone(ctx, projectID, branchID, taskID)
}

func (g apiGateway) MarkProblem(ctx context.Context, projectID int64, branchID, taskID, message string) error {
	return g.c.Project.MarkProblem(ctx, projectID, branchID, taskID, message)
}

func (g apiGateway) AddMember(ctx context.Context, projectID int64, up models.UserProject) error {
	return g.c.Projects.AddMember(ctx, projectID, up)
}

func (g apiGateway) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return g.c.Projects.RemoveMember(ctx, projectID, userID)
}

func (g apiGateway) ModifyMember(ctx context.Context, projectID, userID int64, member models.ProjectMember) error {
	return g.c.Projects.ModifyMember(ctx, projectID, userID, member)
}
