// Package workspace drives one project's board on behalf of one user.
//
// Every mutation is checked against the caller's capabilities first, sent to
// the backend, and followed by a full refetch of the project. The snapshot is
// never patched locally.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kyri56xcaesar/pms-workspace/internal/access"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/validate"
)

var (
	ErrForbidden      = errors.New("not allowed")
	ErrTaskNotFound   = errors.New("task not found")
	ErrBranchNotFound = errors.New("branch not found")
	ErrNotMember      = errors.New("user is not a project member")
	ErrLastOwner      = errors.New("project must keep at least one owner")
)

// DefaultTaskTitle is the title a freshly added task carries.
const DefaultTaskTitle = "New task"

const dateLayout = "2006-01-02"

func forbidden(action access.Action) error {
	return fmt.Errorf("%w: %s", ErrForbidden, action)
}

// Snapshot is the project as last fetched, seen by one user.
type Snapshot struct {
	Info models.ProjectInfo  `json:"info"`
	User models.User         `json:"user"`
	Role access.Role         `json:"role"`
	Caps access.Capabilities `json:"capabilities"`
}

func newSnapshot(info models.ProjectInfo, user models.User) *Snapshot {
	role := access.Resolve(info.Project, user.ID)

	return &Snapshot{
		Info: info,
		User: user,
		Role: role,
		Caps: access.CapabilitiesFor(role),
	}
}

// Require fails with ErrForbidden unless the viewer's role is at least least.
// It gates the project-level operations that have no capability of their own.
func (s *Snapshot) Require(least access.Role, what string) error {
	if !s.Role.AtLeast(least) {
		return fmt.Errorf("%w: %s", ErrForbidden, what)
	}

	return nil
}

// Workspace holds the current snapshot of one project.
type Workspace struct {
	gw        Gateway
	projectID int64
	user      models.User
	now       func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
}

// Open fetches the project and resolves user's role in it.
func Open(ctx context.Context, gw Gateway, projectID int64, user models.User) (*Workspace, error) {
	w := &Workspace{
		gw:        gw,
		projectID: projectID,
		user:      user,
		now:       time.Now,
	}
	if err := w.Refresh(ctx); err != nil {
		return nil, err
	}

	return w, nil
}

// Snapshot returns the current snapshot.
func (w *Workspace) Snapshot() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.snap
}

// Refresh replaces the snapshot with the backend's current state.
func (w *Workspace) Refresh(ctx context.Context) error {
	info, err := w.gw.ProjectInfo(ctx, w.projectID)
	if err != nil {
		return fmt.Errorf("failed to fetch project %d: %w", w.projectID, err)
	}
	snap := newSnapshot(info, w.user)

	w.mu.Lock()
	w.snap = snap
	w.mu.Unlock()

	return nil
}

// mutate runs call and refetches. A failed call leaves the snapshot as it was.
func (w *Workspace) mutate(ctx context.Context, call func() error) error {
	if err := call(); err != nil {
		return err
	}

	return w.Refresh(ctx)
}

func (w *Workspace) task(branchID, taskID string) (models.Task, error) {
	t, ok := w.Snapshot().Info.FindTask(branchID, taskID)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s/%s", ErrTaskNotFound, branchID, taskID)
	}

	return t, nil
}

// MarkDone resolves a task as done. Members may only resolve tasks assigned
// to them.
func (w *Workspace) MarkDone(ctx context.Context, branchID, taskID string) error {
	snap := w.Snapshot()
	t, err := w.task(branchID, taskID)
	if err != nil {
		return err
	}
	if !snap.Caps.CanResolveTask(t, snap.User.ID) {
		return forbidden(access.ResolveTask)
	}

	return w.mutate(ctx, func() error {
		return w.gw.MarkDone(ctx, w.projectID, branchID, taskID)
	})
}

// MarkProblem flags a task as having a problem, with message.
func (w *Workspace) MarkProblem(ctx context.Context, branchID, taskID, message string) error {
	snap := w.Snapshot()
	t, err := w.task(branchID, taskID)
	if err != nil {
		return err
	}
	if !snap.Caps.CanResolveTask(t, snap.User.ID) {
		return forbidden(access.ResolveTask)
	}

	return w.mutate(ctx, func() error {
		return w.gw.MarkProblem(ctx, w.projectID, branchID, taskID, message)
	})
}

// Assign sets the task's assignee. The assignee is a weak reference and need
// not be a project member.
func (w *Workspace) Assign(ctx context.Context, branchID, taskID string, userID int64) error {
	if !w.Snapshot().Caps.Can(access.AssignTask) {
		return forbidden(access.AssignTask)
	}
	t, err := w.task(branchID, taskID)
	if err != nil {
		return err
	}
	t.AssignedTo = models.Int64P(userID)

	return w.mutate(ctx, func() error {
		return w.gw.EditTask(ctx, w.projectID, branchID, taskID, t)
	})
}

// Unassign clears the task's assignee.
func (w *Workspace) Unassign(ctx context.Context, branchID, taskID string) error {
	if !w.Snapshot().Caps.Can(access.UnassignTask) {
		return forbidden(access.UnassignTask)
	}
	t, err := w.task(branchID, taskID)
	if err != nil {
		return err
	}
	t.AssignedTo = nil

	return w.mutate(ctx, func() error {
		return w.gw.EditTask(ctx, w.projectID, branchID, taskID, t)
	})
}

// TaskEdit carries the editable task fields. Nil fields keep their value.
type TaskEdit struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	SkillID     *int64  `json:"skillId,omitempty"`
	File        *string `json:"file,omitempty"`
}

func (e TaskEdit) apply(t models.Task) models.Task {
	if e.Title != nil {
		t.Title = strings.TrimSpace(*e.Title)
	}
	if e.Description != nil {
		t.Description = e.Description
	}
	if e.StartDate != nil {
		t.StartDate = *e.StartDate
	}
	if e.EndDate != nil {
		t.EndDate = *e.EndDate
	}
	if e.SkillID != nil {
		t.SkillID = e.SkillID
	}
	if e.File != nil {
		t.File = e.File
	}

	return t
}

// Edit updates a task's fields. Done and problem flags are left alone.
func (w *Workspace) Edit(ctx context.Context, branchID, taskID string, edit TaskEdit) error {
	if !w.Snapshot().Caps.Can(access.EditTask) {
		return forbidden(access.EditTask)
	}
	t, err := w.task(branchID, taskID)
	if err != nil {
		return err
	}
	t = edit.apply(t)
	if err := validate.TaskFields(t.Title, t.StartDate, t.EndDate); err != nil {
		return err
	}

	return w.mutate(ctx, func() error {
		return w.gw.EditTask(ctx, w.projectID, branchID, taskID, t)
	})
}

// AddTask appends a task to a branch. Unset fields take the defaults of a new
// card: a placeholder title and today as both start and deadline.
func (w *Workspace) AddTask(ctx context.Context, branchID string, edit TaskEdit) error {
	if !w.Snapshot().Caps.Can(access.CreateTask) {
		return forbidden(access.CreateTask)
	}
	if _, ok := w.Snapshot().Info.FindBranch(branchID); !ok {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
	}
	today := w.now().Format(dateLayout)
	t := edit.apply(models.Task{
		Title:       DefaultTaskTitle,
		Description: models.StringP("..."),
		StartDate:   today,
		EndDate:     today,
	})
	if err := validate.TaskFields(t.Title, t.StartDate, t.EndDate); err != nil {
		return err
	}

	return w.mutate(ctx, func() error {
		return w.gw.AddTask(ctx, w.projectID, branchID, t)
	})
}

func (w *Workspace) DeleteTask(ctx context.Context, branchID, taskID string) error {
	if !w.Snapshot().Caps.Can(access.DeleteTask) {
		return forbidden(access.DeleteTask)
	}
	t, err := w.task(branchID, taskID)
	if err != nil {
		return err
	}

	return w.mutate(ctx, func() error {
		return w.gw.DeleteTask(ctx, w.projectID, branchID, taskID, t)
	})
}

// AddBranch creates an empty, active branch. Names are unique per project.
func (w *Workspace) AddBranch(ctx context.Context, name string) error {
	snap := w.Snapshot()
	if !snap.Caps.Can(access.CreateBranch) {
		return forbidden(access.CreateBranch)
	}
	if err := validate.BranchName(name, snap.Info.Board.Branches); err != nil {
		return err
	}
	active := true
	branch := models.Branch{Name: strings.TrimSpace(name), Active: &active}

	return w.mutate(ctx, func() error {
		return w.gw.AddBranch(ctx, w.projectID, branch)
	})
}

func (w *Workspace) DeleteBranch(ctx context.Context, branchID string) error {
	snap := w.Snapshot()
	if !snap.Caps.Can(access.DeleteBranch) {
		return forbidden(access.DeleteBranch)
	}
	b, ok := snap.Info.FindBranch(branchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
	}

	return w.mutate(ctx, func() error {
		return w.gw.DeleteBranch(ctx, w.projectID, b)
	})
}

// AddMembers adds each user with role, skipping current members. It returns
// how many were added.
func (w *Workspace) AddMembers(ctx context.Context, userIDs []int64, role access.Role) (int, error) {
	snap := w.Snapshot()
	if !snap.Caps.Can(access.AddMembers) {
		return 0, forbidden(access.AddMembers)
	}
	if role == access.None {
		role = access.Member
	}

	added := 0
	err := w.mutate(ctx, func() error {
		for _, id := range userIDs {
			if _, ok := member(snap.Info.Project, id); ok {
				continue
			}
			err := w.gw.AddMember(ctx, w.projectID, models.UserProject{
				UserID:      id,
				ProjectID:   w.projectID,
				ProjectRole: role.String(),
			})
			if err != nil {
				return fmt.Errorf("failed to add user %d: %w", id, err)
			}
			added++
		}

		return nil
	})
	if err != nil && added > 0 {
		// some users made it in before the failure
		_ = w.Refresh(ctx)
	}

	return added, err
}

// RemoveMember takes a user off the project. Removing oneself is leaving and
// needs the leave capability instead of member management.
func (w *Workspace) RemoveMember(ctx context.Context, userID int64) error {
	snap := w.Snapshot()
	action := access.RemoveMembers
	if userID == snap.User.ID {
		action = access.LeaveProject
	}
	if !snap.Caps.Can(action) {
		return forbidden(action)
	}
	m, ok := member(snap.Info.Project, userID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotMember, userID)
	}
	if isLastOwner(snap.Info.Project, m) {
		return ErrLastOwner
	}

	return w.mutate(ctx, func() error {
		return w.gw.RemoveMember(ctx, w.projectID, userID)
	})
}

// ChangeMemberRole sets a member's project role.
func (w *Workspace) ChangeMemberRole(ctx context.Context, userID int64, role access.Role) error {
	snap := w.Snapshot()
	if !snap.Caps.Can(access.EditMembers) {
		return forbidden(access.EditMembers)
	}
	if role == access.None {
		return fmt.Errorf("invalid project role: %s", role)
	}
	m, ok := member(snap.Info.Project, userID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotMember, userID)
	}
	if role != access.Owner && isLastOwner(snap.Info.Project, m) {
		return ErrLastOwner
	}
	m.Role = role.String()

	return w.mutate(ctx, func() error {
		return w.gw.ModifyMember(ctx, w.projectID, userID, m)
	})
}

func member(p models.Project, userID int64) (models.ProjectMember, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}

	return models.ProjectMember{}, false
}

func isLastOwner(p models.Project, m models.ProjectMember) bool {
	r, err := access.ParseRole(m.Role)

	return err == nil && r == access.Owner && access.CountOwners(p) <= 1
}
