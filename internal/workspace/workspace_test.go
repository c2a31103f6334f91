package workspace

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/pms-workspace/internal/access"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/validate"
)

// fakeBackend keeps one project in memory and applies mutations the way the
// backend does.
type fakeBackend struct {
	info    models.ProjectInfo
	calls   []string
	fetches int
	fail    error
	nextID  int
}

func (f *fakeBackend) record(call string) error {
	f.calls = append(f.calls, call)

	return f.fail
}

func (f *fakeBackend) taskRef(branchID, taskID string) *models.Task {
	for bi := range f.info.Board.Branches {
		b := &f.info.Board.Branches[bi]
		if b.ID() != branchID {
			continue
		}
		for ti := range b.Tasks {
			if b.Tasks[ti].ID() == taskID {
				return &b.Tasks[ti]
			}
		}
	}

	return nil
}

func (f *fakeBackend) ProjectInfo(_ context.Context, _ int64) (models.ProjectInfo, error) {
	f.fetches++
	// hand out a deep enough copy so the caller's snapshot does not alias ours
	out := f.info
	out.Project.Members = append([]models.ProjectMember(nil), f.info.Project.Members...)
	out.Board.Branches = make([]models.Branch, len(f.info.Board.Branches))
	for i, b := range f.info.Board.Branches {
		b.Tasks = append([]models.Task(nil), b.Tasks...)
		out.Board.Branches[i] = b
	}

	return out, nil
}

func (f *fakeBackend) AddBranch(_ context.Context, _ int64, branch models.Branch) error {
	if err := f.record("addBranch"); err != nil {
		return err
	}
	f.nextID++
	branch.BranchID = models.StringP(fmt.Sprintf("nb%d", f.nextID))
	f.info.Board.Branches = append(f.info.Board.Branches, branch)

	return nil
}

func (f *fakeBackend) DeleteBranch(_ context.Context, _ int64, branch models.Branch) error {
	if err := f.record("deleteBranch"); err != nil {
		return err
	}
	kept := f.info.Board.Branches[:0]
	for _, b := range f.info.Board.Branches {
		if b.ID() != branch.ID() {
			kept = append(kept, b)
		}
	}
	f.info.Board.Branches = kept

	return nil
}

func (f *fakeBackend) AddTask(_ context.Context, _ int64, branchID string, task models.Task) error {
	if err := f.record("addTask"); err != nil {
		return err
	}
	for i := range f.info.Board.Branches {
		if f.info.Board.Branches[i].ID() == branchID {
			f.nextID++
			task.TaskID = models.StringP(fmt.Sprintf("nt%d", f.nextID))
			f.info.Board.Branches[i].Tasks = append(f.info.Board.Branches[i].Tasks, task)
		}
	}

	return nil
}

func (f *fakeBackend) EditTask(_ context.Context, _ int64, branchID, taskID string, task models.Task) error {
	if err := f.record("editTask"); err != nil {
		return err
	}
	*f.taskRef(branchID, taskID) = task

	return nil
}

func (f *fakeBackend) DeleteTask(_ context.Context, _ int64, branchID, taskID string, _ models.Task) error {
	if err := f.record("deleteTask"); err != nil {
		return err
	}
	for i := range f.info.Board.Branches {
		b := &f.info.Board.Branches[i]
		if b.ID() != branchID {
			continue
		}
		kept := b.Tasks[:0]
		for _, t := range b.Tasks {
			if t.ID() != taskID {
				kept = append(kept, t)
			}
		}
		b.Tasks = kept
	}

	return nil
}

func (f *fakeBackend) MarkDone(_ context.Context, _ int64, branchID, taskID string) error {
	if err := f.record("done"); err != nil {
		return err
	}
	t := f.taskRef(branchID, taskID)
	t.Done, t.HasProblem = true, false

	return nil
}

func (f *fakeBackend) MarkProblem(_ context.Context, _ int64, branchID, taskID, message string) error {
	if err := f.record("problem"); err != nil {
		return err
	}
	t := f.taskRef(branchID, taskID)
	t.Done, t.HasProblem, t.ProblemMessage = false, true, models.StringP(message)

	return nil
}

func (f *fakeBackend) AddMember(_ context.Context, _ int64, up models.UserProject) error {
	if err := f.record("addMember"); err != nil {
		return err
	}
	f.info.Project.Members = append(f.info.Project.Members, models.ProjectMember{
		ID: int64(len(f.info.Project.Members) + 100), UserID: up.UserID, Role: up.ProjectRole,
	})

	return nil
}

func (f *fakeBackend) RemoveMember(_ context.Context, _ int64, userID int64) error {
	if err := f.record("removeMember"); err != nil {
		return err
	}
	kept := f.info.Project.Members[:0]
	for _, m := range f.info.Project.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.info.Project.Members = kept

	return nil
}

func (f *fakeBackend) ModifyMember(_ context.Context, _ int64, userID int64, member models.ProjectMember) error {
	if err := f.record("modifyMember"); err != nil {
		return err
	}
	for i := range f.info.Project.Members {
		if f.info.Project.Members[i].UserID == userID {
			f.info.Project.Members[i].Role = member.Role
		}
	}

	return nil
}

const (
	ownerID   int64 = 1
	managerID int64 = 2
	uID       int64 = 3 // member assigned to t1
	vID       int64 = 4 // member with nothing assigned
	outsider  int64 = 9
)

func newBackend() *fakeBackend {
	return &fakeBackend{info: models.ProjectInfo{
		ProjectID: 10,
		Project: models.Project{
			ID:   models.Int64P(10),
			Name: "Apollo",
			Members: []models.ProjectMember{
				{ID: 1, UserID: ownerID, Role: "OWNER"},
				{ID: 2, UserID: managerID, Role: "MANAGER"},
				{ID: 3, UserID: uID, Role: "MEMBER"},
				{ID: 4, UserID: vID, Role: "member"},
			},
		},
		Board: models.ProjectStatistics{
			ProjectID: 10,
			Branches: []models.Branch{
				{
					BranchID: models.StringP("b1"),
					Name:     "main",
					Tasks: []models.Task{
						{TaskID: models.StringP("t1"), Title: "write docs", StartDate: "2024-03-04", EndDate: "2024-03-06", AssignedTo: models.Int64P(uID)},
						{TaskID: models.StringP("t2"), Title: "review", StartDate: "2024-03-05", EndDate: "2024-03-05"},
					},
				},
				{BranchID: models.StringP("b2"), Name: "qa"},
			},
		},
	}}
}

func open(t *testing.T, be *fakeBackend, userID int64) *Workspace {
	t.Helper()
	w, err := Open(context.Background(), be, 10, models.User{ID: userID})
	require.NoError(t, err)

	return w
}

func taskIn(t *testing.T, w *Workspace, branchID, taskID string) models.Task {
	t.Helper()
	task, ok := w.Snapshot().Info.FindTask(branchID, taskID)
	require.True(t, ok)

	return task
}

func TestOpenResolvesRole(t *testing.T) {
	be := newBackend()
	assert.Equal(t, access.Owner, open(t, be, ownerID).Snapshot().Role)
	assert.Equal(t, access.Manager, open(t, be, managerID).Snapshot().Role)
	assert.Equal(t, access.Member, open(t, be, vID).Snapshot().Role)

	viewer := open(t, be, outsider).Snapshot()
	assert.Equal(t, access.None, viewer.Role)
	assert.Equal(t, access.CapabilitiesFor(access.None), viewer.Caps)
}

func TestAssigneeMarksDone(t *testing.T) {
	be := newBackend()
	w := open(t, be, uID)

	require.NoError(t, w.MarkDone(context.Background(), "b1", "t1"))

	got := taskIn(t, w, "b1", "t1")
	assert.True(t, got.Done)
	assert.False(t, got.HasProblem)
	assert.Equal(t, 2, be.fetches, "open plus one refetch")
}

func TestMemberCannotResolveOthersTask(t *testing.T) {
	be := newBackend()
	w := open(t, be, vID)

	err := w.MarkDone(context.Background(), "b1", "t1")
	assert.ErrorIs(t, err, ErrForbidden)
	err = w.MarkProblem(context.Background(), "b1", "t1", "stuck")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, be.calls)
}

func TestMemberCannotAssign(t *testing.T) {
	be := newBackend()
	w := open(t, be, vID)
	before := w.Snapshot()

	err := w.Assign(context.Background(), "b1", "t2", outsider)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), string(access.AssignTask))
	assert.Empty(t, be.calls)
	assert.Equal(t, 1, be.fetches)
	assert.Same(t, before, w.Snapshot())
	assert.Nil(t, taskIn(t, w, "b1", "t2").AssignedTo)
}

func TestDoneThenProblemLeavesProblem(t *testing.T) {
	be := newBackend()
	w := open(t, be, managerID)
	ctx := context.Background()

	require.NoError(t, w.MarkDone(ctx, "b1", "t2"))
	require.NoError(t, w.MarkProblem(ctx, "b1", "t2", "flaky"))

	got := taskIn(t, w, "b1", "t2")
	assert.False(t, got.Done)
	assert.True(t, got.HasProblem)
	assert.Equal(t, "flaky", *got.ProblemMessage)
	assert.Equal(t, models.TaskProblem, got.State())

	// done again keeps the message as history
	require.NoError(t, w.MarkDone(ctx, "b1", "t2"))
	got = taskIn(t, w, "b1", "t2")
	assert.Equal(t, models.TaskDone, got.State())
	assert.Equal(t, "flaky", *got.ProblemMessage)
}

func TestEditPreservesFlags(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)
	ctx := context.Background()

	require.NoError(t, w.MarkProblem(ctx, "b1", "t1", "blocked"))
	require.NoError(t, w.Edit(ctx, "b1", "t1", TaskEdit{Title: models.StringP("  rewritten  ")}))

	got := taskIn(t, w, "b1", "t1")
	assert.Equal(t, "rewritten", got.Title)
	assert.True(t, got.HasProblem)
	assert.False(t, got.Done)
	assert.Equal(t, "2024-03-04", got.StartDate)
	assert.True(t, got.IsAssignedTo(uID))
}

func TestEditValidates(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)

	err := w.Edit(context.Background(), "b1", "t1", TaskEdit{EndDate: models.StringP("2024-03-01")})
	fe, ok := validate.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "endDate")
	assert.Empty(t, be.calls)

	err = w.Edit(context.Background(), "b1", "nope", TaskEdit{})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemberCannotEdit(t *testing.T) {
	be := newBackend()
	w := open(t, be, uID)

	err := w.Edit(context.Background(), "b1", "t1", TaskEdit{Title: models.StringP("x")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, be.calls)
}

func TestAssignAndUnassign(t *testing.T) {
	be := newBackend()
	w := open(t, be, managerID)
	ctx := context.Background()

	require.NoError(t, w.MarkDone(ctx, "b1", "t2"))
	require.NoError(t, w.Assign(ctx, "b1", "t2", outsider))
	got := taskIn(t, w, "b1", "t2")
	assert.True(t, got.IsAssignedTo(outsider))
	assert.True(t, got.Done, "assignment does not touch the flags")

	require.NoError(t, w.Unassign(ctx, "b1", "t2"))
	got = taskIn(t, w, "b1", "t2")
	assert.Nil(t, got.AssignedTo)
	assert.True(t, got.Done)
	assert.Equal(t, []string{"done", "editTask", "editTask"}, be.calls)
}

func TestAddTaskDefaults(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)
	w.now = func() time.Time { return time.Date(2024, 5, 17, 15, 0, 0, 0, time.UTC) }

	require.NoError(t, w.AddTask(context.Background(), "b2", TaskEdit{}))

	b, ok := w.Snapshot().Info.FindBranch("b2")
	require.True(t, ok)
	require.Len(t, b.Tasks, 1)
	nt := b.Tasks[0]
	assert.Equal(t, DefaultTaskTitle, nt.Title)
	assert.Equal(t, "2024-05-17", nt.StartDate)
	assert.Equal(t, "2024-05-17", nt.EndDate)
	assert.False(t, nt.Done)
	assert.False(t, nt.HasProblem)
	assert.Nil(t, nt.AssignedTo)

	assert.ErrorIs(t, w.AddTask(context.Background(), "missing", TaskEdit{}), ErrBranchNotFound)
}

func TestDeleteTask(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)

	require.NoError(t, w.DeleteTask(context.Background(), "b1", "t2"))
	_, ok := w.Snapshot().Info.FindTask("b1", "t2")
	assert.False(t, ok)

	member := open(t, be, uID)
	assert.ErrorIs(t, member.DeleteTask(context.Background(), "b1", "t1"), ErrForbidden)
}

func TestBranches(t *testing.T) {
	be := newBackend()
	w := open(t, be, managerID)
	ctx := context.Background()

	require.NoError(t, w.AddBranch(ctx, " design "))
	tabs := w.Snapshot().Board().Tabs
	require.Len(t, tabs, 3)
	assert.Equal(t, "design", tabs[2].Name)
	assert.Empty(t, tabs[2].Cards)

	_, ok := validate.AsFieldErrors(w.AddBranch(ctx, "QA"))
	assert.True(t, ok, "duplicate names are rejected")
	_, ok = validate.AsFieldErrors(w.AddBranch(ctx, "  "))
	assert.True(t, ok)

	require.NoError(t, w.DeleteBranch(ctx, "b2"))
	_, found := w.Snapshot().Info.FindBranch("b2")
	assert.False(t, found)
	assert.ErrorIs(t, w.DeleteBranch(ctx, "b2"), ErrBranchNotFound)

	member := open(t, be, vID)
	assert.ErrorIs(t, member.AddBranch(ctx, "x"), ErrForbidden)
	assert.ErrorIs(t, member.DeleteBranch(ctx, "b1"), ErrForbidden)
}

func TestAddMembersSkipsExisting(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)

	n, err := w.AddMembers(context.Background(), []int64{uID, 20, 21}, access.None)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, access.Member, access.Resolve(w.Snapshot().Info.Project, 20))

	n, err = open(t, be, vID).AddMembers(context.Background(), []int64{30}, access.Member)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, n)
}

func TestAddMembersPartialFailureRefetches(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)
	fetched := be.fetches

	failing := &failAfter{fakeBackend: be, left: 1}
	w.gw = failing
	n, err := w.AddMembers(context.Background(), []int64{20, 21}, access.Manager)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, fetched+1, be.fetches)
	assert.Equal(t, access.Manager, access.Resolve(w.Snapshot().Info.Project, 20))
	assert.Equal(t, access.None, access.Resolve(w.Snapshot().Info.Project, 21))
}

type failAfter struct {
	*fakeBackend
	left int
}

func (f *failAfter) AddMember(ctx context.Context, projectID int64, up models.UserProject) error {
	if f.left == 0 {
		return errors.New("backend down")
	}
	f.left--

	return f.fakeBackend.AddMember(ctx, projectID, up)
}

func TestRemoveMember(t *testing.T) {
	be := newBackend()
	ctx := context.Background()

	// members may leave but not remove others
	member := open(t, be, vID)
	assert.ErrorIs(t, member.RemoveMember(ctx, uID), ErrForbidden)
	require.NoError(t, member.RemoveMember(ctx, vID))
	assert.Equal(t, access.None, member.Snapshot().Role)

	owner := open(t, be, ownerID)
	assert.ErrorIs(t, owner.RemoveMember(ctx, ownerID), ErrForbidden, "owners cannot leave")
	assert.ErrorIs(t, owner.RemoveMember(ctx, outsider), ErrNotMember)

	manager := open(t, be, managerID)
	assert.ErrorIs(t, manager.RemoveMember(ctx, ownerID), ErrLastOwner)
	require.NoError(t, manager.RemoveMember(ctx, uID))
	assert.Equal(t, access.None, access.Resolve(manager.Snapshot().Info.Project, uID))
}

func TestChangeMemberRole(t *testing.T) {
	be := newBackend()
	ctx := context.Background()
	owner := open(t, be, ownerID)

	require.NoError(t, owner.ChangeMemberRole(ctx, uID, access.Manager))
	assert.Equal(t, access.Manager, access.Resolve(owner.Snapshot().Info.Project, uID))

	assert.ErrorIs(t, owner.ChangeMemberRole(ctx, ownerID, access.Manager), ErrLastOwner)

	require.NoError(t, owner.ChangeMemberRole(ctx, managerID, access.Owner))
	require.NoError(t, owner.ChangeMemberRole(ctx, ownerID, access.Manager))
	assert.Equal(t, access.Manager, owner.Snapshot().Role)

	assert.Error(t, owner.ChangeMemberRole(ctx, uID, access.None))
	assert.ErrorIs(t, open(t, be, vID).ChangeMemberRole(ctx, uID, access.Member), ErrForbidden)
}

func TestFailedMutationKeepsSnapshot(t *testing.T) {
	be := newBackend()
	w := open(t, be, ownerID)
	before := w.Snapshot()
	be.fail = errors.New("503")

	err := w.MarkDone(context.Background(), "b1", "t1")
	require.Error(t, err)
	assert.Same(t, before, w.Snapshot())
	assert.Equal(t, 1, be.fetches)
}

func TestBoardAffordances(t *testing.T) {
	be := newBackend()

	mb := open(t, be, uID).Snapshot().Board()
	assert.Equal(t, "Member", mb.RoleLabel)
	assert.False(t, mb.CanAddBranch)
	assert.False(t, mb.CanManageUsers)
	assert.True(t, mb.CanLeave)
	require.Len(t, mb.Tabs, 2)
	assert.False(t, mb.Tabs[0].CanDelete)

	own, other := mb.Tabs[0].Cards[0], mb.Tabs[0].Cards[1]
	assert.True(t, own.CanOpen)
	assert.True(t, own.CanResolve)
	assert.False(t, own.CanEdit)
	assert.False(t, own.CanAssign)
	assert.False(t, other.CanOpen)
	assert.False(t, other.CanResolve)

	ob := open(t, be, ownerID).Snapshot().Board()
	assert.False(t, ob.CanLeave)
	assert.True(t, ob.CanAddBranch)
	assert.True(t, ob.Tabs[0].CanDelete)
	c1, c2 := ob.Tabs[0].Cards[0], ob.Tabs[0].Cards[1]
	assert.True(t, c1.CanUnassign)
	assert.False(t, c2.CanUnassign, "nothing to unassign")
	assert.True(t, c2.CanAssign)
	assert.True(t, c2.CanResolve)
	assert.True(t, c2.CanOpen)

	vb := open(t, be, outsider).Snapshot().Board()
	assert.Equal(t, "Viewer", vb.RoleLabel)
	assert.False(t, vb.CanLeave)
	assert.False(t, vb.Tabs[0].Cards[0].CanOpen)
}

func TestSnapshotTasks(t *testing.T) {
	snap := open(t, newBackend(), ownerID).Snapshot()
	tasks := snap.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID())
}

func TestSnapshotRequire(t *testing.T) {
	be := newBackend()

	assert.NoError(t, open(t, be, managerID).Snapshot().Require(access.Manager, "edit project"))
	err := open(t, be, managerID).Snapshot().Require(access.Owner, "delete project")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "delete project")
	assert.ErrorIs(t, open(t, be, outsider).Snapshot().Require(access.Member, "view"), ErrForbidden)
}
