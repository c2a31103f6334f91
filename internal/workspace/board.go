package workspace

import (
	"kyri56xcaesar/pms-workspace/internal/access"
	"kyri56xcaesar/pms-workspace/internal/models"
)

// TaskCard is a task with the actions its viewer may take on it.
type TaskCard struct {
	Task  models.Task      `json:"task"`
	State models.TaskState `json:"state"`

	CanOpen     bool `json:"canOpen"`
	CanEdit     bool `json:"canEdit"`
	CanDelete   bool `json:"canDelete"`
	CanAssign   bool `json:"canAssign"`
	CanUnassign bool `json:"canUnassign"`
	CanResolve  bool `json:"canResolve"`
}

type BranchTab struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Statistics *models.TaskStatistics `json:"statistics,omitempty"`
	CanDelete  bool                   `json:"canDelete"`
	Cards      []TaskCard             `json:"cards"`
}

// Board is what a viewer sees of the project: tabs in backend order and the
// project-level actions available.
type Board struct {
	ProjectID int64       `json:"projectId"`
	Name      string      `json:"name"`
	Role      access.Role `json:"role"`
	RoleLabel string      `json:"roleLabel"`

	CanAddBranch   bool `json:"canAddBranch"`
	CanAddTask     bool `json:"canAddTask"`
	CanManageUsers bool `json:"canManageUsers"`
	CanLeave       bool `json:"canLeave"`

	Statistics models.TaskStatistics `json:"statistics"`
	Tabs       []BranchTab           `json:"tabs"`
}

// Card derives the actions on one task.
func (s *Snapshot) Card(t models.Task) TaskCard {
	caps, uid := s.Caps, s.User.ID

	return TaskCard{
		Task:        t,
		State:       t.State(),
		CanOpen:     caps.CanOpenTask(t, uid),
		CanEdit:     caps.Can(access.EditTask),
		CanDelete:   caps.Can(access.DeleteTask),
		CanAssign:   caps.Can(access.AssignTask),
		CanUnassign: caps.Can(access.UnassignTask) && t.AssignedTo != nil,
		CanResolve:  caps.CanResolveTask(t, uid),
	}
}

// Board lays the snapshot out for rendering.
func (s *Snapshot) Board() Board {
	b := Board{
		ProjectID:      s.Info.ProjectID,
		Name:           s.Info.Project.Name,
		Role:           s.Role,
		RoleLabel:      s.Role.Label(),
		CanAddBranch:   s.Caps.Can(access.CreateBranch),
		CanAddTask:     s.Caps.Can(access.CreateTask),
		CanManageUsers: s.Caps.Can(access.AddMembers),
		CanLeave:       s.Caps.Can(access.LeaveProject),
		Statistics:     s.Info.Board.Statistics,
		Tabs:           make([]BranchTab, 0, len(s.Info.Board.Branches)),
	}
	for _, br := range s.Info.Board.Branches {
		tab := BranchTab{
			ID:         br.ID(),
			Name:       br.Name,
			Statistics: br.Statistics,
			CanDelete:  s.Caps.Can(access.DeleteBranch),
			Cards:      make([]TaskCard, 0, len(br.Tasks)),
		}
		for _, t := range br.Tasks {
			tab.Cards = append(tab.Cards, s.Card(t))
		}
		b.Tabs = append(b.Tabs, tab)
	}

	return b
}

// Tasks returns every task on the board in tab order.
func (s *Snapshot) Tasks() []models.Task {
	var out []models.Task
	for _, br := range s.Info.Board.Branches {
		out = append(out, br.Tasks...)
	}

	return out
}
