package access

import "kyri56xcaesar/pms-workspace/internal/models"

// Action names a capability-gated workspace operation.
type Action string

const (
	CreateBranch  Action = "createBranch"
	DeleteBranch  Action = "deleteBranch"
	CreateTask    Action = "createTask"
	DeleteTask    Action = "deleteTask"
	EditTask      Action = "editTask"
	AssignTask    Action = "assignTask"
	UnassignTask  Action = "unassignTask"
	ResolveTask   Action = "resolveTask"
	AddMembers    Action = "addMembers"
	RemoveMembers Action = "removeMembers"
	EditMembers   Action = "editMembers"
	LeaveProject  Action = "leaveProject"
)

// Capabilities is the capability set derived from one role.
type Capabilities struct {
	Role Role `json:"role"`

	ManageBranches bool `json:"manageBranches"`
	ManageTasks    bool `json:"manageTasks"`
	AssignTasks    bool `json:"assignTasks"`
	ResolveAny     bool `json:"resolveAny"`
	ResolveOwn     bool `json:"resolveOwn"`
	ManageMembers  bool `json:"manageMembers"`
	Leave          bool `json:"leave"`
}

// CapabilitiesFor derives the capability set of role. Owner and manager share
// the same workspace rights except that an owner cannot leave the project.
func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case Owner, Manager:
		return Capabilities{
			Role:           role,
			ManageBranches: true,
			ManageTasks:    true,
			AssignTasks:    true,
			ResolveAny:     true,
			ResolveOwn:     true,
			ManageMembers:  true,
			Leave:          role != Owner,
		}
	case Member:
		return Capabilities{
			Role:       role,
			ResolveOwn: true,
			Leave:      true,
		}
	default:
		return Capabilities{Role: None}
	}
}

// Can reports whether the role behind c may perform action. ResolveTask here
// answers for tasks in general; use CanResolveTask for a concrete task.
func (c Capabilities) Can(action Action) bool {
	switch action {
	case CreateBranch, DeleteBranch:
		return c.ManageBranches
	case CreateTask, DeleteTask, EditTask:
		return c.ManageTasks
	case AssignTask, UnassignTask:
		return c.AssignTasks
	case ResolveTask:
		return c.ResolveAny
	case AddMembers, RemoveMembers, EditMembers:
		return c.ManageMembers
	case LeaveProject:
		return c.Leave
	default:
		return false
	}
}

// CanResolveTask reports whether userID may mark task done or problem.
func (c Capabilities) CanResolveTask(task models.Task, userID int64) bool {
	if c.ResolveAny {
		return true
	}

	return c.ResolveOwn && task.IsAssignedTo(userID)
}

// CanOpenTask reports whether the task card opens for userID. Managers open
// every card; members only the ones assigned to them.
func (c Capabilities) CanOpenTask(task models.Task, userID int64) bool {
	return c.CanResolveTask(task, userID)
}
