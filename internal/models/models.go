package models

// Global roles as the backend spells them.
const (
	GlobalRoleAdmin = "admin"
	GlobalRoleUser  = "user"
)

type User struct {
	ID         int64   `json:"id"`
	Login      string  `json:"login"`
	Email      string  `json:"email"`
	FullName   *string `json:"fullName,omitempty"`
	GlobalRole string  `json:"globalRole"`
	SkillIDs   []int64 `json:"skillIds"`
	CreatedAt  string  `json:"createdAt"`
	AvatarURL  *string `json:"avatarUrl,omitempty"`
}

// IsAdmin reports whether the user holds the site-wide admin role.
func (u User) IsAdmin() bool {
	return u.GlobalRole == GlobalRoleAdmin || u.GlobalRole == "ADMIN"
}

// HasSkill reports whether the skill id is among the user's skills.
func (u User) HasSkill(id int64) bool {
	for _, s := range u.SkillIDs {
		if s == id {
			return true
		}
	}

	return false
}

type Skill struct {
	ID        *int64 `json:"id,omitempty"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	UserCount *int   `json:"userCount,omitempty"`
}

type ProjectMember struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Role   string `json:"role"` // OWNER/MANAGER/MEMBER
}

type Project struct {
	ID          *int64          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	IsActive    bool            `json:"isActive"`
	AvatarURL   *string         `json:"avatarUrl,omitempty"`
	Members     []ProjectMember `json:"projectMembers"`
}

// UserProject is the membership request sent when adding a user to a project.
type UserProject struct {
	ID          *int64 `json:"id,omitempty"`
	UserID      int64  `json:"userId"`
	ProjectID   int64  `json:"projectId"`
	ProjectRole string `json:"projectRole"`
}

type TaskStatistics struct {
	TaskCount           int `json:"taskCount"`
	CompletedTasksCount int `json:"completedTasksCount"`
	DelayedTasksCount   int `json:"delayedTasksCount"`
	ProblemTasksCount   int `json:"problemTasksCount"`
}

type Branch struct {
	BranchID   *string         `json:"branchId,omitempty"`
	Name       string          `json:"name"`
	Active     *bool           `json:"active,omitempty"`
	Tasks      []Task          `json:"tasks,omitempty"`
	Statistics *TaskStatistics `json:"statistics,omitempty"`
}

// ID returns the branch id or an empty string for a branch not yet stored.
func (b Branch) ID() string {
	if b.BranchID == nil {
		return ""
	}

	return *b.BranchID
}

type Task struct {
	TaskID         *string `json:"taskId,omitempty"`
	ParentID       *string `json:"parentId,omitempty"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	Done           bool    `json:"done"`
	HasProblem     bool    `json:"hasProblem"`
	ProblemMessage *string `json:"problemMessage,omitempty"`
	SkillID        *int64  `json:"skillId,omitempty"`
	AssignedTo     *int64  `json:"assignedTo,omitempty"`
	File           *string `json:"file,omitempty"`
}

// ID returns the task id or an empty string for a task not yet stored.
func (t Task) ID() string {
	if t.TaskID == nil {
		return ""
	}

	return *t.TaskID
}

// IsAssignedTo reports whether the task is assigned to the given user.
func (t Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TaskState is the derived lifecycle state of a task.
type TaskState string

const (
	TaskOpen    TaskState = "OPEN"
	TaskDone    TaskState = "DONE"
	TaskProblem TaskState = "PROBLEM"
)

// State derives the lifecycle state from the done/hasProblem flags.
// A task carrying both flags reports the problem, which is the louder signal.
func (t Task) State() TaskState {
	switch {
	case t.HasProblem:
		return TaskProblem
	case t.Done:
		return TaskDone
	default:
		return TaskOpen
	}
}

type ProjectStatistics struct {
	ProjectID  int64          `json:"projectId"`
	Branches   []Branch       `json:"branches"`
	Statistics TaskStatistics `json:"statistics"`
}

// ProjectInfo is the full workspace payload of one project.
type ProjectInfo struct {
	ProjectID int64             `json:"projectId"`
	Project   Project           `json:"projectDTO"`
	Board     ProjectStatistics `json:"project"`
}

// FindTask looks a task up by branch and task id.
func (p ProjectInfo) FindTask(branchID, taskID string) (Task, bool) {
	for _, b := range p.Board.Branches {
		if b.ID() != branchID {
			continue
		}
		for _, t := range b.Tasks {
			if t.ID() == taskID {
				return t, true
			}
		}
	}

	return Task{}, false
}

// FindBranch looks a branch up by id.
func (p ProjectInfo) FindBranch(branchID string) (Branch, bool) {
	for _, b := range p.Board.Branches {
		if b.ID() == branchID {
			return b, true
		}
	}

	return Branch{}, false
}

// Credentials is the login/registration payload.
type Credentials struct {
	Login    string `json:"login" form:"login"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// StringP returns a pointer to s.
func StringP(s string) *string { return &s }

// Int64P returns a pointer to n.
func Int64P(n int64) *int64 { return &n }
