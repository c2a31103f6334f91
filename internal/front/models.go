package front

import (
	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

type ProfileRequest struct {
	Email     string  `json:"email" form:"email"`
	FullName  *string `json:"fullName" form:"fullName"`
	AvatarURL *string `json:"avatarUrl" form:"avatarUrl"`
	SkillIDs  []int64 `json:"skillIds" form:"skillIds"`
}

type ProjectRequest struct {
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	AvatarURL   *string `json:"avatarUrl" form:"avatarUrl"`
	IsActive    *bool   `json:"isActive" form:"isActive"`
}

type BranchRequest struct {
	Name string `json:"name" form:"name"`
}

type ProblemRequest struct {
	Message string `json:"message" form:"message"`
}

type AssignRequest struct {
	UserID int64 `json:"userId" form:"userId" binding:"required"`
}

type MembersRequest struct {
	UserIDs []int64 `json:"userIds" form:"userIds" binding:"required,min=1"`
	Role    string  `json:"role" form:"role"`
}

type RoleRequest struct {
	Role string `json:"role" form:"role" binding:"required"`
}

type SkillRequest struct {
	Name string `json:"name" form:"name"`
	Type string `json:"type" form:"type"`
}

// UserVM is a user as the browser sees it, avatar resolved to a full URL.
type UserVM struct {
	models.User
	AvatarSrc string `json:"avatarSrc,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
}

type BoardVM struct {
	Board   workspace.Board `json:"board"`
	Project models.Project  `json:"project"`
}

type DayVM struct {
	Date  string             `json:"date"`
	Tasks []filter.Placement `json:"tasks"`
}

// WeekVM is a seven-day calendar with each task laid out once.
type WeekVM struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Days  []DayVM `json:"days"`
}

type UserSearchVM struct {
	Users  []models.User  `json:"users"`
	Skills []models.Skill `json:"skills"`
}
