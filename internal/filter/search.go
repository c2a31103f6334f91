// Package filter narrows user, project and skill collections for the search
// dialogs and lays tasks out on a weekly calendar.
//
// Every function is a single pass over its input: results keep input order,
// never alias a nil slice, and an empty result is a valid answer.
package filter

import (
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/utils"
)

// Users returns the users matching both the text query and the required skills.
//
// A user matches the query when it is a case-insensitive substring of the
// login, the email or the full name (an absent full name never matches).
// A user matches the skills when it holds every required skill id. An empty
// query or an empty skill set lets everyone through that filter.
func Users(users []models.User, query string, skillIDs []int64) []models.User {
	return utils.Filter(users, func(u models.User) bool {
		return matchesQuery(u, query) && utils.IsSubset(skillIDs, u.SkillIDs)
	})
}

func matchesQuery(u models.User, query string) bool {
	if query == "" {
		return true
	}
	if utils.ContainsFold(u.Login, query) || utils.ContainsFold(u.Email, query) {
		return true
	}

	return u.FullName != nil && utils.ContainsFold(*u.FullName, query)
}

// Projects returns the projects whose name or description contains query.
func Projects(projects []models.Project, query string) []models.Project {
	if query == "" {
		return utils.Filter(projects, func(models.Project) bool { return true })
	}

	return utils.Filter(projects, func(p models.Project) bool {
		return utils.ContainsFold(p.Name, query) || utils.ContainsFold(p.Description, query)
	})
}

// Skills returns the skills whose name contains query.
func Skills(skills []models.Skill, query string) []models.Skill {
	return utils.Filter(skills, func(s models.Skill) bool {
		return query == "" || utils.ContainsFold(s.Name, query)
	})
}

// HeldSkills returns the skills held by at least one of users, in the order
// they are first seen across users. Ids missing from skills are dropped.
func HeldSkills(users []models.User, skills []models.Skill) []models.Skill {
	byID := make(map[int64]models.Skill, len(skills))
	for _, s := range skills {
		if s.ID != nil {
			byID[*s.ID] = s
		}
	}

	held := []models.Skill{}
	seen := make(map[int64]struct{})
	for _, u := range users {
		for _, id := range u.SkillIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if s, ok := byID[id]; ok {
				held = append(held, s)
			}
		}
	}

	return held
}

// Members returns the users who are members of project, in users order.
func Members(users []models.User, project models.Project) []models.User {
	ids := utils.Map(project.Members, func(m models.ProjectMember) int64 { return m.UserID })

	return utils.Filter(users, func(u models.User) bool { return utils.Contains(ids, u.ID) })
}

// NonMembers returns the users not yet in project, the candidates for adding.
func NonMembers(users []models.User, project models.Project) []models.User {
	ids := utils.Map(project.Members, func(m models.ProjectMember) int64 { return m.UserID })

	return utils.Filter(users, func(u models.User) bool { return !utils.Contains(ids, u.ID) })
}
