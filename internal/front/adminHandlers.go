package front

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/validate"
)

func (s *Server) handleAdminSkills(c *gin.Context) {
	skills, err := clientFrom(c).Admin.Skills(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusOK, gin.H{"skills": filter.Skills(skills, c.Query("q"))})
}

func (s *Server) handleAdminAddSkill(c *gin.Context) {
	var req SkillRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid input")
		return
	}

	api := clientFrom(c).Admin
	existing, err := api.Skills(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	skill := models.Skill{Name: req.Name, Type: req.Type}
	if err := validate.Skill(skill, existing); err != nil {
		s.fail(c, err)
		return
	}

	skills, err := api.AddSkill(c.Request.Context(), skill)
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusCreated, gin.H{"skills": skills})
}

func (s *Server) handleAdminDeleteSkill(c *gin.Context) {
	skillID, ok := paramID(c, "sid")
	if !ok {
		return
	}
	if err := clientFrom(c).Admin.DeleteSkill(c.Request.Context(), skillID); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleAdminUsers(c *gin.Context) {
	users, err := clientFrom(c).Admin.Users(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	respondInFormat(c, http.StatusOK, gin.H{"users": filter.Users(users, c.Query("q"), nil)})
}

func (s *Server) handleAdminSetRole(c *gin.Context) {
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	var req RoleRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid input")
		return
	}
	if err := validate.GlobalRole(req.Role); err != nil {
		s.fail(c, err)
		return
	}
	if err := clientFrom(c).Admin.SetRole(c.Request.Context(), userID, req.Role); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"userId": userID,
		"role":   req.Role,
	})
}

func (s *Server) handleAdminDeleteUser(c *gin.Context) {
	userID, ok := paramID(c, "uid")
	if !ok {
		return
	}
	me, ok := s.currentUser(c)
	if !ok {
		return
	}
	if me.ID == userID {
		badRequest(c, "cannot delete your own account")
		return
	}
	if err := clientFrom(c).Admin.DeleteUser(c.Request.Context(), userID); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
