package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/pms-workspace/internal/models"
)

func TestLoginAndRegister(t *testing.T) {
	assert.NoError(t, Login(models.Credentials{Login: "anna", Password: "x"}))

	err := Login(models.Credentials{Login: "  "})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "cannot be empty", fe["login"])
	assert.Equal(t, "cannot be empty", fe["password"])

	err = Register(models.Credentials{Login: "anna", Email: "not-an-email", Password: "secret1"})
	fe, ok = AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "invalid email format", fe["email"])
	assert.NoError(t, Register(models.Credentials{Login: "anna", Email: "anna@corp.io", Password: "secret1"}))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("a@b.io"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("a@"))
	assert.Error(t, Email("a b@c.io"))
}

func TestProjectName(t *testing.T) {
	existing := []models.Project{
		{ID: models.Int64P(1), Name: "Apollo"},
		{ID: models.Int64P(2), Name: "Gemini"},
	}
	assert.Error(t, ProjectName(" ", existing, nil))
	assert.Error(t, ProjectName("apollo", existing, nil))
	assert.NoError(t, ProjectName("APOLLO", existing, models.Int64P(1)), "renaming a project to itself")
	assert.Error(t, ProjectName("gemini", existing, models.Int64P(1)))
	assert.NoError(t, ProjectName("Mercury", existing, nil))
}

func TestBranchAndSkill(t *testing.T) {
	branches := []models.Branch{{Name: "Backend"}}
	assert.Error(t, BranchName("", branches))
	assert.Error(t, BranchName("backend", branches))
	assert.NoError(t, BranchName("Frontend", branches))

	skills := []models.Skill{{Name: "Go", Type: "lang"}}
	err := Skill(models.Skill{Name: "go", Type: ""}, skills)
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "this skill already exists", fe["name"])
	assert.Equal(t, "skill type cannot be empty", fe["type"])
	assert.NoError(t, Skill(models.Skill{Name: "Rust", Type: "lang"}, skills))
}

func TestTaskFields(t *testing.T) {
	assert.NoError(t, TaskFields("t", "2024-01-01", "2024-01-01"))
	err := TaskFields("", "2024-01-05", "2024-01-01")
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "title")
	assert.Contains(t, fe, "endDate")
	assert.Error(t, TaskFields("t", "soon", "2024-01-01"))
}

func TestFieldErrorsMessageIsStable(t *testing.T) {
	fe := FieldErrors{"b": "two", "a": "one"}
	assert.Equal(t, "a: one; b: two", fe.Error())
	assert.Error(t, GlobalRole("root"))
	assert.NoError(t, GlobalRole("admin"))
}
