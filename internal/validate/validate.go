// Package validate checks form input before anything is sent to the backend.
// Failures come back as FieldErrors so a surface can show each message next
// to the offending field.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}

	return strings.Join(parts, "; ")
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}

	return fe
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}

	return nil, false
}

type loginForm struct {
	Login    string `validate:"required"`
	Password string `validate:"required"`
}

type registerForm struct {
	Login    string `validate:"required,min=2,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

var messages = map[string]string{
	"required": "cannot be empty",
	"email":    "invalid email format",
	"min":      "too short",
	"max":      "too long",
}

func fromValidator(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fe := FieldErrors{}
	for _, e := range ves {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = "invalid value"
		}
		fe[strings.ToLower(e.Field())] = msg
	}

	return fe
}

// Login checks the sign-in form.
func Login(c models.Credentials) error {
	if err := v.Struct(loginForm{Login: strings.TrimSpace(c.Login), Password: c.Password}); err != nil {
		return fromValidator(err)
	}

	return nil
}

// Register checks the sign-up form.
func Register(c models.Credentials) error {
	if err := v.Struct(registerForm{Login: strings.TrimSpace(c.Login), Email: strings.TrimSpace(c.Email), Password: c.Password}); err != nil {
		return fromValidator(err)
	}

	return nil
}

// Email checks a profile email.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return FieldErrors{"email": messages["required"]}
	}
	if err := v.Var(email, "email"); err != nil {
		return FieldErrors{"email": messages["email"]}
	}

	return nil
}

// ProjectName checks a new or renamed project name against the existing
// projects. editingID, when set, is the project being renamed and is ignored
// in the duplicate check.
func ProjectName(name string, existing []models.Project, editingID *int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldErrors{"name": "project name cannot be empty"}
	}
	for _, p := range existing {
		if editingID != nil && p.ID != nil && *p.ID == *editingID {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return FieldErrors{"name": "a project with this name already exists"}
		}
	}

	return nil
}

// BranchName checks a new branch name against the project's branches.
func BranchName(name string, existing []models.Branch) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldErrors{"name": "branch name cannot be empty"}
	}
	for _, b := range existing {
		if strings.EqualFold(b.Name, name) {
			return FieldErrors{"name": "a branch with this name already exists"}
		}
	}

	return nil
}

// Skill checks a new skill against the catalogue.
func Skill(s models.Skill, existing []models.Skill) error {
	fe := FieldErrors{}
	if strings.TrimSpace(s.Name) == "" {
		fe["name"] = "skill name cannot be empty"
	}
	if strings.TrimSpace(s.Type) == "" {
		fe["type"] = "skill type cannot be empty"
	}
	if _, bad := fe["name"]; !bad {
		for _, e := range existing {
			if strings.EqualFold(e.Name, strings.TrimSpace(s.Name)) {
				fe["name"] = "this skill already exists"
				break
			}
		}
	}

	return fe.orNil()
}

// TaskFields checks the editable task fields: a title and a start that does
// not come after the end.
func TaskFields(title, start, end string) error {
	fe := FieldErrors{}
	if strings.TrimSpace(title) == "" {
		fe["title"] = "title cannot be empty"
	}
	s, errS := filter.ParseTaskDate(start, time.UTC)
	if errS != nil {
		fe["startDate"] = "invalid date"
	}
	e, errE := filter.ParseTaskDate(end, time.UTC)
	if errE != nil {
		fe["endDate"] = "invalid date"
	}
	if errS == nil && errE == nil && e.Before(s) {
		fe["endDate"] = "deadline is before the start"
	}

	return fe.orNil()
}

// GlobalRole checks an admin role change.
func GlobalRole(role string) error {
	if role != models.GlobalRoleAdmin && role != models.GlobalRoleUser {
		return FieldErrors{"role": "role must be admin or user"}
	}

	return nil
}
