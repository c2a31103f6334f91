// Package access resolves a caller's role inside a project and derives the
// capability set the workspace grants for it.
//
// Role resolution is the single source of derived capabilities: surfaces ask
// Capabilities what to show or allow and never compare role strings inline.
package access

import (
	"fmt"
	"strings"

	"kyri56xcaesar/pms-workspace/internal/models"
)

// Role is a caller's privilege level inside one project.
type Role int

const (
	// None means the caller is not a member: a viewer with no mutation rights.
	None Role = iota
	Member
	Manager
	Owner
)

func (r Role) String() string {
	switch r {
	case Owner:
		return "OWNER"
	case Manager:
		return "MANAGER"
	case Member:
		return "MEMBER"
	default:
		return "NONE"
	}
}

// Label is the title shown next to the caller's name.
func (r Role) Label() string {
	switch r {
	case Owner:
		return "Owner"
	case Manager:
		return "Manager"
	case Member:
		return "Member"
	default:
		return "Viewer"
	}
}

// AtLeast reports whether r is at least as privileged as other.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	if strings.EqualFold(string(b), None.String()) {
		*r = None
		return nil
	}
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed

	return nil
}

// ParseRole parses a project role name case-insensitively. Only the three
// member roles parse; "NONE" is not a role a member can hold.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OWNER":
		return Owner, nil
	case "MANAGER":
		return Manager, nil
	case "MEMBER":
		return Member, nil
	default:
		return None, fmt.Errorf("unknown project role: %q", s)
	}
}

// Resolve returns the role userID holds in project, or None if the user is
// not among its members. Members carrying an unparseable role resolve to None.
func Resolve(project models.Project, userID int64) Role {
	for _, m := range project.Members {
		if m.UserID != userID {
			continue
		}
		role, err := ParseRole(m.Role)
		if err != nil {
			return None
		}

		return role
	}

	return None
}

// CountOwners returns how many members of project hold the OWNER role.
func CountOwners(project models.Project) int {
	n := 0
	for _, m := range project.Members {
		if r, err := ParseRole(m.Role); err == nil && r == Owner {
			n++
		}
	}

	return n
}
