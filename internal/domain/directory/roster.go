package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Login failures are distinct so the UI can show a specific message. The
// first failing rule wins: not-found, then bad-password, then deactivated.
var (
	ErrEmployeeNotFound = errors.New("email not found for selected role")
	ErrBadPassword      = errors.New("invalid password")
	ErrDeactivated      = errors.New("account deactivated")
)

// Roster is the static staff directory. It backs login lookup and the
// random team-assignment pool; it never changes after seeding.
type Roster struct {
	employees []*Employee
}

func NewRoster(employees []*Employee) *Roster {
	return &Roster{employees: employees}
}

func (r *Roster) All() []*Employee {
	return r.employees
}

func (r *Roster) ByID(id string) (*Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("employee %s: %w", id, ErrEmployeeNotFound)
}

// ActiveByRole returns the assignment pool for a role.
func (r *Roster) ActiveByRole(role Role) []*Employee {
	var out []*Employee
	for _, e := range r.employees {
		if e.Role == role && e.IsActive {
			out = append(out, e)
		}
	}
	return out
}

// Authenticate performs the exact-match credential lookup. Email matching
// is case-insensitive, everything else is exact.
func (r *Roster) Authenticate(email string, role Role, password string) (*Employee, error) {
	var match *Employee
	for _, e := range r.employees {
		if strings.EqualFold(e.Email, email) && e.Role == role {
			match = e
			break
		}
	}
	if match == nil {
		return nil, ErrEmployeeNotFound
	}
	if match.Password != password {
		return nil, ErrBadPassword
	}
	if !match.IsActive {
		return nil, ErrDeactivated
	}
	return match, nil
}
