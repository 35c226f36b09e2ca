package directory

import "time"

// Role is one of the five dashboard roles.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleDoctor     Role = "Doctor"
	RoleNurse      Role = "Nurse"
	RoleDiagnostic Role = "Diagnostic"
	RolePharmacy   Role = "Pharmacy"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleDiagnostic, RolePharmacy:
		return true
	}
	return false
}

// Employee is immutable reference data: created at directory seed time,
// never mutated by the coordinator. The password is a plaintext lookup key
// for the demo login, not a credential store.
type Employee struct {
	ID          string    `json:"employee_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	Role        Role      `json:"role"`
	Department  string    `json:"department"`
	Designation string    `json:"designation"`
	Phone       string    `json:"phone"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
