package directory

import (
	"errors"
	"testing"
)

func TestAuthenticate(t *testing.T) {
	r := NewRoster(Seed())

	emp, err := r.Authenticate("doctor1@hospital.local", RoleDoctor, "Doc@123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if emp.ID != "EMPD001" {
		t.Errorf("expected EMPD001, got %s", emp.ID)
	}
}

func TestAuthenticate_EmailCaseInsensitive(t *testing.T) {
	r := NewRoster(Seed())
	if _, err := r.Authenticate("DOCTOR1@Hospital.LOCAL", RoleDoctor, "Doc@123"); err != nil {
		t.Fatalf("email match must be case-insensitive: %v", err)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	r := NewRoster(Seed())
	_, err := r.Authenticate("nobody@hospital.local", RoleDoctor, "Doc@123")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestAuthenticate_WrongRole(t *testing.T) {
	r := NewRoster(Seed())
	// Right email and password, wrong role: the account is not found for
	// that role, it is not a bad password.
	_, err := r.Authenticate("doctor1@hospital.local", RoleNurse, "Doc@123")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestAuthenticate_BadPassword(t *testing.T) {
	r := NewRoster(Seed())
	_, err := r.Authenticate("doctor1@hospital.local", RoleDoctor, "wrong")
	if !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
}

func TestAuthenticate_Deactivated(t *testing.T) {
	emps := Seed()
	emps[0].IsActive = false
	r := NewRoster(emps)

	_, err := r.Authenticate("doctor1@hospital.local", RoleDoctor, "Doc@123")
	if !errors.Is(err, ErrDeactivated) {
		t.Fatalf("expected ErrDeactivated, got %v", err)
	}

	// Bad password on a deactivated account still reports the password
	// first: the rules apply in order.
	_, err = r.Authenticate("doctor1@hospital.local", RoleDoctor, "wrong")
	if !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword before ErrDeactivated, got %v", err)
	}
}

func TestActiveByRole(t *testing.T) {
	emps := Seed()
	emps[1].IsActive = false
	r := NewRoster(emps)

	doctors := r.ActiveByRole(RoleDoctor)
	if len(doctors) != 4 {
		t.Fatalf("expected 4 active doctors, got %d", len(doctors))
	}
	for _, d := range doctors {
		if d.ID == "EMPD002" {
			t.Errorf("deactivated doctor in pool")
		}
	}
}

func TestRandomPicker(t *testing.T) {
	r := NewRoster(Seed())
	p := NewRandomPicker(r)
	p.intn = func(n int) int { return n - 1 }

	emp, err := p.Pick(RoleNurse)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if emp.ID != "EMPN004" {
		t.Errorf("expected last nurse EMPN004, got %s", emp.ID)
	}
}

func TestRandomPicker_EmptyPool(t *testing.T) {
	r := NewRoster(nil)
	p := NewRandomPicker(r)
	if _, err := p.Pick(RoleDoctor); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleDiagnostic, RolePharmacy} {
		if !role.Valid() {
			t.Errorf("%s should be valid", role)
		}
	}
	if Role("Janitor").Valid() {
		t.Error("unknown role should be invalid")
	}
}
