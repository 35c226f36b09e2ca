package care

import "errors"

// Coordinator failures are local validation errors: an operation either
// fully applies or returns one of these with nothing mutated.
var (
	// ErrNotFound means a referenced patient, room or order id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means the entity is not in a state from which the
	// requested transition is legal.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrRoomUnavailable means a room booking precondition was violated.
	ErrRoomUnavailable = errors.New("room unavailable")

	// ErrAlreadyDispensed means the prescription has left the dispensable
	// states.
	ErrAlreadyDispensed = errors.New("already dispensed")

	// ErrReportMissing means a diagnostic test cannot complete without an
	// attached report reference.
	ErrReportMissing = errors.New("report missing")

	// ErrInvalidDate means a surgery was requested for a date before the
	// patient was registered.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoStaffAvailable means the assignment pool for a role is empty.
	ErrNoStaffAvailable = errors.New("no staff available")

	// ErrPatientDischarged means the operation targets a discharged patient.
	// Discharge is terminal.
	ErrPatientDischarged = errors.New("patient discharged")
)
