package care

import (
	"fmt"

	"github.com/google/uuid"
)

// State is the serializable value of every collection, the unit the
// persistence boundary loads and saves.
type State struct {
	Patients      []*Patient            `json:"patients"`
	Prescriptions []*Prescription       `json:"prescriptions"`
	Tests         []*DiagnosticTest     `json:"tests"`
	Instructions  []*NursingInstruction `json:"nursing_instructions"`
	ORRequests    []*ORRequest          `json:"or_requests"`
	Rooms         []*ORRoom             `json:"or_rooms"`
	Timeline      []*TimelineEvent      `json:"timeline"`
}

// Store holds the authoritative current state of every collection and
// allocates record ids. It is a dumb keyed container: no validation lives
// here, and it is not safe for concurrent use — the coordinator serializes
// access.
type Store struct {
	patients      []*Patient
	prescriptions []*Prescription
	tests         []*DiagnosticTest
	instructions  []*NursingInstruction
	orRequests    []*ORRequest
	rooms         []*ORRoom
	timeline      []*TimelineEvent
}

func NewStore() *Store {
	return &Store{}
}

// SeedRooms installs the fixed OR room set. Rooms are never created or
// destroyed at runtime, only re-seeded on a fresh store.
func SeedRooms() []*ORRoom {
	return []*ORRoom{
		{ID: "A", Name: "OR-A", Status: RoomAvailable},
		{ID: "B", Name: "OR-B", Status: RoomAvailable},
		{ID: "C", Name: "OR-C", Status: RoomAvailable},
		{ID: "D", Name: "OR-D", Status: RoomAvailable},
		{ID: "E", Name: "OR-E", Status: RoomAvailable},
	}
}

// NextPatientID allocates max(existing)+1. Ids are never reused, even for
// discharged patients, because records are retained for history.
func (s *Store) NextPatientID() int {
	max := 0
	for _, p := range s.patients {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// NewRecordID allocates an opaque unique token for non-patient records.
func (s *Store) NewRecordID() string {
	return uuid.NewString()
}

func (s *Store) AddPatient(p *Patient)                 { s.patients = append(s.patients, p) }
func (s *Store) AddPrescription(p *Prescription)       { s.prescriptions = append(s.prescriptions, p) }
func (s *Store) AddTest(t *DiagnosticTest)             { s.tests = append(s.tests, t) }
func (s *Store) AddInstruction(n *NursingInstruction)  { s.instructions = append(s.instructions, n) }
func (s *Store) AddORRequest(r *ORRequest)             { s.orRequests = append(s.orRequests, r) }
func (s *Store) AddRoom(r *ORRoom)                     { s.rooms = append(s.rooms, r) }
func (s *Store) AppendEvent(e *TimelineEvent)          { s.timeline = append(s.timeline, e) }

func (s *Store) Patient(id int) (*Patient, error) {
	for _, p := range s.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("patient %d: %w", id, ErrNotFound)
}

func (s *Store) Prescription(id string) (*Prescription, error) {
	for _, p := range s.prescriptions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("prescription %s: %w", id, ErrNotFound)
}

func (s *Store) Test(id string) (*DiagnosticTest, error) {
	for _, t := range s.tests {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("test %s: %w", id, ErrNotFound)
}

func (s *Store) Instruction(id string) (*NursingInstruction, error) {
	for _, n := range s.instructions {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("nursing instruction %s: %w", id, ErrNotFound)
}

func (s *Store) ORRequest(id string) (*ORRequest, error) {
	for _, r := range s.orRequests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("or request %s: %w", id, ErrNotFound)
}

func (s *Store) Room(id string) (*ORRoom, error) {
	for _, r := range s.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
}

// RoomForPatient returns the room currently referencing the patient, nil if
// none. At most one room may reference a patient at a time.
func (s *Store) RoomForPatient(patientID int) *ORRoom {
	for _, r := range s.rooms {
		if r.PatientID == patientID && r.Status != RoomAvailable {
			return r
		}
	}
	return nil
}

// PendingORRequest returns the first Pending OR request for the patient in
// creation order, nil if none.
func (s *Store) PendingORRequest(patientID int) *ORRequest {
	for _, r := range s.orRequests {
		if r.PatientID == patientID && r.Status == ORRequestPending {
			return r
		}
	}
	return nil
}

func (s *Store) Patients() []*Patient                  { return s.patients }
func (s *Store) Prescriptions() []*Prescription        { return s.prescriptions }
func (s *Store) Tests() []*DiagnosticTest              { return s.tests }
func (s *Store) Instructions() []*NursingInstruction   { return s.instructions }
func (s *Store) ORRequests() []*ORRequest              { return s.orRequests }
func (s *Store) Rooms() []*ORRoom                      { return s.rooms }
func (s *Store) Timeline() []*TimelineEvent            { return s.timeline }

// TimelineForPatient returns the patient's events in creation order.
func (s *Store) TimelineForPatient(patientID int) []*TimelineEvent {
	var out []*TimelineEvent
	for _, e := range s.timeline {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot deep-copies the current state. Restoring a snapshot and
// snapshotting again yields a structurally identical value.
func (s *Store) Snapshot() *State {
	st := &State{
		Patients:      make([]*Patient, len(s.patients)),
		Prescriptions: make([]*Prescription, len(s.prescriptions)),
		Tests:         make([]*DiagnosticTest, len(s.tests)),
		Instructions:  make([]*NursingInstruction, len(s.instructions)),
		ORRequests:    make([]*ORRequest, len(s.orRequests)),
		Rooms:         make([]*ORRoom, len(s.rooms)),
		Timeline:      make([]*TimelineEvent, len(s.timeline)),
	}
	for i, p := range s.patients {
		cp := *p
		st.Patients[i] = &cp
	}
	for i, p := range s.prescriptions {
		cp := *p
		st.Prescriptions[i] = &cp
	}
	for i, t := range s.tests {
		cp := *t
		st.Tests[i] = &cp
	}
	for i, n := range s.instructions {
		cp := *n
		st.Instructions[i] = &cp
	}
	for i, r := range s.orRequests {
		cp := *r
		st.ORRequests[i] = &cp
	}
	for i, r := range s.rooms {
		cp := *r
		st.Rooms[i] = &cp
	}
	for i, e := range s.timeline {
		cp := *e
		st.Timeline[i] = &cp
	}
	return st
}

// Restore replaces the store contents with a deep copy of the state.
func (s *Store) Restore(st *State) {
	fresh := NewStore()
	for _, p := range st.Patients {
		cp := *p
		fresh.patients = append(fresh.patients, &cp)
	}
	for _, p := range st.Prescriptions {
		cp := *p
		fresh.prescriptions = append(fresh.prescriptions, &cp)
	}
	for _, t := range st.Tests {
		cp := *t
		fresh.tests = append(fresh.tests, &cp)
	}
	for _, n := range st.Instructions {
		cp := *n
		fresh.instructions = append(fresh.instructions, &cp)
	}
	for _, r := range st.ORRequests {
		cp := *r
		fresh.orRequests = append(fresh.orRequests, &cp)
	}
	for _, r := range st.Rooms {
		cp := *r
		fresh.rooms = append(fresh.rooms, &cp)
	}
	for _, e := range st.Timeline {
		cp := *e
		fresh.timeline = append(fresh.timeline, &cp)
	}
	*s = *fresh
}
