package care

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestNextPatientID(t *testing.T) {
	s := NewStore()
	if got := s.NextPatientID(); got != 1 {
		t.Fatalf("fresh store: expected 1, got %d", got)
	}
	s.AddPatient(&Patient{ID: 1})
	s.AddPatient(&Patient{ID: 7})
	if got := s.NextPatientID(); got != 8 {
		t.Fatalf("expected max+1 = 8, got %d", got)
	}
}

func TestSeedRooms(t *testing.T) {
	rooms := SeedRooms()
	if len(rooms) != 5 {
		t.Fatalf("expected 5 rooms, got %d", len(rooms))
	}
	for _, r := range rooms {
		if r.Status != RoomAvailable {
			t.Errorf("room %s not Available", r.ID)
		}
	}
	if rooms[0].Name != "OR-A" || rooms[4].Name != "OR-E" {
		t.Errorf("unexpected room names: %s .. %s", rooms[0].Name, rooms[4].Name)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	rx, _ := svc.OrderPrescription(doctor, p.ID, "Ibuprofen", "200mg", "TID", UrgencyNormal)
	svc.DispenseMedication(pharm, rx.ID)
	svc.RequestSurgery(doctor, p.ID, "Appendectomy", "2026-03-12", "14:00", 90, UrgencyHigh)
	svc.BookRoom(admin, "A", p.ID, "", "", "")

	first := svc.State()

	fresh := NewStore()
	fresh.Restore(first)
	second := fresh.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("restore+snapshot is not idempotent")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	svc.OrderDiagnosticTest(doctor, p.ID, "CBC", UrgencyNormal, time.Time{})

	first := svc.State()
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded := &State{}
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	fresh := NewStore()
	fresh.Restore(decoded)
	second := fresh.Snapshot()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("state changed across a JSON round trip")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	st := svc.State()
	st.Patients[0].Name = "mutated"

	got, _ := svc.Patient(p.ID)
	if got.Name == "mutated" {
		t.Fatalf("snapshot shares memory with live state")
	}
}

func TestRoomForPatient(t *testing.T) {
	s := NewStore()
	for _, r := range SeedRooms() {
		s.AddRoom(r)
	}
	if got := s.RoomForPatient(1); got != nil {
		t.Fatalf("expected nil for unassigned patient, got %+v", got)
	}
	room, _ := s.Room("B")
	room.Status = RoomBooked
	room.PatientID = 1
	got := s.RoomForPatient(1)
	if got == nil || got.ID != "B" {
		t.Fatalf("expected room B, got %+v", got)
	}
}
