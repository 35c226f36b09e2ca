package care

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ScheduledMed is one entry of the fixed ward medication schedule.
type ScheduledMed struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Time   string `json:"time"`
}

// MedicationSchedule returns the ward's standing medication rounds. The
// schedule is static reference data, not patient-specific orders.
func MedicationSchedule() []ScheduledMed {
	return []ScheduledMed{
		{ID: "m1", Name: "Paracetamol", Dosage: "500mg", Time: "08:00"},
		{ID: "m2", Name: "Amoxicillin", Dosage: "250mg", Time: "12:00"},
		{ID: "m3", Name: "Insulin Glargine", Dosage: "10 units", Time: "20:00"},
	}
}

// RoundsBoard tracks which scheduled meds were administered to which
// patients within the reset window. Markers expire so the same round can
// be given again next cycle. The board has its own lock: the sweeper runs
// on a ticker and must not contend with coordinator operations.
type RoundsBoard struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	given  map[string]time.Time
}

func NewRoundsBoard(window time.Duration) *RoundsBoard {
	return &RoundsBoard{
		window: window,
		now:    time.Now,
		given:  make(map[string]time.Time),
	}
}

// SetWindow overrides the reset window, called once at wiring time before
// any marks exist.
func (b *RoundsBoard) SetWindow(window time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.window = window
}

func roundsKey(patientID int, medID string) string {
	return fmt.Sprintf("%d:%s", patientID, medID)
}

func (b *RoundsBoard) mark(patientID int, medID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.given[roundsKey(patientID, medID)] = b.now()
}

// Given reports whether the med was administered to the patient within the
// current window.
func (b *RoundsBoard) Given(patientID int, medID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	at, ok := b.given[roundsKey(patientID, medID)]
	return ok && b.now().Sub(at) < b.window
}

// Status reports the administered flag for every scheduled med.
func (b *RoundsBoard) Status(patientID int) map[string]bool {
	out := make(map[string]bool, len(MedicationSchedule()))
	for _, m := range MedicationSchedule() {
		out[m.ID] = b.Given(patientID, m.ID)
	}
	return out
}

func (b *RoundsBoard) sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, at := range b.given {
		if now.Sub(at) >= b.window {
			delete(b.given, k)
		}
	}
}

// Run sweeps expired markers on the interval until the context is done.
func (b *RoundsBoard) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sweep()
		}
	}
}

// Rounds exposes the board for the sweeper goroutine and read handlers.
func (s *Service) Rounds() *RoundsBoard {
	return s.rounds
}

// AdministerMedication records one scheduled round given to a patient. A
// marker already inside the window rejects the repeat dose.
func (s *Service) AdministerMedication(actor Actor, patientID int, medID string) (*TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	var med *ScheduledMed
	for _, m := range MedicationSchedule() {
		if m.ID == medID {
			med = &m
			break
		}
	}
	if med == nil {
		return nil, fmt.Errorf("scheduled med %s: %w", medID, ErrNotFound)
	}
	if s.rounds.Given(patientID, medID) {
		return nil, fmt.Errorf("med %s already administered to patient %d this round: %w", medID, patientID, ErrInvalidTransition)
	}
	s.rounds.mark(patientID, medID)

	e := s.appendEvent(patientID, "Medication Administered",
		fmt.Sprintf("%s (%s) administered as per %s schedule. Recorded by Nurse %s.", med.Name, med.Dosage, med.Time, actor.Name),
		EventPrescription, UrgencyNormal, actor.Name, "")
	return e, nil
}
