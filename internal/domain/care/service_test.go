package care

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wardflow/wardflow/internal/domain/directory"
)

// -- Test fixtures --

// firstPicker always assigns the first active employee of the role, so
// assignments are deterministic.
type firstPicker struct {
	roster *directory.Roster
}

func (p *firstPicker) Pick(role directory.Role) (*directory.Employee, error) {
	pool := p.roster.ActiveByRole(role)
	if len(pool) == 0 {
		return nil, fmt.Errorf("no active %s staff", role)
	}
	return pool[0], nil
}

// emptyPicker simulates an exhausted staff pool.
type emptyPicker struct{}

func (emptyPicker) Pick(role directory.Role) (*directory.Employee, error) {
	return nil, fmt.Errorf("no active %s staff", role)
}

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService() *Service {
	roster := directory.NewRoster(directory.Seed())
	store := NewStore()
	svc := NewService(store, &firstPicker{roster: roster})
	now := testStart
	svc.now = func() time.Time { return now }
	svc.rounds.now = svc.now
	svc.Restore(&State{Rooms: SeedRooms()})
	return svc
}

// setClock advances the service clock to a fixed instant.
func setClock(svc *Service, at time.Time) {
	svc.now = func() time.Time { return at }
	svc.rounds.now = svc.now
}

var (
	admin  = Actor{EmployeeID: "EMPA001", Name: "Richard Sanchez", Role: "Admin"}
	doctor = Actor{EmployeeID: "EMPD001", Name: "Danielle Johnson", Role: "Doctor"}
	nurse  = Actor{EmployeeID: "EMPN001", Name: "Taylor Ibarra", Role: "Nurse"}
	pharm  = Actor{EmployeeID: "EMPP001", Name: "Veronica Torres", Role: "Pharmacy"}
	lab    = Actor{EmployeeID: "EMPDG001", Name: "Michael Cook", Role: "Diagnostic"}
)

func admitTestPatient(t *testing.T, svc *Service) *Patient {
	t.Helper()
	p, err := svc.AdmitPatient(admin, AdmitPatientInput{
		Name:         "John Carter",
		Age:          52,
		Gender:       "Male",
		TemperatureC: 37.2,
		BloodGroup:   "O+",
		BP:           "120/80",
		Allergies:    "Penicillin",
		Priority:     UrgencyNormal,
	})
	if err != nil {
		t.Fatalf("AdmitPatient: %v", err)
	}
	return p
}

// -- Admission --

func TestAdmitPatient(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	if p.ID != 1 {
		t.Errorf("expected patient id 1, got %d", p.ID)
	}
	if p.Status != PatientAdmitted {
		t.Errorf("expected status %s, got %s", PatientAdmitted, p.Status)
	}
	if p.DoctorID == "" || p.NurseID == "" || p.DiagID == "" || p.PharmID == "" {
		t.Errorf("expected full care team, got %+v", p)
	}
	if p.AdminID != admin.EmployeeID {
		t.Errorf("expected admitting admin %s, got %s", admin.EmployeeID, p.AdminID)
	}

	events := svc.TimelineForPatient(p.ID)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "Patient Registered" {
		t.Errorf("unexpected event title %q", events[0].Title)
	}
}

func TestAdmitPatient_IDsNeverReused(t *testing.T) {
	svc := newTestService()
	p1 := admitTestPatient(t, svc)
	if _, err := svc.DischargePatient(doctor, p1.ID); err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}
	p2, err := svc.AdmitPatient(admin, AdmitPatientInput{Name: "Second"})
	if err != nil {
		t.Fatalf("AdmitPatient: %v", err)
	}
	if p2.ID != p1.ID+1 {
		t.Errorf("expected id %d, got %d", p1.ID+1, p2.ID)
	}
}

func TestAdmitPatient_ExplicitTeamKept(t *testing.T) {
	svc := newTestService()
	p, err := svc.AdmitPatient(admin, AdmitPatientInput{
		Name:     "Jane Roe",
		DoctorID: "EMPD003",
	})
	if err != nil {
		t.Fatalf("AdmitPatient: %v", err)
	}
	if p.DoctorID != "EMPD003" {
		t.Errorf("explicit doctor overridden: %s", p.DoctorID)
	}
	if p.NurseID == "" {
		t.Errorf("empty nurse slot not filled")
	}
}

func TestAdmitPatient_NoStaffAvailable(t *testing.T) {
	svc := NewService(NewStore(), emptyPicker{})
	svc.Restore(&State{Rooms: SeedRooms()})

	_, err := svc.AdmitPatient(admin, AdmitPatientInput{Name: "X"})
	if !errors.Is(err, ErrNoStaffAvailable) {
		t.Fatalf("expected ErrNoStaffAvailable, got %v", err)
	}
	if len(svc.State().Patients) != 0 {
		t.Errorf("failed admission must not create a patient")
	}
	if len(svc.State().Timeline) != 0 {
		t.Errorf("failed admission must not append an event")
	}
}

func TestAdmitEmergency(t *testing.T) {
	svc := newTestService()
	p, err := svc.AdmitEmergency(admin, "Unknown Male")
	if err != nil {
		t.Fatalf("AdmitEmergency: %v", err)
	}

	if p.Priority != UrgencyCritical {
		t.Errorf("expected Critical priority, got %s", p.Priority)
	}
	if p.Gender != "Other" || p.BloodGroup != "Unknown" || p.BP != "N/A" {
		t.Errorf("unexpected emergency defaults: %+v", p)
	}
	if p.Allergies != "None reported (Emergency)" {
		t.Errorf("unexpected allergies default %q", p.Allergies)
	}
	if p.TemperatureC != 37 {
		t.Errorf("unexpected temperature default %v", p.TemperatureC)
	}

	events := svc.TimelineForPatient(p.ID)
	if len(events) != 1 || events[0].Title != "EMERGENCY ADMISSION" {
		t.Fatalf("expected EMERGENCY ADMISSION event, got %+v", events)
	}
	if events[0].Urgency != UrgencyCritical {
		t.Errorf("expected Critical event urgency, got %s", events[0].Urgency)
	}
}

func TestAdmitEmergency_NameRequired(t *testing.T) {
	svc := newTestService()
	if _, err := svc.AdmitEmergency(admin, "  "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

// -- Prescriptions --

func TestOrderPrescription(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	rx, err := svc.OrderPrescription(doctor, p.ID, "Ibuprofen", "200mg", "TID", UrgencyNormal)
	if err != nil {
		t.Fatalf("OrderPrescription: %v", err)
	}
	if rx.Status != PrescriptionPending {
		t.Errorf("expected Pending, got %s", rx.Status)
	}
	if rx.AllergyConflict {
		t.Errorf("unexpected allergy conflict for Ibuprofen vs Penicillin")
	}

	events := svc.TimelineForPatient(p.ID)
	if events[0].Title != "Prescription Ordered" {
		t.Errorf("unexpected event title %q", events[0].Title)
	}
}

func TestOrderPrescription_AllergyAdvisoryNeverBlocks(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	rx, err := svc.OrderPrescription(doctor, p.ID, "penicillin", "500mg", "BID", UrgencyHigh)
	if err != nil {
		t.Fatalf("allergy match must not block ordering: %v", err)
	}
	if !rx.AllergyConflict {
		t.Errorf("expected allergy conflict flag for penicillin vs %q", p.Allergies)
	}

	if _, err := svc.DispenseMedication(pharm, rx.ID); err != nil {
		t.Fatalf("allergy match must not block dispensing: %v", err)
	}
}

func TestOrderPrescription_DischargedPatient(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	if _, err := svc.DischargePatient(doctor, p.ID); err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}
	_, err := svc.OrderPrescription(doctor, p.ID, "Ibuprofen", "200mg", "TID", UrgencyNormal)
	if !errors.Is(err, ErrPatientDischarged) {
		t.Fatalf("expected ErrPatientDischarged, got %v", err)
	}
}

func TestDispenseMedication(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	rx, _ := svc.OrderPrescription(doctor, p.ID, "Ibuprofen", "200mg", "TID", UrgencyNormal)

	rx, err := svc.DispenseMedication(pharm, rx.ID)
	if err != nil {
		t.Fatalf("DispenseMedication: %v", err)
	}
	if rx.Status != PrescriptionDispensed {
		t.Errorf("expected Dispensed, got %s", rx.Status)
	}

	_, err = svc.DispenseMedication(pharm, rx.ID)
	if !errors.Is(err, ErrAlreadyDispensed) {
		t.Fatalf("expected ErrAlreadyDispensed on repeat, got %v", err)
	}
}

func TestDispenseMedication_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.DispenseMedication(pharm, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// -- Diagnostic tests --

func TestDiagnosticTestLifecycle(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	tst, err := svc.OrderDiagnosticTest(doctor, p.ID, "Chest X-Ray", UrgencyHigh, time.Time{})
	if err != nil {
		t.Fatalf("OrderDiagnosticTest: %v", err)
	}
	if tst.Status != TestPending {
		t.Errorf("expected Pending, got %s", tst.Status)
	}

	tst, err = svc.AttachReport(lab, tst.ID, "https://reports.local/xray-1.pdf")
	if err != nil {
		t.Fatalf("AttachReport: %v", err)
	}
	if tst.Status != TestInProgress {
		t.Errorf("expected In Progress after report, got %s", tst.Status)
	}

	tst, err = svc.CompleteDiagnosticTest(lab, tst.ID)
	if err != nil {
		t.Fatalf("CompleteDiagnosticTest: %v", err)
	}
	if tst.Status != TestCompleted {
		t.Errorf("expected Completed, got %s", tst.Status)
	}
	if tst.Technician != lab.Name {
		t.Errorf("expected technician %q, got %q", lab.Name, tst.Technician)
	}

	events := svc.TimelineForPatient(p.ID)
	if events[0].Title != "Lab Report Completed" {
		t.Errorf("unexpected latest event %q", events[0].Title)
	}
	if events[0].ReportURL != "https://reports.local/xray-1.pdf" {
		t.Errorf("completion event must carry the report url, got %q", events[0].ReportURL)
	}
}

func TestCompleteDiagnosticTest_ReportMissing(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	tst, _ := svc.OrderDiagnosticTest(doctor, p.ID, "CBC", UrgencyNormal, time.Time{})

	_, err := svc.CompleteDiagnosticTest(lab, tst.ID)
	if !errors.Is(err, ErrReportMissing) {
		t.Fatalf("expected ErrReportMissing, got %v", err)
	}
	if st := svc.State().Tests[0].Status; st != TestPending {
		t.Errorf("failed completion must not change status, got %s", st)
	}
}

func TestCompleteDiagnosticTest_AlreadyCompleted(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	tst, _ := svc.OrderDiagnosticTest(doctor, p.ID, "CBC", UrgencyNormal, time.Time{})
	if _, err := svc.AttachReport(lab, tst.ID, "https://reports.local/cbc.pdf"); err != nil {
		t.Fatalf("AttachReport: %v", err)
	}
	if _, err := svc.CompleteDiagnosticTest(lab, tst.ID); err != nil {
		t.Fatalf("CompleteDiagnosticTest: %v", err)
	}
	_, err := svc.CompleteDiagnosticTest(lab, tst.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAttachReport_CompletedTest(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	tst, _ := svc.OrderDiagnosticTest(doctor, p.ID, "CBC", UrgencyNormal, time.Time{})
	svc.AttachReport(lab, tst.ID, "https://reports.local/cbc.pdf")
	svc.CompleteDiagnosticTest(lab, tst.ID)

	_, err := svc.AttachReport(lab, tst.ID, "https://reports.local/cbc-v2.pdf")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// -- Nursing instructions --

func TestNursingInstructionLifecycle(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	n, err := svc.OrderNursingInstruction(doctor, p.ID, "Monitor BP hourly", UrgencyHigh)
	if err != nil {
		t.Fatalf("OrderNursingInstruction: %v", err)
	}
	if n.Status != InstructionPending {
		t.Errorf("expected Pending, got %s", n.Status)
	}
	if n.DoctorName != doctor.Name {
		t.Errorf("expected ordering doctor %q, got %q", doctor.Name, n.DoctorName)
	}

	n, err = svc.CompleteNursingInstruction(nurse, n.ID)
	if err != nil {
		t.Fatalf("CompleteNursingInstruction: %v", err)
	}
	if n.Status != InstructionCompleted {
		t.Errorf("expected Completed, got %s", n.Status)
	}

	_, err = svc.CompleteNursingInstruction(nurse, n.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on repeat, got %v", err)
	}

	events := svc.TimelineForPatient(p.ID)
	if events[0].Title != "Instruction Executed" {
		t.Errorf("unexpected latest event %q", events[0].Title)
	}
}

// -- Surgery requests --

func TestRequestSurgery(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	r, err := svc.RequestSurgery(doctor, p.ID, "Appendectomy", "2026-03-12", "14:00", 90, UrgencyHigh)
	if err != nil {
		t.Fatalf("RequestSurgery: %v", err)
	}
	if r.Status != ORRequestPending {
		t.Errorf("expected Pending, got %s", r.Status)
	}
	if r.DoctorID != doctor.EmployeeID {
		t.Errorf("expected requesting doctor %s, got %s", doctor.EmployeeID, r.DoctorID)
	}

	events := svc.TimelineForPatient(p.ID)
	if events[0].Title != "OR Booking Requested" {
		t.Errorf("unexpected event %q", events[0].Title)
	}
}

func TestRequestSurgery_DateBeforeRegistration(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	_, err := svc.RequestSurgery(doctor, p.ID, "Appendectomy", "2026-03-09", "14:00", 90, UrgencyHigh)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRequestSurgery_SameDayAllowed(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	if _, err := svc.RequestSurgery(doctor, p.ID, "Appendectomy", "2026-03-10", "16:00", 60, UrgencyNormal); err != nil {
		t.Fatalf("same-day surgery request must be allowed: %v", err)
	}
}

func TestRequestSurgery_MalformedDate(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	_, err := svc.RequestSurgery(doctor, p.ID, "Appendectomy", "12-03-2026", "14:00", 90, UrgencyNormal)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for malformed date, got %v", err)
	}
}

// -- Vitals --

func TestRecordVitals(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	p, err := svc.RecordVitals(nurse, p.ID, "130/85", 38.4)
	if err != nil {
		t.Fatalf("RecordVitals: %v", err)
	}
	if p.BP != "130/85" || p.TemperatureC != 38.4 {
		t.Errorf("vitals not updated: %+v", p)
	}

	// Blank fields keep the previous reading.
	p, err = svc.RecordVitals(nurse, p.ID, "", 0)
	if err != nil {
		t.Fatalf("RecordVitals: %v", err)
	}
	if p.BP != "130/85" || p.TemperatureC != 38.4 {
		t.Errorf("blank vitals must keep previous values: %+v", p)
	}

	events := svc.TimelineForPatient(p.ID)
	if events[0].Title != "Vitals Logged" {
		t.Errorf("unexpected event %q", events[0].Title)
	}
}

// -- Discharge --

func TestDischargePatient(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	p, err := svc.DischargePatient(doctor, p.ID)
	if err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}
	if p.Status != PatientDischarged {
		t.Errorf("expected Discharged, got %s", p.Status)
	}

	events := svc.TimelineForPatient(p.ID)
	if events[0].Title != "Patient Discharged" {
		t.Errorf("unexpected event %q", events[0].Title)
	}
}

func TestDischargePatient_Twice(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	if _, err := svc.DischargePatient(doctor, p.ID); err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}

	before := len(svc.State().Timeline)
	_, err := svc.DischargePatient(doctor, p.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if after := len(svc.State().Timeline); after != before {
		t.Errorf("failed discharge must not append an event: %d -> %d", before, after)
	}
}

func TestDischargePatient_InSurgery(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	if _, err := svc.BookRoomEmergency(admin, "A", p.ID); err != nil {
		t.Fatalf("BookRoomEmergency: %v", err)
	}

	_, err := svc.DischargePatient(doctor, p.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for in-surgery discharge, got %v", err)
	}
}

// -- Timeline --

func TestTimeline_OneEventPerMutation(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)

	rx, _ := svc.OrderPrescription(doctor, p.ID, "Ibuprofen", "200mg", "TID", UrgencyNormal)
	svc.DispenseMedication(pharm, rx.ID)
	tst, _ := svc.OrderDiagnosticTest(doctor, p.ID, "CBC", UrgencyNormal, time.Time{})
	svc.AttachReport(lab, tst.ID, "https://reports.local/cbc.pdf")
	svc.CompleteDiagnosticTest(lab, tst.ID)
	n, _ := svc.OrderNursingInstruction(doctor, p.ID, "Turn q2h", UrgencyNormal)
	svc.CompleteNursingInstruction(nurse, n.ID)
	svc.RecordVitals(nurse, p.ID, "118/76", 36.9)
	svc.DischargePatient(doctor, p.ID)

	// admit + 9 mutations above
	if got := len(svc.State().Timeline); got != 10 {
		t.Fatalf("expected 10 events, got %d", got)
	}
}

func TestTimeline_NewestFirst(t *testing.T) {
	svc := newTestService()
	p := admitTestPatient(t, svc)
	svc.RecordVitals(nurse, p.ID, "118/76", 36.9)

	events := svc.TimelineForPatient(p.ID)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "Vitals Logged" || events[1].Title != "Patient Registered" {
		t.Errorf("timeline not newest-first: %q, %q", events[0].Title, events[1].Title)
	}
}
