package care

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wardflow/wardflow/internal/domain/directory"
)

// Service is the care coordinator: one operation per domain action, each
// validating preconditions against the store, mutating atomically and
// appending exactly one timeline event. A single mutex serializes all
// operations — the store itself has no locking, so the service is the one
// writer the invariants rely on.
type Service struct {
	mu      sync.Mutex
	store   *Store
	picker  directory.Picker
	rounds  *RoundsBoard
	now     func() time.Time
	onEvent func(*TimelineEvent)
}

// DefaultMedResetWindow is how long an administered marker stays on the
// rounds board before the next cycle may be given.
const DefaultMedResetWindow = 3 * time.Hour

func NewService(store *Store, picker directory.Picker) *Service {
	return &Service{
		store:  store,
		picker: picker,
		rounds: NewRoundsBoard(DefaultMedResetWindow),
		now:    time.Now,
	}
}

// OnEvent registers a callback invoked after every appended timeline event.
// It runs while the coordinator lock is held, so the callback must not call
// back into the service.
func (s *Service) OnEvent(fn func(*TimelineEvent)) {
	s.onEvent = fn
}

func (s *Service) appendEvent(patientID int, title, description string, typ EventType, urgency Urgency, actor string, reportURL string) *TimelineEvent {
	e := &TimelineEvent{
		ID:          s.store.NewRecordID(),
		PatientID:   patientID,
		Timestamp:   s.now(),
		Title:       title,
		Description: description,
		Type:        typ,
		Urgency:     urgency,
		Actor:       actor,
		ReportURL:   reportURL,
	}
	s.store.AppendEvent(e)
	if s.onEvent != nil {
		s.onEvent(e)
	}
	return e
}

func (s *Service) pick(role directory.Role) (*directory.Employee, error) {
	emp, err := s.picker.Pick(role)
	if err != nil {
		return nil, fmt.Errorf("assigning %s: %w", role, ErrNoStaffAvailable)
	}
	return emp, nil
}

// AdmitPatientInput carries the registration form. Team slots left empty
// are filled by the assignment picker; provided ids are honored as-is.
type AdmitPatientInput struct {
	Name         string  `json:"patient_name"`
	Age          int     `json:"age"`
	Gender       string  `json:"gender"`
	HeightCM     float64 `json:"height_cm"`
	WeightKG     float64 `json:"weight_kg"`
	TemperatureC float64 `json:"temperature_c"`
	BloodGroup   string  `json:"blood_group"`
	BP           string  `json:"bp"`
	Allergies    string  `json:"allergies"`
	Priority     Urgency `json:"priority"`
	DoctorID     string  `json:"assigned_doctor_id"`
	NurseID      string  `json:"assigned_nurse_id"`
	DiagID       string  `json:"assigned_diag_id"`
	PharmID      string  `json:"assigned_pharm_id"`
}

// AdmitPatient registers a patient through the normal flow. The admitting
// admin is recorded on the patient record.
func (s *Service) AdmitPatient(actor Actor, in AdmitPatientInput) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Name == "" {
		return nil, fmt.Errorf("patient_name is required")
	}
	if in.Priority == "" {
		in.Priority = UrgencyNormal
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority: %s", in.Priority)
	}

	assigned := map[directory.Role]*string{
		directory.RoleDoctor:     &in.DoctorID,
		directory.RoleNurse:      &in.NurseID,
		directory.RoleDiagnostic: &in.DiagID,
		directory.RolePharmacy:   &in.PharmID,
	}
	for _, role := range []directory.Role{directory.RoleDoctor, directory.RoleNurse, directory.RoleDiagnostic, directory.RolePharmacy} {
		slot := assigned[role]
		if *slot != "" {
			continue
		}
		emp, err := s.pick(role)
		if err != nil {
			return nil, err
		}
		*slot = emp.ID
	}

	p := &Patient{
		ID:           s.store.NextPatientID(),
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		HeightCM:     in.HeightCM,
		WeightKG:     in.WeightKG,
		TemperatureC: in.TemperatureC,
		BloodGroup:   in.BloodGroup,
		BP:           in.BP,
		Allergies:    in.Allergies,
		Priority:     in.Priority,
		Status:       PatientAdmitted,
		RegisteredAt: s.now(),
		DoctorID:     in.DoctorID,
		NurseID:      in.NurseID,
		DiagID:       in.DiagID,
		PharmID:      in.PharmID,
		AdminID:      actor.EmployeeID,
	}
	s.store.AddPatient(p)

	s.appendEvent(p.ID, "Patient Registered",
		fmt.Sprintf("New patient %s admitted. Team assigned.", p.Name),
		EventRegistration, p.Priority, actor.Name, "")
	return p, nil
}

// AdmitEmergency registers a critical patient with only a name. Vitals get
// placeholder values and the whole care team is picked at random.
func (s *Service) AdmitEmergency(actor Actor, name string) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("patient_name is required")
	}

	doc, err := s.pick(directory.RoleDoctor)
	if err != nil {
		return nil, err
	}
	nurse, err := s.pick(directory.RoleNurse)
	if err != nil {
		return nil, err
	}
	diag, err := s.pick(directory.RoleDiagnostic)
	if err != nil {
		return nil, err
	}
	pharm, err := s.pick(directory.RolePharmacy)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		ID:           s.store.NextPatientID(),
		Name:         name,
		Gender:       "Other",
		TemperatureC: 37,
		BloodGroup:   "Unknown",
		BP:           "N/A",
		Allergies:    "None reported (Emergency)",
		Priority:     UrgencyCritical,
		Status:       PatientAdmitted,
		RegisteredAt: s.now(),
		DoctorID:     doc.ID,
		NurseID:      nurse.ID,
		DiagID:       diag.ID,
		PharmID:      pharm.ID,
		AdminID:      actor.EmployeeID,
	}
	s.store.AddPatient(p)

	s.appendEvent(p.ID, "EMERGENCY ADMISSION",
		fmt.Sprintf("ATTENTION: Dr. %s, Nurse %s, Diag %s, and Pharm %s. Emergency case %q admitted. Immediate care team activation required.",
			doc.FullName, nurse.FullName, diag.FullName, pharm.FullName, p.Name),
		EventRegistration, UrgencyCritical, actor.Name, "")
	return p, nil
}

// OrderPrescription creates a pending prescription. An allergy match is
// recorded as advisory data on the record and never blocks the order.
func (s *Service) OrderPrescription(actor Actor, patientID int, medicine, dosage, frequency string, urgency Urgency) (*Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if medicine == "" {
		return nil, fmt.Errorf("medicine_name is required")
	}
	if urgency == "" {
		urgency = UrgencyNormal
	}
	if !urgency.Valid() {
		return nil, fmt.Errorf("invalid urgency: %s", urgency)
	}

	rx := &Prescription{
		ID:              s.store.NewRecordID(),
		PatientID:       patientID,
		MedicineName:    medicine,
		Dosage:          dosage,
		Frequency:       frequency,
		Urgency:         urgency,
		Status:          PrescriptionPending,
		AllergyConflict: allergyConflict(p.Allergies, medicine),
		OrderedAt:       s.now(),
	}
	s.store.AddPrescription(rx)

	s.appendEvent(patientID, "Prescription Ordered",
		fmt.Sprintf("Doctor %s prescribed %s. Pharmacist and Nurse notified.", actor.Name, medicine),
		EventPrescription, urgency, actor.Name, "")
	return rx, nil
}

// allergyConflict reports whether the patient's allergy text mentions the
// medicine. Substring match, case-insensitive, same as the source system.
func allergyConflict(allergies, medicine string) bool {
	if allergies == "" || medicine == "" {
		return false
	}
	return strings.Contains(strings.ToLower(allergies), strings.ToLower(medicine))
}

// DispenseMedication moves a prescription to Dispensed. Prescriptions only
// move forward; a dispensed one is never reopened.
func (s *Service) DispenseMedication(actor Actor, prescriptionID string) (*Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rx, err := s.store.Prescription(prescriptionID)
	if err != nil {
		return nil, err
	}
	if rx.Status != PrescriptionPending && rx.Status != PrescriptionInProgress {
		return nil, fmt.Errorf("prescription %s is %s: %w", rx.ID, rx.Status, ErrAlreadyDispensed)
	}
	rx.Status = PrescriptionDispensed

	s.appendEvent(rx.PatientID, "Medication Dispensed",
		fmt.Sprintf("Pharmacist %s dispensed %s", actor.Name, rx.MedicineName),
		EventPrescription, UrgencyNormal, actor.Name, "")
	return rx, nil
}

// OrderDiagnosticTest creates a pending test for the lab queue.
func (s *Service) OrderDiagnosticTest(actor Actor, patientID int, testName string, priority Urgency, scheduledAt time.Time) (*DiagnosticTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if testName == "" {
		return nil, fmt.Errorf("test_name is required")
	}
	if priority == "" {
		priority = UrgencyNormal
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}
	if scheduledAt.IsZero() {
		scheduledAt = s.now()
	}

	t := &DiagnosticTest{
		ID:          s.store.NewRecordID(),
		PatientID:   patientID,
		TestName:    testName,
		Priority:    priority,
		ScheduledAt: scheduledAt,
		Status:      TestPending,
	}
	s.store.AddTest(t)

	s.appendEvent(patientID, "Lab Request",
		fmt.Sprintf("New diagnostic request: %s. Lab team notified.", testName),
		EventDiagnostic, priority, actor.Name, "")
	return t, nil
}

// AttachReport records the report artifact on a test. Attaching is what
// moves a pending test into progress.
func (s *Service) AttachReport(actor Actor, testID, reportURL string) (*DiagnosticTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Test(testID)
	if err != nil {
		return nil, err
	}
	if t.Status == TestCompleted {
		return nil, fmt.Errorf("test %s already completed: %w", t.ID, ErrInvalidTransition)
	}
	if reportURL == "" {
		return nil, fmt.Errorf("report_url is required")
	}
	t.ReportURL = reportURL
	if t.Status == TestPending {
		t.Status = TestInProgress
	}

	s.appendEvent(t.PatientID, "Report File Uploaded",
		fmt.Sprintf("Lab technician %s uploaded report for %s.", actor.Name, t.TestName),
		EventDiagnostic, UrgencyNormal, actor.Name, "")
	return t, nil
}

// CompleteDiagnosticTest closes a test. The attached report is a hard
// precondition, checked before anything else.
func (s *Service) CompleteDiagnosticTest(actor Actor, testID string) (*DiagnosticTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Test(testID)
	if err != nil {
		return nil, err
	}
	if t.ReportURL == "" {
		return nil, fmt.Errorf("test %s: %w", t.ID, ErrReportMissing)
	}
	if t.Status == TestCompleted {
		return nil, fmt.Errorf("test %s already completed: %w", t.ID, ErrInvalidTransition)
	}
	t.Status = TestCompleted
	t.Technician = actor.Name

	s.appendEvent(t.PatientID, "Lab Report Completed",
		fmt.Sprintf("%s results available. Marked completed by %s", t.TestName, actor.Name),
		EventDiagnostic, UrgencyNormal, actor.Name, t.ReportURL)
	return t, nil
}

// OrderNursingInstruction issues a care instruction to the assigned nurse.
func (s *Service) OrderNursingInstruction(actor Actor, patientID int, instruction string, urgency Urgency) (*NursingInstruction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if instruction == "" {
		return nil, fmt.Errorf("care_instruction is required")
	}
	if urgency == "" {
		urgency = UrgencyNormal
	}
	if !urgency.Valid() {
		return nil, fmt.Errorf("invalid urgency: %s", urgency)
	}

	n := &NursingInstruction{
		ID:          s.store.NewRecordID(),
		PatientID:   patientID,
		Instruction: instruction,
		Urgency:     urgency,
		Status:      InstructionPending,
		DoctorName:  actor.Name,
		CreatedAt:   s.now(),
	}
	s.store.AddInstruction(n)

	s.appendEvent(patientID, "Nursing Care Instruction",
		fmt.Sprintf("Nursing Care: %s. Assigned Nurse notified. Diagnostic and Pharmacy staff alerted.", instruction),
		EventNursing, urgency, actor.Name, "")
	return n, nil
}

// CompleteNursingInstruction marks a pending instruction executed.
func (s *Service) CompleteNursingInstruction(actor Actor, instructionID string) (*NursingInstruction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.Instruction(instructionID)
	if err != nil {
		return nil, err
	}
	if n.Status != InstructionPending {
		return nil, fmt.Errorf("instruction %s is %s: %w", n.ID, n.Status, ErrInvalidTransition)
	}
	n.Status = InstructionCompleted

	s.appendEvent(n.PatientID, "Instruction Executed",
		fmt.Sprintf("Nursing instruction completed: %q", n.Instruction),
		EventNursing, UrgencyNormal, actor.Name, "")
	return n, nil
}

// RequestSurgery files an OR request. The requested date may not precede
// the patient's registration date.
func (s *Service) RequestSurgery(actor Actor, patientID int, surgeryName, date, timeOfDay string, durationMin int, urgency Urgency) (*ORRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if surgeryName == "" {
		return nil, fmt.Errorf("surgery_name is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrInvalidDate)
	}
	// ISO dates compare correctly as strings.
	if date < p.RegisteredAt.Format("2006-01-02") {
		return nil, fmt.Errorf("surgery date %s precedes registration: %w", date, ErrInvalidDate)
	}
	if urgency == "" {
		urgency = UrgencyNormal
	}
	if !urgency.Valid() {
		return nil, fmt.Errorf("invalid urgency: %s", urgency)
	}

	r := &ORRequest{
		ID:          s.store.NewRecordID(),
		PatientID:   patientID,
		DoctorID:    actor.EmployeeID,
		DoctorName:  actor.Name,
		SurgeryName: surgeryName,
		Date:        date,
		Time:        timeOfDay,
		DurationMin: durationMin,
		Urgency:     urgency,
		Status:      ORRequestPending,
		CreatedAt:   s.now(),
	}
	s.store.AddORRequest(r)

	s.appendEvent(patientID, "OR Booking Requested",
		fmt.Sprintf("Surgery requested: %s for %s at %s. Request sent to Administration.", surgeryName, date, timeOfDay),
		EventSurgery, urgency, actor.Name, "")
	return r, nil
}

// RecordVitals updates bp and temperature. Blank fields keep the previous
// reading.
func (s *Service) RecordVitals(actor Actor, patientID int, bp string, temperatureC float64) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientDischarged)
	}
	if bp != "" {
		p.BP = bp
	}
	if temperatureC > 0 {
		p.TemperatureC = temperatureC
	}

	s.appendEvent(patientID, "Vitals Logged",
		fmt.Sprintf("New Reading - BP: %s | Temp: %.1f°C. Recorded by Nurse %s.", p.BP, p.TemperatureC, actor.Name),
		EventVitals, UrgencyNormal, actor.Name, "")
	return p, nil
}

// DischargePatient is terminal: no operation moves a discharged patient
// anywhere else. A patient in surgery cannot be discharged.
func (s *Service) DischargePatient(actor Actor, patientID int) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Patient(patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == PatientDischarged {
		return nil, fmt.Errorf("patient %d already discharged: %w", patientID, ErrInvalidTransition)
	}
	if p.Status == PatientInSurgery {
		return nil, fmt.Errorf("patient %d is in surgery: %w", patientID, ErrInvalidTransition)
	}
	p.Status = PatientDischarged

	s.appendEvent(patientID, "Patient Discharged",
		fmt.Sprintf("Doctor %s has authorized discharge for %s. Final billing and clearance initiated.", actor.Name, p.Name),
		EventStatus, UrgencyNormal, actor.Name, "")
	return p, nil
}

// State snapshots current state under the coordinator lock.
func (s *Service) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Restore replaces the coordinator state, used at startup by the
// persistence collaborator.
func (s *Service) Restore(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Restore(st)
}

// Patient returns a copy of one patient record.
func (s *Service) Patient(id int) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.store.Patient(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

// TimelineForPatient returns the patient's audit trail newest-first.
func (s *Service) TimelineForPatient(patientID int) []*TimelineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.store.TimelineForPatient(patientID)
	out := make([]*TimelineEvent, len(events))
	for i, e := range events {
		cp := *e
		out[len(events)-1-i] = &cp
	}
	return out
}
