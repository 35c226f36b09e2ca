package care

import "time"

// Urgency is the priority tier attached to patients, orders and events.
// It drives display and alerting, never scheduling arbitration.
type Urgency string

const (
	UrgencyNormal   Urgency = "Normal"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// PatientStatus is the patient's position in the admission → discharge cycle.
type PatientStatus string

const (
	PatientAdmitted         PatientStatus = "Admitted"
	PatientSurgeryScheduled PatientStatus = "Surgery Scheduled"
	PatientInSurgery        PatientStatus = "In Surgery"
	PatientDischarged       PatientStatus = "Discharged"
)

type PrescriptionStatus string

const (
	PrescriptionPending    PrescriptionStatus = "Pending"
	PrescriptionInProgress PrescriptionStatus = "In Progress"
	PrescriptionDispensed  PrescriptionStatus = "Dispensed"
)

type TestStatus string

const (
	TestPending    TestStatus = "Pending"
	TestInProgress TestStatus = "In Progress"
	TestCompleted  TestStatus = "Completed"
)

type InstructionStatus string

const (
	InstructionPending   InstructionStatus = "Pending"
	InstructionCompleted InstructionStatus = "Completed"
)

type ORRequestStatus string

const (
	ORRequestPending   ORRequestStatus = "Pending"
	ORRequestApproved  ORRequestStatus = "Approved"
	ORRequestRejected  ORRequestStatus = "Rejected"
	ORRequestCompleted ORRequestStatus = "Completed"
)

// RoomStatus is the OR room's position in its Available → Booked →
// InSurgery → Available cycle. Cleaning is reserved: the release path
// returns rooms directly to Available.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "Available"
	RoomBooked    RoomStatus = "Booked"
	RoomInSurgery RoomStatus = "In Surgery"
	RoomCleaning  RoomStatus = "Cleaning"
)

type EventType string

const (
	EventRegistration EventType = "registration"
	EventPrescription EventType = "prescription"
	EventDiagnostic   EventType = "diagnostic"
	EventNursing      EventType = "nursing"
	EventSurgery      EventType = "surgery"
	EventStatus       EventType = "status"
	EventVitals       EventType = "vitals"
)

// Patient is the central record. Care team slots are weak id references
// into the staff directory, never resolved into object pointers.
type Patient struct {
	ID           int           `json:"patient_id"`
	Name         string        `json:"patient_name"`
	Age          int           `json:"age"`
	Gender       string        `json:"gender"`
	HeightCM     float64       `json:"height_cm"`
	WeightKG     float64       `json:"weight_kg"`
	TemperatureC float64       `json:"temperature_c"`
	BloodGroup   string        `json:"blood_group"`
	BP           string        `json:"bp"`
	Allergies    string        `json:"allergies"`
	Priority     Urgency       `json:"priority"`
	Status       PatientStatus `json:"status"`
	RegisteredAt time.Time     `json:"registration_datetime"`
	DoctorID     string        `json:"assigned_doctor_id,omitempty"`
	NurseID      string        `json:"assigned_nurse_id,omitempty"`
	DiagID       string        `json:"assigned_diag_id,omitempty"`
	PharmID      string        `json:"assigned_pharm_id,omitempty"`
	AdminID      string        `json:"assigned_admin_id,omitempty"`
}

type Prescription struct {
	ID              string             `json:"id"`
	PatientID       int                `json:"patient_id"`
	MedicineName    string             `json:"medicine_name"`
	Dosage          string             `json:"dosage"`
	Frequency       string             `json:"frequency"`
	Urgency         Urgency            `json:"urgency"`
	Status          PrescriptionStatus `json:"status"`
	// AllergyConflict is advisory only. It flags a match between the
	// medicine and the patient's allergy text for human review; it never
	// blocks ordering or dispensing.
	AllergyConflict bool      `json:"allergy_conflict"`
	OrderedAt       time.Time `json:"ordered_at"`
}

type DiagnosticTest struct {
	ID          string     `json:"id"`
	PatientID   int        `json:"patient_id"`
	TestName    string     `json:"test_name"`
	Priority    Urgency    `json:"priority"`
	ScheduledAt time.Time  `json:"scheduled_datetime"`
	Status      TestStatus `json:"status"`
	Technician  string     `json:"technician,omitempty"`
	ReportURL   string     `json:"report_url,omitempty"`
}

type NursingInstruction struct {
	ID          string            `json:"id"`
	PatientID   int               `json:"patient_id"`
	Instruction string            `json:"care_instruction"`
	Urgency     Urgency           `json:"urgency"`
	Status      InstructionStatus `json:"status"`
	DoctorName  string            `json:"doctor_name"`
	CreatedAt   time.Time         `json:"timestamp"`
}

type ORRequest struct {
	ID          string          `json:"id"`
	PatientID   int             `json:"patient_id"`
	DoctorID    string          `json:"doctor_id"`
	DoctorName  string          `json:"doctor_name"`
	SurgeryName string          `json:"surgery_name"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	DurationMin int             `json:"duration"`
	Urgency     Urgency         `json:"urgency"`
	Status      ORRequestStatus `json:"status"`
	CreatedAt   time.Time       `json:"timestamp"`
}

// ORRoom is one of the fixed bookable theaters. The occupant is a weak
// patient id reference; zero means empty.
type ORRoom struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    RoomStatus `json:"status"`
	PatientID int        `json:"current_patient_id,omitempty"`
}

// TimelineEvent is one append-only audit record. Immutable once created;
// the log is totally ordered by creation.
type TimelineEvent struct {
	ID          string    `json:"id"`
	PatientID   int       `json:"patient_id"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	Urgency     Urgency   `json:"urgency"`
	Actor       string    `json:"actor"`
	ReportURL   string    `json:"report_url,omitempty"`
}

// Actor identifies the employee performing an operation, resolved by the
// session layer before any coordinator call.
type Actor struct {
	EmployeeID string
	Name       string
	Role       string
}
