package care

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wardflow/wardflow/internal/platform/auth"
	"github.com/wardflow/wardflow/pkg/pagination"
)

// Saver is the write-through persistence hook: the handler saves the full
// state after every successful mutation.
type Saver interface {
	Save(ctx context.Context, st *State) error
}

type Handler struct {
	svc    *Service
	saver  Saver
	logger zerolog.Logger
}

func NewHandler(svc *Service, saver Saver, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, saver: saver, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – every signed-in role
	read := api.Group("", auth.RequireRole("Doctor", "Nurse", "Diagnostic", "Pharmacy"))
	read.GET("/patients", h.ListPatients)
	read.GET("/patients/:id", h.GetPatient)
	read.GET("/patients/:id/timeline", h.GetTimeline)
	read.GET("/prescriptions", h.ListPrescriptions)
	read.GET("/tests", h.ListTests)
	read.GET("/nursing-instructions", h.ListInstructions)
	read.GET("/or-requests", h.ListORRequests)
	read.GET("/or-rooms", h.ListORRooms)
	read.GET("/medication-schedule", h.GetMedicationSchedule)
	read.GET("/patients/:id/medications", h.GetRoundsStatus)

	admin := api.Group("", auth.RequireRole("Admin"))
	admin.POST("/patients", h.AdmitPatient)
	admin.POST("/patients/emergency", h.AdmitEmergency)
	admin.POST("/or-rooms/:id/book", h.BookRoom)
	admin.POST("/or-rooms/:id/book-emergency", h.BookRoomEmergency)
	admin.POST("/or-rooms/:id/start", h.StartSurgery)
	admin.POST("/or-rooms/:id/release", h.ReleaseRoom)

	doctor := api.Group("", auth.RequireRole("Doctor"))
	doctor.POST("/prescriptions", h.OrderPrescription)
	doctor.POST("/tests", h.OrderTest)
	doctor.POST("/nursing-instructions", h.OrderInstruction)
	doctor.POST("/or-requests", h.RequestSurgery)
	doctor.POST("/patients/:id/discharge", h.DischargePatient)

	nurse := api.Group("", auth.RequireRole("Nurse"))
	nurse.POST("/patients/:id/vitals", h.RecordVitals)
	nurse.POST("/nursing-instructions/:id/complete", h.CompleteInstruction)
	nurse.POST("/patients/:id/medications/:medId/administer", h.AdministerMedication)

	pharmacy := api.Group("", auth.RequireRole("Pharmacy"))
	pharmacy.POST("/prescriptions/:id/dispense", h.DispenseMedication)

	diagnostic := api.Group("", auth.RequireRole("Diagnostic"))
	diagnostic.POST("/tests/:id/report", h.AttachReport)
	diagnostic.POST("/tests/:id/complete", h.CompleteTest)
}

func (h *Handler) actor(c echo.Context) Actor {
	ctx := c.Request().Context()
	return Actor{
		EmployeeID: auth.EmployeeIDFromContext(ctx),
		Name:       auth.FullNameFromContext(ctx),
		Role:       auth.RoleFromContext(ctx),
	}
}

// persist write-throughs the full state. A save failure is logged, not
// surfaced: the in-memory state is authoritative and the next successful
// save catches up.
func (h *Handler) persist(c echo.Context) {
	if h.saver == nil {
		return
	}
	if err := h.saver.Save(c.Request().Context(), h.svc.State()); err != nil {
		h.logger.Error().Err(err).Msg("snapshot save failed")
	}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrAlreadyDispensed),
		errors.Is(err, ErrRoomUnavailable),
		errors.Is(err, ErrPatientDischarged):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrReportMissing),
		errors.Is(err, ErrInvalidDate):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNoStaffAvailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func patientIDParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

// -- Patients --

func (h *Handler) AdmitPatient(c echo.Context) error {
	var in AdmitPatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.AdmitPatient(h.actor(c), in)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) AdmitEmergency(c echo.Context) error {
	var in struct {
		Name string `json:"patient_name"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.AdmitEmergency(h.actor(c), in.Name)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients := h.svc.State().Patients
	total := len(patients)
	start, end := pg.Page(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(patients[start:end], total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Patient(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetTimeline(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Patient(id); err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	events := h.svc.TimelineForPatient(id)
	total := len(events)
	start, end := pg.Page(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(events[start:end], total, pg.Limit, pg.Offset))
}

func (h *Handler) RecordVitals(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil {
		return err
	}
	var in struct {
		BP           string  `json:"bp"`
		TemperatureC float64 `json:"temperature_c"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordVitals(h.actor(c), id, in.BP, in.TemperatureC)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DischargePatient(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil {
		return err
	}
	p, err := h.svc.DischargePatient(h.actor(c), id)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, p)
}

// -- Prescriptions --

func (h *Handler) OrderPrescription(c echo.Context) error {
	var in struct {
		PatientID    int     `json:"patient_id"`
		MedicineName string  `json:"medicine_name"`
		Dosage       string  `json:"dosage"`
		Frequency    string  `json:"frequency"`
		Urgency      Urgency `json:"urgency"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rx, err := h.svc.OrderPrescription(h.actor(c), in.PatientID, in.MedicineName, in.Dosage, in.Frequency, in.Urgency)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusCreated, rx)
}

func (h *Handler) DispenseMedication(c echo.Context) error {
	rx, err := h.svc.DispenseMedication(h.actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, rx)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := filterByPatient(h.svc.State().Prescriptions, c, func(p *Prescription) int { return p.PatientID })
	total := len(items)
	start, end := pg.Page(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], total, pg.Limit, pg.Offset))
}

// -- Diagnostic tests --

func (h *Handler) OrderTest(c echo.Context) error {
	var in struct {
		PatientID   int       `json:"patient_id"`
		TestName    string    `json:"test_name"`
		Priority    Urgency   `json:"priority"`
		ScheduledAt time.Time `json:"scheduled_datetime"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.OrderDiagnosticTest(h.actor(c), in.PatientID, in.TestName, in.Priority, in.ScheduledAt)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) AttachReport(c echo.Context) error {
	var in struct {
		ReportURL string `json:"report_url"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.AttachReport(h.actor(c), c.Param("id"), in.ReportURL)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CompleteTest(c echo.Context) error {
	t, err := h.svc.CompleteDiagnosticTest(h.actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTests(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := filterByPatient(h.svc.State().Tests, c, func(t *DiagnosticTest) int { return t.PatientID })
	total := len(items)
	start, end := pg.Page(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], total, pg.Limit, pg.Offset))
}

// -- Nursing instructions --

func (h *Handler) OrderInstruction(c echo.Context) error {
	var in struct {
		PatientID   int     `json:"patient_id"`
		Instruction string  `json:"care_instruction"`
		Urgency     Urgency `json:"urgency"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.OrderNursingInstruction(h.actor(c), in.PatientID, in.Instruction, in.Urgency)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) CompleteInstruction(c echo.Context) error {
	n, err := h.svc.CompleteNursingInstruction(h.actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListInstructions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := filterByPatient(h.svc.State().Instructions, c, func(n *NursingInstruction) int { return n.PatientID })
	total := len(items)
	start, end := pg.Page(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], total, pg.Limit, pg.Offset))
}

// -- OR scheduling --

func (h *Handler) RequestSurgery(c echo.Context) error {
	var in struct {
		PatientID   int     `json:"patient_id"`
		SurgeryName string  `json:"surgery_name"`
		Date        string  `json:"date"`
		Time        string  `json:"time"`
		DurationMin int     `json:"duration"`
		Urgency     Urgency `json:"urgency"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.RequestSurgery(h.actor(c), in.PatientID, in.SurgeryName, in.Date, in.Time, in.DurationMin, in.Urgency)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListORRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := filterByPatient(h.svc.State().ORRequests, c, func(r *ORRequest) int { return r.PatientID })
	total := len(items)
	start, end := pg.Page(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], total, pg.Limit, pg.Offset))
}

func (h *Handler) ListORRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.State().Rooms)
}

func (h *Handler) BookRoom(c echo.Context) error {
	var in struct {
		PatientID   int    `json:"patient_id"`
		SurgeryName string `json:"surgery_name"`
		Date        string `json:"date"`
		Time        string `json:"time"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	room, err := h.svc.BookRoom(h.actor(c), c.Param("id"), in.PatientID, in.SurgeryName, in.Date, in.Time)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, room)
}

func (h *Handler) BookRoomEmergency(c echo.Context) error {
	var in struct {
		PatientID int `json:"patient_id"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	room, err := h.svc.BookRoomEmergency(h.actor(c), c.Param("id"), in.PatientID)
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, room)
}

func (h *Handler) StartSurgery(c echo.Context) error {
	room, err := h.svc.StartSurgery(h.actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, room)
}

func (h *Handler) ReleaseRoom(c echo.Context) error {
	room, err := h.svc.ReleaseRoom(h.actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, room)
}

// -- Medication rounds --

func (h *Handler) GetMedicationSchedule(c echo.Context) error {
	return c.JSON(http.StatusOK, MedicationSchedule())
}

func (h *Handler) GetRoundsStatus(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Patient(id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.svc.Rounds().Status(id))
}

func (h *Handler) AdministerMedication(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil {
		return err
	}
	e, err := h.svc.AdministerMedication(h.actor(c), id, c.Param("medId"))
	if err != nil {
		return httpError(err)
	}
	h.persist(c)
	return c.JSON(http.StatusOK, e)
}

// filterByPatient narrows a listing to one patient when the patient_id
// query param is present.
func filterByPatient[T any](items []T, c echo.Context, pid func(T) int) []T {
	q := c.QueryParam("patient_id")
	if q == "" {
		return items
	}
	want, err := strconv.Atoi(q)
	if err != nil {
		return items
	}
	var out []T
	for _, it := range items {
		if pid(it) == want {
			out = append(out, it)
		}
	}
	return out
}
