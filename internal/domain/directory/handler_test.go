package directory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wardflow/wardflow/internal/platform/auth"
)

func loginRequestRec(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func newLoginHandler() *Handler {
	return NewHandler(NewRoster(Seed()), auth.NewTokens("test-secret", time.Hour))
}

func TestLogin(t *testing.T) {
	h := newLoginHandler()
	rec := loginRequestRec(t, h, `{"email":"nurse1@hospital.local","role":"Nurse","password":"Nurse@123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token    string `json:"token"`
		Employee struct {
			ID   string `json:"employee_id"`
			Role string `json:"role"`
		} `json:"employee"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("empty session token")
	}
	if resp.Employee.ID != "EMPN001" || resp.Employee.Role != "Nurse" {
		t.Errorf("unexpected employee: %+v", resp.Employee)
	}
	if strings.Contains(rec.Body.String(), "Nurse@123") {
		t.Error("password leaked in login response")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	h := newLoginHandler()
	rec := loginRequestRec(t, h, `{"email":"nobody@hospital.local","role":"Nurse","password":"Nurse@123"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email not found for selected role") {
		t.Errorf("unexpected message: %s", rec.Body.String())
	}
}

func TestLogin_BadPassword(t *testing.T) {
	h := newLoginHandler()
	rec := loginRequestRec(t, h, `{"email":"nurse1@hospital.local","role":"Nurse","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid password") {
		t.Errorf("unexpected message: %s", rec.Body.String())
	}
}

func TestLogin_Deactivated(t *testing.T) {
	emps := Seed()
	for _, e := range emps {
		if e.ID == "EMPN001" {
			e.IsActive = false
		}
	}
	h := NewHandler(NewRoster(emps), auth.NewTokens("test-secret", time.Hour))

	rec := loginRequestRec(t, h, `{"email":"nurse1@hospital.local","role":"Nurse","password":"Nurse@123"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "account deactivated") {
		t.Errorf("unexpected message: %s", rec.Body.String())
	}
}

func TestLogin_InvalidRole(t *testing.T) {
	h := newLoginHandler()
	rec := loginRequestRec(t, h, `{"email":"nurse1@hospital.local","role":"Janitor","password":"Nurse@123"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
