package directory

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wardflow/wardflow/internal/platform/auth"
)

type Handler struct {
	roster *Roster
	tokens *auth.Tokens
}

func NewHandler(roster *Roster, tokens *auth.Tokens) *Handler {
	return &Handler{roster: roster, tokens: tokens}
}

// RegisterRoutes mounts login on the public group and the staff listing on
// the authenticated one.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/login", h.Login)
	api.GET("/employees", h.ListEmployees, auth.RequireRole("Doctor", "Nurse", "Diagnostic", "Pharmacy"))
	api.GET("/me", h.Me, auth.RequireRole("Doctor", "Nurse", "Diagnostic", "Pharmacy"))
}

type loginRequest struct {
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string    `json:"token"`
	Employee *Employee `json:"employee"`
}

// Login exchanges credentials for a session token. All three failure modes
// map to 401 with the message the UI displays verbatim.
func (h *Handler) Login(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !in.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	emp, err := h.roster.Authenticate(in.Email, in.Role, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmployeeNotFound),
			errors.Is(err, ErrBadPassword),
			errors.Is(err, ErrDeactivated):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	token, err := h.tokens.Issue(emp.ID, emp.FullName, string(emp.Role))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issuing session token")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Employee: emp})
}

func (h *Handler) ListEmployees(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roster.All())
}

// Me returns the employee behind the current session.
func (h *Handler) Me(c echo.Context) error {
	id := auth.EmployeeIDFromContext(c.Request().Context())
	emp, err := h.roster.ByID(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown session employee")
	}
	return c.JSON(http.StatusOK, emp)
}
