package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peoplehub/accounts-api/internal/api/metrics"
	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

// AuthHandler handles account registration.
type AuthHandler struct {
	registration ports.RegistrationService
}

func NewAuthHandler(registration ports.RegistrationService) *AuthHandler {
	return &AuthHandler{registration: registration}
}

// Register creates a new user account and issues its session tokens.
//
// Tokens are never part of the response body; the endpoint acknowledges with
// a message only. Duplicate usernames surface as 402 — a quirk of the
// published contract that existing consumers depend on.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  validationResponse
// @Failure      402   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	start := time.Now()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		observe("validation_failed", start)
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	// Field validation runs before any store access.
	if err := c.Validate(&req); err != nil {
		observe("validation_failed", start)
		var ve *RequestValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, validationResponse{Errors: ve.Errors})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Email:          req.Email,
		RequestedRoles: req.Role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Username:       req.Username,
		Password:       req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			observe("duplicate_email", start)
			return c.JSON(http.StatusConflict, errorResponse{Error: "Email already registered"})
		case errors.Is(err, domain.ErrUsernameTaken):
			observe("duplicate_username", start)
			return c.JSON(http.StatusPaymentRequired, errorResponse{Error: "Username has been registered"})
		default:
			observe("error", start)
			// Central error handler logs the cause and renders a generic 500.
			return err
		}
	}

	observe("success", start)
	return c.JSON(http.StatusOK, messageResponse{Message: result.Message})
}

func observe(outcome string, start time.Time) {
	metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	metrics.RegistrationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
