package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

func apiError(status int, kind, msg string) *echo.HTTPError {
	return echo.NewHTTPError(status, transport.ErrorResponse{Error: kind, Message: msg})
}

func validationError(err error) *echo.HTTPError {
	return apiError(http.StatusUnprocessableEntity, "validation_error", describeValidation(err))
}

func badBody(err error) *echo.HTTPError {
	msg := "invalid request body"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	return apiError(http.StatusBadRequest, "bad_request", msg)
}

// toHTTP maps service errors to responses. Unknown errors become a bare 500.
func toHTTP(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return apiError(http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		return apiError(http.StatusBadRequest, "duplicate_email", "email already registered")
	case errors.Is(err, service.ErrDuplicateUsername):
		return apiError(http.StatusBadRequest, "duplicate_username", "username already taken")
	case errors.Is(err, service.ErrDuplicateRole):
		return apiError(http.StatusConflict, "duplicate_role", "role already exists")
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		return apiError(http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		return apiError(http.StatusForbidden, "forbidden", "not enough rights")
	case errors.Is(err, service.ErrNotFound):
		return apiError(http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, service.ErrServiceUnavailable):
		return apiError(http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable")
	default:
		return apiError(http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// fail logs err at a level matching its status and returns the response error.
func fail(l *slog.Logger, event string, err error) error {
	he := toHTTP(err)
	if he.Code >= 500 {
		l.Error(event, "status", he.Code, "error", err)
	} else {
		l.Warn(event, "status", he.Code, "error", err)
	}
	return he
}
