package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/watchit/internal/service"
	"github.com/Skotchmaster/watchit/internal/token"
	"github.com/Skotchmaster/watchit/pkg/logging"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var tokenErrors = []struct {
	err  error
	kind string
	msg  string
}{
	{token.ErrMissing, "missing", "Missing token"},
	{token.ErrExpired, "expired", "Token expired"},
	{token.ErrRevoked, "revoked", "Token revoked"},
	{token.ErrMalformed, "malformed", "Invalid token"},
}

var serviceErrors = []struct {
	err    error
	status int
	msg    string
}{
	{service.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{service.ErrInvalidListName, http.StatusBadRequest, "Invalid list name"},
	{service.ErrDuplicateUsername, http.StatusBadRequest, "Username already exists"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrNotFound, http.StatusNotFound, "Not found"},
	{service.ErrUpstream, http.StatusInternalServerError, "Movie metadata service unavailable"},
	{service.ErrNotImplemented, http.StatusNotImplemented, "Not implemented"},
}

// httpError maps service and token errors to the response they produce.
// Anything unknown becomes a generic 500 with the cause kept as internal.
func httpError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, te := range tokenErrors {
		if errors.Is(err, te.err) {
			return echo.NewHTTPError(http.StatusUnauthorized, errorBody{Error: te.msg, Kind: te.kind}).SetInternal(err)
		}
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			msg, ok := service.PublicMessage(err)
			if !ok {
				msg = se.msg
			}
			return echo.NewHTTPError(se.status, errorBody{Error: msg}).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, errorBody{Error: "Internal server error"}).SetInternal(err)
}

// ErrorHandler renders every error as {"error": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he := httpError(err)

	var body errorBody
	switch m := he.Message.(type) {
	case errorBody:
		body = m
	case string:
		body = errorBody{Error: m}
	case error:
		body = errorBody{Error: m.Error()}
	default:
		body = errorBody{Error: fmt.Sprint(m)}
	}

	if he.Code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", he.Code, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response", "error", werr)
	}
}
