package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lib/pq"

	"github.com/bfp-echague/firetrack/core/access"
	"github.com/bfp-echague/firetrack/core/csql"
	"github.com/bfp-echague/firetrack/core/logger"
)

// Error is the uniform wire format for every failed handler outcome.
// Errors from all layers bubble up as plain Go errors and are translated
// exactly once, by WriteError, at the HTTP boundary.
type Error struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	MoreInfo interface{} `json:"moreInfo,omitempty"`

	status     int
	retryAfter int
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Status returns the HTTP status code the error maps to.
func (e *Error) Status() int {
	return e.status
}

// NewError returns a client error with status 400.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message, status: http.StatusBadRequest}
}

// NewErrorInfo returns a client error with status 400 and additional detail.
func NewErrorInfo(code, message string, moreInfo interface{}) *Error {
	return &Error{Code: code, Message: message, MoreInfo: moreInfo, status: http.StatusBadRequest}
}

// NewStatusError returns an error with an explicit HTTP status code.
func NewStatusError(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, status: status}
}

// predefined errors shared across resources
var (
	// ErrNotFoundID is returned when a path id does not resolve to a record
	ErrNotFoundID = NewStatusError(http.StatusNotFound, "notFoundId", "ID not found.")
	// ErrUnauthorized is returned when the session's privilege rank is too low
	ErrUnauthorized = NewStatusError(http.StatusForbidden, "unauthorized",
		"You do not have sufficient permissions to do this.")
	// ErrInvalidLogin is returned for any failed login attempt, it never
	// reveals whether the username exists
	ErrInvalidLogin = NewStatusError(http.StatusUnauthorized, "invalidLogin",
		"Invalid login credentials.")
)

// postgres error codes for constraint violations
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps any error to its wire representation. Known failures keep
// their detail; everything else becomes an opaque internal error.
func translate(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, access.ErrMissingCookie):
		return NewStatusError(http.StatusUnauthorized, "missingCookieSessionId",
			"Your cookie is missing a \""+access.CookieName+"\" key.")
	case errors.Is(err, access.ErrInvalidSession):
		return NewStatusError(http.StatusUnauthorized, "invalidSession", "Session is invalid.")
	case errors.Is(err, access.ErrExpiredSession):
		return NewStatusError(http.StatusUnauthorized, "expiredSession", "Your session has expired.")
	case errors.Is(err, access.ErrLoggedOut):
		return NewStatusError(http.StatusUnauthorized, "loggedOut", "Your session has been logged out.")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		var message string
		switch pqErr.Code {
		case pqUniqueViolation:
			message = "A duplicate of the values that you have sent already exists."
		case pqForeignKeyViolation:
			message = "Cannot satisfy the foreign key constraint. " +
				"This is usually caused by trying to connect to a value that doesn't exist."
		default:
			message = "The server does not have an attached message to this error."
		}
		return NewErrorInfo("dbError", message, map[string]string{
			"sqlCode":    string(pqErr.Code),
			"constraint": pqErr.Constraint,
		})
	}

	if errors.Is(err, csql.ErrNoRows) {
		return NewErrorInfo("dbError",
			"Cannot find value in database. "+
				"This is usually caused by trying to find a value that doesn't exist.", nil)
	}

	return nil
}

// WriteError is the single error-to-envelope boundary. Unexpected errors
// are logged with full detail and surface as an opaque 500 with no
// internal detail exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr := translate(err); apiErr != nil {
		if apiErr.retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(apiErr.retryAfter))
			w.Header().Set("Access-Control-Expose-Headers", "Retry-After")
		}
		writeJSON(w, apiErr.status, apiErr)
		return
	}

	logger.FromContext(r.Context()).WithError(err).Error("unexpected error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"message": "The server encountered an error during your request. This error has been logged.",
	})
}

// upsertError wraps unrecognized errors from create/update closures into an
// explicit otherError envelope; database constraint errors pass through to
// the translator untouched.
func upsertError(err error) error {
	var apiErr *Error
	var pqErr *pq.Error
	if errors.As(err, &apiErr) || errors.As(err, &pqErr) || errors.Is(err, csql.ErrNoRows) {
		return err
	}
	return NewError("otherError", err.Error())
}
