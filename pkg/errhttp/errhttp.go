// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/httpx"
	itemdomain "github.com/ghuser/stockhub/services/item/domain"
)

// Writer writes error responses. In production 5xx details are replaced by
// the status text.
type Writer struct {
	isProduction bool
}

// New returns a Writer. isProduction hides 5xx details from clients.
func New(isProduction bool) *Writer {
	return &Writer{isProduction: isProduction}
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func (e *Writer) WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	switch status {
	case http.StatusNotFound:
		// Absent and foreign items must produce identical bodies.
		httpx.JSONError(w, status, itemdomain.ErrItemNotFound.Error())
	case http.StatusUnauthorized:
		auth.Unauthorized(w)
	default:
		httpx.JSONError(w, status, httpx.SafeError(err, status, e.isProduction))
	}
}

// WriteError writes err with development detail. Prefer a Writer built with
// New in handlers so production settings apply.
func WriteError(w http.ResponseWriter, err error) {
	New(false).WriteError(w, err)
}

// StatusFor returns the status WriteError would use for err.
func StatusFor(err error) int {
	return mapErrorToStatus(err)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrIdentityNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, itemdomain.ErrInvalidItem):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
