package webserver

import (
	"errors"
	"net/http"

	"github.com/rawthoughts/modfeed/src/ledger"
	"github.com/rawthoughts/modfeed/src/status"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/workflow"
)

// mapError converts core errors to an HTTP status and a user-facing message.
// Store internals never leak into responses; anything unexpected degrades to
// a generic retry notice.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "submission not found"
	case errors.Is(err, status.ErrAlreadyDecided):
		return http.StatusConflict, "already processed"
	case errors.Is(err, status.ErrBadStatus):
		return http.StatusBadRequest, "unknown status"
	case errors.Is(err, workflow.ErrEmptyText):
		return http.StatusBadRequest, "submission text is empty"
	case errors.Is(err, workflow.ErrTextTooLong):
		return http.StatusBadRequest, "submission text is too long"
	case errors.Is(err, ledger.ErrContended):
		return http.StatusServiceUnavailable, "busy, please try again"
	default:
		return http.StatusServiceUnavailable, "temporary failure, please try again"
	}
}
