package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sweeney/gamepad-hub/internal/command"
	"github.com/sweeney/gamepad-hub/internal/display"
)

var errNoTarget = errors.New("web: display commands disabled")

// okJSON acknowledges an accepted command.
type okJSON struct {
	OK bool `json:"ok"`
}

// errorJSON reports a rejected request.
type errorJSON struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorJSON{Error: err.Error()})
}

// errorStatus maps a command failure to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, command.ErrBadPayload):
		return http.StatusBadRequest
	case errors.Is(err, display.ErrInvalidLine),
		errors.Is(err, display.ErrTooManyLines),
		errors.Is(err, display.ErrRumbleTooLong),
		errors.Is(err, display.ErrInvalidRumble),
		errors.Is(err, display.ErrInvalidDuration):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
