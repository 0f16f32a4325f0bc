package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
	"github.com/AdamBeresnev/tournament-tracker/internal/importer"
	"github.com/AdamBeresnev/tournament-tracker/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteJSON(w, http.StatusConflict, errorBody{Error: msg})
}

// Error writes the response matching err's outcome. A corrupt record is a
// server error but gets its own message so it is not mistaken for an outage.
func Error(w http.ResponseWriter, err error) {
	var schemaErr *importer.SchemaError
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(w, "Tournament not found", err)
	case errors.Is(err, importer.ErrUnknownTable):
		NotFound(w, "Unknown table", err)
	case errors.Is(err, service.ErrConflict):
		Conflict(w, "Tournament was changed by another update", err)
	case service.IsCorrupt(err):
		slog.Error("corrupt tournament record", "error", err)
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Stored tournament record is corrupt"})
	case errors.As(err, &schemaErr):
		BadRequest(w, schemaErr.Error(), err)
	case service.IsValidation(err), errors.Is(err, bracket.ErrInvalidStatus), errors.Is(err, bracket.ErrInvalidDocument):
		BadRequest(w, err.Error(), err)
	default:
		InternalServerError(w, "request failed", err)
	}
}
