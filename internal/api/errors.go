package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ryanbastic/go-sheetdesk/internal/spreadsheet"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgInternal   = "An internal server error occurred."
	msgUnexpected = "An unexpected error occurred."
)

// envelope is the body of every sheet mutation response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Status: statusError, Message: msg})
}

// statusForKind maps an error kind onto its HTTP status class.
func statusForKind(kind spreadsheet.Kind) int {
	switch kind {
	case spreadsheet.KindInvalidArgument, spreadsheet.KindNotFound:
		return http.StatusBadRequest
	case spreadsheet.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeOperationError answers with the envelope for err. Client errors echo
// the operation's message; server errors get a generic one.
func writeOperationError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	kind := spreadsheet.Classify(err)
	status := statusForKind(kind)
	if status < http.StatusInternalServerError {
		logger.Warn("sheet operation rejected", "op", op, "kind", kind.String(), "error", err)
		writeError(w, status, clientMessage(err))
		return
	}

	logger.Error("sheet operation failed", "op", op, "kind", kind.String(), "error", err)
	switch kind {
	case spreadsheet.KindRemote, spreadsheet.KindTransport:
		writeError(w, status, msgInternal)
	default:
		writeError(w, status, msgUnexpected)
	}
}

func clientMessage(err error) string {
	var e *spreadsheet.Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return err.Error()
}
