// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/targetly/crm-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps application error kinds to HTTP responses. Validation
// failures carry their message to the client; translation and store failures
// are logged and surface as generic server errors.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		invalidPredicate  *apperrors.InvalidPredicateError
		invalidTransition *apperrors.InvalidTransitionError
		invalidReceipt    *apperrors.InvalidReceiptError
		invalidArgument   *apperrors.InvalidArgumentError
		notFound          *apperrors.NotFoundError
		translationFailed *apperrors.TranslationFailedError
	)
	switch {
	case errors.Is(err, apperrors.ErrEmptyAudience),
		errors.As(err, &invalidPredicate),
		errors.As(err, &invalidTransition),
		errors.As(err, &invalidReceipt),
		errors.As(err, &invalidArgument):
		badRequest(w, err.Error())
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &translationFailed):
		logger.Error("segment translation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to parse natural language prompt"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
