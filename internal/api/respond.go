package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/review"
	"github.com/sells-group/intake-cli/internal/service"
	"github.com/sells-group/intake-cli/internal/source"
	"github.com/sells-group/intake-cli/internal/store"
)

type errorBody struct {
	Error  string              `json:"error"`
	Fields []review.FieldError `json:"fields,omitempty"`
	Phase  review.Phase        `json:"phase,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *review.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, review.ErrNoSourceURL),
		errors.Is(err, source.ErrNoSourceURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, review.ErrUnknownRecord),
		errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrInvalidTransition),
		errors.Is(err, review.ErrAlreadyPromoted),
		errors.Is(err, store.ErrAlreadyPromoted),
		errors.Is(err, service.ErrNotApproved):
		return http.StatusConflict
	case errors.Is(err, service.ErrRefreshDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var verr *review.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	var perr *review.PromotionError
	if errors.As(err, &perr) {
		body.Phase = perr.Phase
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
