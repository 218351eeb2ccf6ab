package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/application/otp"
	"github.com/kurtniculi26/RentAll/internal/domain"
)

// errorMessages overrides the client-facing text per status for one endpoint.
type errorMessages map[int]string

var defaultMessages = errorMessages{
	http.StatusBadRequest:          "invalid request",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not found",
	http.StatusConflict:            "conflict",
	http.StatusTooManyRequests:     "too many requests",
	http.StatusInternalServerError: "Internal server error, please try again",
}

func (m errorMessages) text(status int) string {
	if msg, ok := m[status]; ok {
		return msg
	}
	return defaultMessages[status]
}

// httpError maps domain sentinels to a status code and writes a body that
// never contains the wrapped cause. 5xx causes are logged instead.
func httpError(w http.ResponseWriter, log *zap.Logger, err error, msgs errorMessages) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeValidation(w, ve)
		return
	}

	var ce *otp.CooldownError
	if errors.As(err, &ce) {
		secs := int(math.Ceil(ce.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeError(w, http.StatusTooManyRequests, msgs.text(http.StatusTooManyRequests))
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeError(w, status, msgs.text(status))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeValidation uses the field message as the top-level error when only one
// field failed, so single-field clients can show it directly.
func writeValidation(w http.ResponseWriter, ve *domain.ValidationError) {
	msg := "Validation failed"
	if len(ve.Fields) == 1 {
		for _, m := range ve.Fields {
			msg = m
		}
	}
	writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: msg, Fields: ve.Fields})
}
