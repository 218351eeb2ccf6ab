package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/application/registration"
	"github.com/kurtniculi26/RentAll/internal/domain"
)

var registrationMessages = errorMessages{
	http.StatusUnauthorized:        "Email verification required",
	http.StatusForbidden:           "Face verification failed",
	http.StatusConflict:            "An account with this email already exists",
	http.StatusInternalServerError: "Registration failed",
}

type RegistrationHandler struct {
	svc registration.Service
	log *zap.Logger
}

func NewRegistrationHandler(svc registration.Service, log *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, log: log.With(zap.String("handler", "registration"))}
}

func (h *RegistrationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req domain.CompleteRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.svc.Complete(r.Context(), req); err != nil {
		httpError(w, h.log, err, registrationMessages)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Registration completed successfully"})
}
