package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/application/otp"
	"github.com/kurtniculi26/RentAll/internal/domain"
)

var (
	sendMessages = errorMessages{
		http.StatusTooManyRequests:     "Please wait before requesting another code",
		http.StatusInternalServerError: "Failed to generate OTP",
	}
	deliveryMessages = errorMessages{
		http.StatusInternalServerError: "Failed to send OTP, please try again",
	}
	verifyMessages = errorMessages{
		http.StatusInternalServerError: "Failed to verify OTP, please try again",
	}
)

const codeRejected = "Invalid or expired OTP code"

// OTPHandler serves the send and verify steps of sign-up.
type OTPHandler struct {
	svc      otp.Service
	echoCode bool
	log      *zap.Logger
}

// NewOTPHandler builds the handler. echoCode adds the issued code to the send
// response and must only be true outside production.
func NewOTPHandler(svc otp.Service, echoCode bool, log *zap.Logger) *OTPHandler {
	return &OTPHandler{svc: svc, echoCode: echoCode, log: log.With(zap.String("handler", "otp"))}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req otp.SendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issued, err := h.svc.Send(r.Context(), req)
	if err != nil {
		msgs := sendMessages
		if errors.Is(err, domain.ErrDelivery) {
			msgs = deliveryMessages
		}
		httpError(w, h.log, err, msgs)
		return
	}

	resp := OTPSentEnvelope{Success: true, Message: "OTP sent successfully"}
	if h.echoCode {
		resp.OTP = issued.Code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otp.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	// a missing code is indistinguishable from a wrong one
	if strings.TrimSpace(req.OTPCode) == "" {
		writeError(w, http.StatusBadRequest, codeRejected)
		return
	}

	res, err := h.svc.Verify(r.Context(), req.Email, strings.TrimSpace(req.OTPCode))
	if err != nil {
		httpError(w, h.log, err, verifyMessages)
		return
	}
	if !res.Accepted() {
		writeError(w, http.StatusBadRequest, codeRejected)
		return
	}
	writeJSON(w, http.StatusOK, OTPVerifiedEnvelope{
		Success:           true,
		Message:           "OTP verified successfully",
		VerificationToken: res.Ticket,
	})
}
