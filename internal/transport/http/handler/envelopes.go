package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool              `json:"success,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// OTPSentEnvelope is returned by POST /otp/send. OTP is only filled in demo builds.
type OTPSentEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// OTPVerifiedEnvelope carries the registration ticket back to the client.
type OTPVerifiedEnvelope struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	VerificationToken string `json:"verificationToken,omitempty"`
}

type ListingsEnvelope struct {
	Data []domain.Listing `json:"data"`
}

type CategoriesEnvelope struct {
	Data []domain.Category `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// Registration bodies may carry two base64 images.
const maxBodyBytes = 24 << 20
