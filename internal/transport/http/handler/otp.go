package handler

import (
	"encoding/json"
	"net/http"

	"github.com/qwiktax/lsp-oms/internal/application/otp"
)

// OTPHandler handles the rider OTP login flow. These payloads are
// top-level, not data-wrapped; the rider app predates the envelope.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MobileNumber string `json:"mobile_number"`
		Eid          string `json:"eid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expiresIn, err := h.svc.Send(r.Context(), body.MobileNumber, body.Eid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{
		Status: true, Message: "otp sent", ExpiresIn: expiresIn,
	})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MobileNumber string `json:"mobile_number"`
		OTP          string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Verify(r.Context(), body.MobileNumber, body.OTP)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Status: true, Token: res.JWT, User: res})
}
