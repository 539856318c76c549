package handler

import (
	"encoding/json"
	"net/http"

	"github.com/qwiktax/lsp-oms/internal/application/auth"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/transport/http/middleware"
)

// AuthHandler handles signup, password login and the federation endpoints.
// Request payloads arrive wrapped in a data field; OTP endpoints are the
// exception and live in OTPHandler.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data domain.SignupRequest `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Signup(r.Context(), body.Data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	msg := "signup complete, verify your email"
	if !res.RequiresEmailVerification {
		msg = "signup complete"
	}
	writeJSON(w, http.StatusCreated, Envelope{Status: true, Message: msg, Data: res})
}

func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data domain.ConfirmRequest `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Confirm(r.Context(), body.Data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "account confirmed"})
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data domain.ResendCodeRequest `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ResendCode(r.Context(), body.Data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "verification code sent"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data domain.LoginRequest `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Login(r.Context(), body.Data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Status: true, Token: res.JWT, User: res})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data domain.ForgotPasswordRequest `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), body.Data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "password reset code sent"})
}

func (h *AuthHandler) ConfirmForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data domain.ConfirmForgotPasswordRequest `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ConfirmForgotPassword(r.Context(), body.Data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "password updated"})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			IDToken string `json:"idToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, user, err := h.svc.GoogleLogin(r.Context(), body.Data.IDToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Status: true, Token: token, User: user})
}

// CheckToken answers a validated session check; the middleware already
// wrote the rejection envelope for anything that didn't verify.
func (h *AuthHandler) CheckToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SelfClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Status: true, User: claims})
}

// ValidateToken is the provider-trust check: RequireProvider runs in
// front of it, so reaching this handler means the ID token verified.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ProviderClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access Token Required")
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Status: true, User: claims})
}
