package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qwiktax/lsp-oms/internal/application/site"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/transport/http/middleware"
)

// SiteHandler serves the site builder endpoints for logged-in firms plus the
// public site and lead endpoints.
type SiteHandler struct {
	svc site.Service
}

func NewSiteHandler(svc site.Service) *SiteHandler { return &SiteHandler{svc: svc} }

// ownerEmail pulls the account email from the verified directory claims.
// Older pools put the email in cognito:username.
func ownerEmail(r *http.Request) string {
	claims, ok := middleware.ProviderClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if username, ok := claims["cognito:username"].(string); ok {
		return username
	}
	return ""
}

func (h *SiteHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	email := ownerEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "no account email in token")
		return
	}
	var body struct {
		Data domain.SiteSettings `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SaveDraft(r.Context(), email, body.Data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "draft saved"})
}

func (h *SiteHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	email := ownerEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "no account email in token")
		return
	}
	settings, err := h.svc.GetDraft(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: settings})
}

func (h *SiteHandler) Publish(w http.ResponseWriter, r *http.Request) {
	email := ownerEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "no account email in token")
		return
	}
	var body struct {
		Subdomain string              `json:"subdomain"`
		Data      domain.SiteSettings `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Publish(r.Context(), email, body.Subdomain, body.Data); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "site published"})
}

func (h *SiteHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	email := ownerEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "no account email in token")
		return
	}
	settings, err := h.svc.GetLive(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: settings})
}

// GetBySubdomain is the public renderer fetch; no auth.
func (h *SiteHandler) GetBySubdomain(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetBySubdomain(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: settings})
}

// SubmitLead accepts a public inquiry from a published site.
func (h *SiteHandler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var lead domain.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SubmitLead(r.Context(), lead); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Status: true, Message: "inquiry received"})
}
