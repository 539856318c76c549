package handler

import (
	"encoding/json"
	"net/http"

	"github.com/qwiktax/lsp-oms/internal/application/enterprise"
)

// EnterpriseHandler serves the superadmin directory views and the
// membership mutations. These are action-named POST routes with
// data-wrapped bodies, same convention as the auth endpoints.
type EnterpriseHandler struct {
	svc enterprise.Service
}

func NewEnterpriseHandler(svc enterprise.Service) *EnterpriseHandler {
	return &EnterpriseHandler{svc: svc}
}

func (h *EnterpriseHandler) GetAllEnterprises(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: records})
}

func (h *EnterpriseHandler) GetAllEnterprisesOfType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			EnterpriseType string `json:"enterprise_type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	records, err := h.svc.ListOfType(r.Context(), body.Data.EnterpriseType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: records})
}

func (h *EnterpriseHandler) GetAllUsersOfEnterprise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			Eid string `json:"eid"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	members, err := h.svc.ListMembers(r.Context(), body.Data.Eid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: members})
}

func (h *EnterpriseHandler) ListUnconfirmedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUnconfirmed(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: users})
}

func (h *EnterpriseHandler) ConfirmUserSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ConfirmUser(r.Context(), body.Data.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "user confirmed"})
}

func (h *EnterpriseHandler) DeleteEnterprise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			Eid   string `json:"eid"`
			ATTR1 struct {
				Eid string `json:"eid"`
			} `json:"ATTR1"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	eid := body.Data.Eid
	if eid == "" {
		eid = body.Data.ATTR1.Eid
	}
	if err := h.svc.Delete(r.Context(), eid); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Message: "enterprise deleted"})
}

func (h *EnterpriseHandler) ListPendingDirectoryUsers(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.ListPendingDirectory(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: pending})
}
