package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/qwiktax/lsp-oms/internal/pkg/id"
)

// assetURLTTL bounds how long a generated download link stays valid.
const assetURLTTL = 15 * time.Minute

type assetStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// UploadHandler stores site assets keyed under the owning account and
// hands out short-lived download links for them.
type UploadHandler struct {
	store assetStore
}

func NewUploadHandler(store assetStore) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	email := ownerEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "no account email in token")
		return
	}
	var body struct {
		Filename string `json:"filename"`
		Data     string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Filename == "" || body.Data == "" {
		writeError(w, http.StatusBadRequest, "filename and data are required")
		return
	}
	// Keys are scoped per account; only the base of the supplied filename is
	// kept so callers cannot write outside their prefix.
	key := fmt.Sprintf("%s/%s-%s", strings.ToLower(email), id.New(), path.Base(body.Filename))
	url, err := h.store.UploadBase64(r.Context(), key, body.Data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Status: true, Data: map[string]string{
		"url": url,
		"key": key,
	}})
}

// GetAssetURL returns a presigned GET link for an asset the caller owns.
// The key must sit under the caller's own prefix.
func (h *UploadHandler) GetAssetURL(w http.ResponseWriter, r *http.Request) {
	email := ownerEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "no account email in token")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if !strings.HasPrefix(key, strings.ToLower(email)+"/") {
		writeError(w, http.StatusForbidden, "key does not belong to this account")
		return
	}
	url, err := h.store.PresignedURL(r.Context(), key, assetURLTTL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Status: true, Data: map[string]interface{}{
		"url":        url,
		"expires_in": int(assetURLTTL.Seconds()),
	}})
}
