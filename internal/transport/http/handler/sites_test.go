package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSiteSvc struct{ mock.Mock }

func (m *mockSiteSvc) SaveDraft(ctx context.Context, email string, settings domain.SiteSettings) error {
	return m.Called(ctx, email, settings).Error(0)
}

func (m *mockSiteSvc) GetDraft(ctx context.Context, email string) (domain.SiteSettings, error) {
	args := m.Called(ctx, email)
	if s, _ := args.Get(0).(domain.SiteSettings); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSiteSvc) Publish(ctx context.Context, email, subdomain string, settings domain.SiteSettings) error {
	return m.Called(ctx, email, subdomain, settings).Error(0)
}

func (m *mockSiteSvc) GetLive(ctx context.Context, email string) (domain.SiteSettings, error) {
	args := m.Called(ctx, email)
	if s, _ := args.Get(0).(domain.SiteSettings); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSiteSvc) GetBySubdomain(ctx context.Context, subdomain string) (domain.SiteSettings, error) {
	args := m.Called(ctx, subdomain)
	if s, _ := args.Get(0).(domain.SiteSettings); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSiteSvc) SubmitLead(ctx context.Context, lead domain.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func withProviderClaims(r *http.Request, claims jwt.MapClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ProviderClaimsKey, claims))
}

func TestSaveDraft_UsesEmailClaim(t *testing.T) {
	svc := new(mockSiteSvc)
	settings := domain.SiteSettings{"GeneralSettings": map[string]interface{}{"name": "Acme Tax"}}
	svc.On("SaveDraft", mock.Anything, "owner@firm.in", mock.Anything).Return(nil)

	body, err := json.Marshal(map[string]interface{}{"data": settings})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/saveDraftSiteSettings", bytes.NewReader(body))
	req = withProviderClaims(req, jwt.MapClaims{"email": "owner@firm.in"})
	rec := httptest.NewRecorder()

	NewSiteHandler(svc).SaveDraft(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSaveDraft_NoClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/saveDraftSiteSettings", bytes.NewReader([]byte(`{"data":{}}`)))
	rec := httptest.NewRecorder()

	NewSiteHandler(new(mockSiteSvc)).SaveDraft(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnerEmail_FallsBackToUsernameClaim(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withProviderClaims(req, jwt.MapClaims{"cognito:username": "owner@firm.in"})
	assert.Equal(t, "owner@firm.in", ownerEmail(req))
}

func TestGetBySubdomain_Public(t *testing.T) {
	svc := new(mockSiteSvc)
	svc.On("GetBySubdomain", mock.Anything, "acme").
		Return(domain.SiteSettings{"GeneralSettings": map[string]interface{}{"name": "Acme Tax"}}, nil)

	r := chi.NewRouter()
	r.Get("/v1/public/site/{subdomain}", NewSiteHandler(svc).GetBySubdomain)

	req := httptest.NewRequest(http.MethodGet, "/v1/public/site/acme", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeEnvelope(t, rec)
	assert.Equal(t, true, out["status"])
}

func TestGetBySubdomain_NotFound(t *testing.T) {
	svc := new(mockSiteSvc)
	svc.On("GetBySubdomain", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	r := chi.NewRouter()
	r.Get("/v1/public/site/{subdomain}", NewSiteHandler(svc).GetBySubdomain)

	req := httptest.NewRequest(http.MethodGet, "/v1/public/site/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitLead_Created(t *testing.T) {
	svc := new(mockSiteSvc)
	svc.On("SubmitLead", mock.Anything, mock.MatchedBy(func(lead domain.Lead) bool {
		return lead.Subdomain == "acme" && lead.Email == "visitor@mail.com"
	})).Return(nil)

	rec := postJSON(t, NewSiteHandler(svc).SubmitLead, "/v1/public/lead", map[string]interface{}{
		"subdomain": "acme",
		"name":      "Visitor",
		"email":     "visitor@mail.com",
		"mobile":    "+919876543210",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}
