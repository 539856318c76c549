package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Send(ctx context.Context, mobile, eid string) (int, error) {
	args := m.Called(ctx, mobile, eid)
	return args.Int(0), args.Error(1)
}

func (m *mockOTPSvc) Verify(ctx context.Context, mobile, code string) (*domain.TokenResponse, error) {
	args := m.Called(ctx, mobile, code)
	if res, _ := args.Get(0).(*domain.TokenResponse); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSendOTP_ReturnsExpiry(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Send", mock.Anything, "+919876543210", "e-1").Return(300, nil)

	h := NewOTPHandler(svc)
	rec := postJSON(t, h.Send, "/v1/auth/sendOTP", map[string]interface{}{
		"mobile_number": "+919876543210",
		"eid":           "e-1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeEnvelope(t, rec)
	assert.Equal(t, true, out["status"])
	assert.Equal(t, float64(300), out["expires_in"])
	svc.AssertExpectations(t)
}

func TestSendOTP_BadMobileMapsTo400(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Send", mock.Anything, "98765", "e-1").Return(0, domain.ErrBadRequest)

	h := NewOTPHandler(svc)
	rec := postJSON(t, h.Send, "/v1/auth/sendOTP", map[string]interface{}{
		"mobile_number": "98765",
		"eid":           "e-1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyOTP_ReturnsToken(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Verify", mock.Anything, "+919876543210", "482910").Return(&domain.TokenResponse{
		JWT:          "rider-tok",
		Eid:          "e-1",
		Username:     "+919876543210@lsp-rider.local",
		Role:         "lsp_rider",
		MobileNumber: "+919876543210",
		AuthMethod:   "otp",
	}, nil)

	h := NewOTPHandler(svc)
	rec := postJSON(t, h.Verify, "/v1/auth/verifyOTP", map[string]interface{}{
		"mobile_number": "+919876543210",
		"otp":           "482910",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeEnvelope(t, rec)
	assert.Equal(t, "rider-tok", out["token"])
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "lsp_rider", user["role"])
}

func TestVerifyOTP_WrongCodeMapsTo401(t *testing.T) {
	svc := new(mockOTPSvc)
	svc.On("Verify", mock.Anything, "+919876543210", "000000").Return(nil, domain.ErrUnauthorized)

	h := NewOTPHandler(svc)
	rec := postJSON(t, h.Verify, "/v1/auth/verifyOTP", map[string]interface{}{
		"mobile_number": "+919876543210",
		"otp":           "000000",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
