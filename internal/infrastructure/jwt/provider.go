package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/pkg/id"
)

const (
	// Issuer and Audience identify self-issued tokens. The provider-issued
	// ID tokens carry the pool's issuer instead, which is how the two token
	// families are told apart.
	Issuer   = "lsp-oms-otp"
	Audience = "lsp-oms-client"

	otpTokenTTL    = 4 * time.Hour
	googleTokenTTL = 24 * time.Hour
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// Claims holds the JWT payload fields. Custom claim names mirror the
// attribute names of the identity directory so the authorization middleware
// reads one shape regardless of which flow issued the token.
type Claims struct {
	Username         string `json:"username,omitempty"`
	Eid              string `json:"custom:eid,omitempty"`
	EnterpriseType   string `json:"custom:enterpriseType,omitempty"`
	Role             string `json:"custom:role,omitempty"`
	MobileNumber     string `json:"custom:mobileNumber,omitempty"`
	ConfirmedByAdmin string `json:"custom:isConfirmedByAdmin,omitempty"`
	AuthMethod       string `json:"custom:authMethod,omitempty"`

	// Google federation fields.
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Picture   string `json:"picture,omitempty"`
	GoogleSub string `json:"google_sub,omitempty"`
	Provider  string `json:"provider,omitempty"`

	jwt.RegisteredClaims
}

// Provider signs and verifies the self-issued HS256 tokens used by the OTP
// and Google login flows.
type Provider struct {
	secret []byte
}

func NewProvider(secret string) *Provider {
	return &Provider{secret: []byte(secret)}
}

// IssueOTP signs a 4-hour session token after a successful OTP
// verification. Role and enterprise type default to the rider profile when
// the membership record carries none.
func (p *Provider) IssueOTP(auth domain.AuthAttrs, mobile string) (string, error) {
	role := auth.Role
	if role == "" {
		role = domain.RoleRider
	}
	enterpriseType := auth.EnterpriseType
	if enterpriseType == "" {
		enterpriseType = domain.EnterpriseLSP
	}
	now := time.Now()
	claims := Claims{
		Username:         auth.Username,
		Eid:              auth.Eid,
		EnterpriseType:   enterpriseType,
		Role:             role,
		MobileNumber:     mobile,
		ConfirmedByAdmin: auth.IsConfirmedByAdmin,
		AuthMethod:       "otp",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			Subject:   auth.Eid,
			ID:        "otp-" + id.New(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(otpTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// IssueGoogle signs a 24-hour session token for a verified Google identity.
func (p *Provider) IssueGoogle(user domain.GoogleUser, sub string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		GoogleSub: sub,
		Provider:  "google",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(googleTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses and validates a self-issued token. Expiry is reported as
// ErrExpired so the transport layer can distinguish it from every other
// failure, which all fold into ErrInvalid.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %s", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
