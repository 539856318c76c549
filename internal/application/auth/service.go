package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/google"
	"github.com/qwiktax/lsp-oms/internal/pkg/phone"
)

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error)
	Confirm(ctx context.Context, req domain.ConfirmRequest) error
	ResendCode(ctx context.Context, req domain.ResendCodeRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)
	ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
	ConfirmForgotPassword(ctx context.Context, req domain.ConfirmForgotPasswordRequest) error
	GoogleLogin(ctx context.Context, idToken string) (string, *domain.GoogleUser, error)
}

type authStore interface {
	GetProfile(ctx context.Context, username string) (domain.AuthAttrs, error)
	GetEnterpriseProfile(ctx context.Context, eid string) (domain.EnterpriseAttrs, error)
	SignupTransact(ctx context.Context, ent domain.EnterpriseAttrs, auth domain.AuthAttrs) error
	ClearPendingDirectory(ctx context.Context, auth domain.AuthAttrs) error
}

type directory interface {
	SignUp(ctx context.Context, clientID, username, password string, attrs map[string]string) error
	ConfirmSignUp(ctx context.Context, clientID, username, code string) error
	ResendConfirmationCode(ctx context.Context, clientID, username string) error
	ForgotPassword(ctx context.Context, clientID, username string) error
	ConfirmForgotPassword(ctx context.Context, clientID, username, password, code string) error
	InitiateAuth(ctx context.Context, clientID, username, password string) (string, error)
	AdminGetUser(ctx context.Context, username string) (domain.DirectoryUser, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type googleTokenIssuer interface {
	IssueGoogle(user domain.GoogleUser, sub string) (string, error)
}

type service struct {
	store     authStore
	directory directory
	google    googleVerifier
	tokens    googleTokenIssuer
}

type ServiceDeps struct {
	Store     authStore
	Directory directory
	Google    googleVerifier
	Tokens    googleTokenIssuer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:     deps.Store,
		directory: deps.Directory,
		google:    deps.Google,
		tokens:    deps.Tokens,
	}
}

// Signup registers an account. Standard signups create or join an
// enterprise and get a password credential; rider signups join an existing
// enterprise keyed by phone number and authenticate by OTP only.
//
// The store records are written first, marked pending_directory, then the
// directory half runs. A directory failure leaves the marker in place for
// reconciliation instead of leaving half a signup invisible.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error) {
	if req.ClientID == "" {
		return nil, fmt.Errorf("clientId is required: %w", domain.ErrBadRequest)
	}
	if req.Role == domain.RoleRider {
		return s.signupRider(ctx, req)
	}
	return s.signupStandard(ctx, req)
}

func (s *service) signupStandard(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrBadRequest)
	}
	if !domain.ValidEnterpriseType(req.EnterpriseType) {
		return nil, fmt.Errorf("invalid enterprise_type %q: %w", req.EnterpriseType, domain.ErrBadRequest)
	}
	username := strings.ToLower(req.Email)

	// Re-signup pins the enterprise: a prior profile's eid wins over both a
	// supplied eid and a freshly minted one, so retrying a signup never
	// splits the account across two enterprises.
	var priorEid string
	if prior, err := s.store.GetProfile(ctx, username); err == nil {
		priorEid = prior.Eid
	}

	var ent domain.EnterpriseAttrs
	var role string
	now := time.Now().UnixMilli()

	if req.Eid != "" {
		// Joining an existing enterprise as a guest.
		existing, err := s.store.GetEnterpriseProfile(ctx, req.Eid)
		if err != nil {
			return nil, fmt.Errorf("enterprise %s: %w", req.Eid, err)
		}
		ent = existing
		role = domain.GuestRole(ent.EnterpriseType)
	} else {
		if req.BusinessName == "" {
			return nil, fmt.Errorf("business_name is required: %w", domain.ErrBadRequest)
		}
		ent = domain.EnterpriseAttrs{
			Eid:            uuid.NewString(),
			EnterpriseType: req.EnterpriseType,
			BusinessName:   req.BusinessName,
			Admin:          username,
			CreateDatetime: now,
			EmailVerified:  "no",
			MobileNumber:   req.MobileNumber,
		}
		role = domain.AdminRole(req.EnterpriseType)
	}
	if priorEid != "" {
		ent.Eid = priorEid
	}

	auth := domain.AuthAttrs{
		Eid:                ent.Eid,
		Username:           username,
		EnterpriseType:     ent.EnterpriseType,
		Role:               role,
		CreateDatetime:     now,
		IsConfirmedByAdmin: "false",
		MobileNumber:       req.MobileNumber,
		PendingDirectory:   "true",
	}
	if err := s.store.SignupTransact(ctx, ent, auth); err != nil {
		return nil, err
	}

	attrs := map[string]string{
		"email":                      username,
		domain.AttrEid:               ent.Eid,
		domain.AttrEnterpriseType:    ent.EnterpriseType,
		domain.AttrRole:              role,
		domain.AttrConfirmedByAdmin:  "false",
	}
	if req.MobileNumber != "" {
		attrs[domain.AttrPhoneNumber] = req.MobileNumber
	}
	if err := s.directory.SignUp(ctx, req.ClientID, username, req.Password, attrs); err != nil {
		return nil, err
	}
	if err := s.store.ClearPendingDirectory(ctx, auth); err != nil {
		slog.Warn("could not clear pending_directory marker", "username", username, "err", err)
	}

	return &domain.SignupResult{
		Role:                      role,
		RequiresEmailVerification: true,
	}, nil
}

func (s *service) signupRider(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error) {
	if !phone.IsE164(req.MobileNumber) {
		return nil, fmt.Errorf("mobile_number must be E.164: %w", domain.ErrBadRequest)
	}
	if req.Eid == "" {
		return nil, fmt.Errorf("eid is required for rider signup: %w", domain.ErrBadRequest)
	}
	ent, err := s.store.GetEnterpriseProfile(ctx, req.Eid)
	if err != nil {
		return nil, fmt.Errorf("enterprise %s: %w", req.Eid, err)
	}

	username := domain.RiderUsername(req.MobileNumber)
	// Same reuse rule as standard signups: an already-registered mobile
	// keeps its original enterprise binding.
	if prior, err := s.store.GetProfile(ctx, username); err == nil && prior.Eid != "" {
		ent.Eid = prior.Eid
	}

	auth := domain.AuthAttrs{
		Eid:                ent.Eid,
		Username:           username,
		EnterpriseType:     ent.EnterpriseType,
		Role:               domain.RoleRider,
		CreateDatetime:     time.Now().UnixMilli(),
		IsConfirmedByAdmin: "false",
		MobileNumber:       req.MobileNumber,
		PendingDirectory:   "true",
	}
	if err := s.store.SignupTransact(ctx, ent, auth); err != nil {
		return nil, err
	}

	// Riders never use this password; the directory requires one, so it is
	// generated and discarded.
	tempPassword := fmt.Sprintf("TempPass%d!", time.Now().UnixMilli())
	attrs := map[string]string{
		domain.AttrPhoneNumber:      req.MobileNumber,
		domain.AttrEid:              ent.Eid,
		domain.AttrEnterpriseType:   ent.EnterpriseType,
		domain.AttrRole:             domain.RoleRider,
		domain.AttrConfirmedByAdmin: "false",
	}
	if err := s.directory.SignUp(ctx, req.ClientID, username, tempPassword, attrs); err != nil {
		return nil, err
	}
	if err := s.store.ClearPendingDirectory(ctx, auth); err != nil {
		slog.Warn("could not clear pending_directory marker", "username", username, "err", err)
	}

	return &domain.SignupResult{
		Role:                      domain.RoleRider,
		AuthMethod:                "otp",
		RequiresEmailVerification: false,
	}, nil
}

func (s *service) Confirm(ctx context.Context, req domain.ConfirmRequest) error {
	if req.Username == "" || req.Code == "" || req.ClientID == "" {
		return fmt.Errorf("username, code and clientId are required: %w", domain.ErrBadRequest)
	}
	return s.directory.ConfirmSignUp(ctx, req.ClientID, strings.ToLower(req.Username), req.Code)
}

func (s *service) ResendCode(ctx context.Context, req domain.ResendCodeRequest) error {
	if req.Username == "" || req.ClientID == "" {
		return fmt.Errorf("username and clientId are required: %w", domain.ErrBadRequest)
	}
	return s.directory.ResendConfirmationCode(ctx, req.ClientID, strings.ToLower(req.Username))
}

// Login runs the password flow. The directory authenticates the credential;
// the store supplies tenant membership. A confirmed directory account with
// no store profile is treated as not found.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	if req.Username == "" || req.Password == "" || req.ClientID == "" {
		return nil, fmt.Errorf("username, password and clientId are required: %w", domain.ErrBadRequest)
	}
	username := strings.ToLower(req.Username)

	user, err := s.directory.AdminGetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Status != "CONFIRMED" {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrForbidden)
	}

	profile, err := s.store.GetProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("no profile for %s: %w", username, err)
	}

	if err := checkAdminConfirmation(profile, user); err != nil {
		return nil, err
	}

	idToken, err := s.directory.InitiateAuth(ctx, req.ClientID, username, req.Password)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		JWT:            idToken,
		Eid:            profile.Eid,
		Username:       username,
		EnterpriseType: profile.EnterpriseType,
		DisplayName:    domain.DisplayName(profile.EnterpriseType, username),
		Role:           profile.Role,
		MobileNumber:   profile.MobileNumber,
		AuthMethod:     "password",
	}, nil
}

// checkAdminConfirmation enforces the manual approval gate. Admin and guest
// accounts must carry the directory flag set to "true". Rider accounts are
// only blocked when the flag is present and explicitly not "true", since
// older rider registrations never carried the attribute.
func checkAdminConfirmation(profile domain.AuthAttrs, user domain.DirectoryUser) error {
	confirmed, present := user.Attributes[domain.AttrConfirmedByAdmin]
	switch profile.Role {
	case domain.RoleRider:
		if present && confirmed != "true" {
			return fmt.Errorf("account awaiting admin confirmation: %w", domain.ErrForbidden)
		}
	case domain.AdminRole(domain.EnterpriseLSP), domain.GuestRole(domain.EnterpriseLSP):
		if confirmed != "true" {
			return fmt.Errorf("account awaiting admin confirmation: %w", domain.ErrForbidden)
		}
	}
	return nil
}

func (s *service) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	if req.Username == "" || req.ClientID == "" {
		return fmt.Errorf("username and clientId are required: %w", domain.ErrBadRequest)
	}
	return s.directory.ForgotPassword(ctx, req.ClientID, strings.ToLower(req.Username))
}

func (s *service) ConfirmForgotPassword(ctx context.Context, req domain.ConfirmForgotPasswordRequest) error {
	if req.Username == "" || req.ClientID == "" || req.Password == "" || req.ConfirmationCode == "" {
		return fmt.Errorf("username, clientId, password and confirmationCode are required: %w", domain.ErrBadRequest)
	}
	return s.directory.ConfirmForgotPassword(ctx, req.ClientID, strings.ToLower(req.Username), req.Password, req.ConfirmationCode)
}

// GoogleLogin verifies a Google ID token and exchanges it for a self-issued
// session token. It asserts identity only; the caller keeps whatever tenant
// state it already had.
func (s *service) GoogleLogin(ctx context.Context, idToken string) (string, *domain.GoogleUser, error) {
	if idToken == "" {
		return "", nil, fmt.Errorf("idToken is required: %w", domain.ErrBadRequest)
	}
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return "", nil, err
	}
	if !payload.EmailVerified {
		return "", nil, fmt.Errorf("google account email not verified: %w", domain.ErrUnauthorized)
	}
	user := domain.GoogleUser{
		Email:   strings.ToLower(payload.Email),
		Name:    payload.Name,
		Picture: payload.Picture,
	}
	token, err := s.tokens.IssueGoogle(user, payload.Sub)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
