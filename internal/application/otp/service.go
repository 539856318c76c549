package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/pkg/phone"
)

const (
	codeTTL = 5 * time.Minute
	// testCode is issued to numbers under the configured test prefix so
	// app-store reviewers can log in without receiving an SMS.
	testCode = "123456"
)

type Service interface {
	Send(ctx context.Context, mobile, eid string) (expiresIn int, err error)
	Verify(ctx context.Context, mobile, code string) (*domain.TokenResponse, error)
}

type otpStore interface {
	GetProfile(ctx context.Context, username string) (domain.AuthAttrs, error)
	GetOTP(ctx context.Context, mobile string) (domain.OTPRecord, error)
	SetOTP(ctx context.Context, mobile, otp string, expiry int64) error
	ClearOTP(ctx context.Context, mobile string) error
}

type memberStore interface {
	GetMember(ctx context.Context, eid, username string) (domain.AuthAttrs, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type tokenIssuer interface {
	IssueOTP(auth domain.AuthAttrs, mobile string) (string, error)
}

type service struct {
	store      otpStore
	members    memberStore
	sms        smsSender
	tokens     tokenIssuer
	testPrefix string
}

type ServiceDeps struct {
	Store      otpStore
	Members    memberStore
	SMS        smsSender
	Tokens     tokenIssuer
	TestPrefix string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:      deps.Store,
		members:    deps.Members,
		sms:        deps.SMS,
		tokens:     deps.Tokens,
		testPrefix: deps.TestPrefix,
	}
}

// Send generates and dispatches a one-time code for a registered rider.
// The caller supplies the enterprise, and the membership gate runs before
// any side effect: an unapproved or unknown rider causes no SMS and no
// stored code. Returns the code lifetime in seconds.
func (s *service) Send(ctx context.Context, mobile, eid string) (int, error) {
	if !phone.IsE164(mobile) {
		return 0, fmt.Errorf("mobile must be E.164: %w", domain.ErrBadRequest)
	}
	if eid == "" {
		return 0, fmt.Errorf("mobile_number and eid are required: %w", domain.ErrBadRequest)
	}
	username := domain.RiderUsername(mobile)
	if err := s.checkApproval(ctx, eid, username); err != nil {
		return 0, err
	}

	code, err := s.generate(mobile)
	if err != nil {
		return 0, err
	}
	if !s.isTestNumber(mobile) {
		// The SMS channel is optional at startup; without it only test
		// numbers can log in.
		if s.sms == nil {
			return 0, fmt.Errorf("sms delivery is not configured")
		}
		msg := fmt.Sprintf("Your login code is %s. It expires in 5 minutes.", code)
		if err := s.sms.SendSMS(ctx, mobile, msg); err != nil {
			return 0, fmt.Errorf("send sms: %w", err)
		}
	}
	expiry := time.Now().Add(codeTTL).UnixMilli()
	if err := s.store.SetOTP(ctx, mobile, code, expiry); err != nil {
		return 0, err
	}
	return int(codeTTL.Seconds()), nil
}

// Verify redeems a one-time code for a session token. The code is
// single-use: it is cleared on success so a replay fails.
func (s *service) Verify(ctx context.Context, mobile, code string) (*domain.TokenResponse, error) {
	if !phone.IsE164(mobile) {
		return nil, fmt.Errorf("mobile must be E.164: %w", domain.ErrBadRequest)
	}
	if !phone.IsOTP(code) {
		return nil, fmt.Errorf("otp must be 6 digits: %w", domain.ErrBadRequest)
	}

	rec, err := s.store.GetOTP(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("OTP not found: %w", domain.ErrUnauthorized)
	}
	if rec.Expiry < time.Now().UnixMilli() {
		// Kept in place; the next Send overwrites it.
		return nil, fmt.Errorf("OTP has expired: %w", domain.ErrUnauthorized)
	}
	if rec.OTP != code {
		return nil, fmt.Errorf("invalid OTP: %w", domain.ErrUnauthorized)
	}

	username := domain.RiderUsername(mobile)
	profile, err := s.store.GetProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("mobile not registered: %w", err)
	}
	if err := s.checkApproval(ctx, profile.Eid, username); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueOTP(profile, mobile)
	if err != nil {
		return nil, err
	}
	if err := s.store.ClearOTP(ctx, mobile); err != nil {
		slog.Warn("could not clear redeemed otp", "mobile", mobile, "err", err)
	}

	return &domain.TokenResponse{
		JWT:            token,
		Eid:            profile.Eid,
		Username:       username,
		EnterpriseType: profile.EnterpriseType,
		DisplayName:    "Lsp-" + mobile,
		Role:           profile.Role,
		MobileNumber:   mobile,
		AuthMethod:     "otp",
	}, nil
}

// checkApproval reads the membership record and fails closed: a missing or
// unreadable record blocks the login the same way an explicit rejection
// does, and the flag must be exactly "true". An absent flag means the admin
// never approved the rider.
func (s *service) checkApproval(ctx context.Context, eid, username string) error {
	member, err := s.members.GetMember(ctx, eid, username)
	if err != nil {
		return fmt.Errorf("membership unverifiable: %w", domain.ErrForbidden)
	}
	if !member.Approved() {
		return fmt.Errorf("account awaiting admin confirmation: %w", domain.ErrForbidden)
	}
	return nil
}

func (s *service) isTestNumber(mobile string) bool {
	return s.testPrefix != "" && strings.HasPrefix(mobile, s.testPrefix)
}

func (s *service) generate(mobile string) (string, error) {
	if s.isTestNumber(mobile) {
		return testCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
