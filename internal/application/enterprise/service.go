package enterprise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qwiktax/lsp-oms/internal/domain"
)

type Service interface {
	ListAll(ctx context.Context) ([]domain.EnterpriseRecord, error)
	ListOfType(ctx context.Context, enterpriseType string) ([]domain.EnterpriseRecord, error)
	ListMembers(ctx context.Context, eid string) ([]domain.MemberRecord, error)
	ListUnconfirmed(ctx context.Context) ([]domain.DirectoryUser, error)
	ConfirmUser(ctx context.Context, username string) error
	Delete(ctx context.Context, eid string) error
	ListPendingDirectory(ctx context.Context) ([]domain.AuthAttrs, error)
}

type enterpriseStore interface {
	ListProfiles(ctx context.Context) ([]domain.EnterpriseRecord, error)
	ListByType(ctx context.Context, enterpriseType string) ([]domain.EnterpriseRecord, error)
	ListMembers(ctx context.Context, eid string) ([]domain.MemberRecord, error)
	Confirm(ctx context.Context, auth domain.AuthAttrs) error
	DeleteEnterprise(ctx context.Context, ent domain.EnterpriseAttrs, members []domain.MemberRecord) error
}

type authStore interface {
	GetProfile(ctx context.Context, username string) (domain.AuthAttrs, error)
	GetEnterpriseProfile(ctx context.Context, eid string) (domain.EnterpriseAttrs, error)
	ListPendingProfiles(ctx context.Context) ([]domain.AuthAttrs, error)
}

type directory interface {
	ListUsers(ctx context.Context) ([]domain.DirectoryUser, error)
	AdminUpdateUserAttributes(ctx context.Context, username string, attrs map[string]string) error
	AdminConfirmSignUp(ctx context.Context, username string) error
	AdminDeleteUser(ctx context.Context, username string) error
}

type service struct {
	enterprises enterpriseStore
	auth        authStore
	directory   directory
}

type ServiceDeps struct {
	Enterprises enterpriseStore
	Auth        authStore
	Directory   directory
}

func NewService(deps ServiceDeps) Service {
	return &service{
		enterprises: deps.Enterprises,
		auth:        deps.Auth,
		directory:   deps.Directory,
	}
}

func (s *service) ListAll(ctx context.Context) ([]domain.EnterpriseRecord, error) {
	return s.enterprises.ListProfiles(ctx)
}

// ListOfType returns the enterprises of one type, enriched with the
// directory's approval flag for each enterprise admin. Directory
// unavailability degrades the listing instead of failing it.
func (s *service) ListOfType(ctx context.Context, enterpriseType string) ([]domain.EnterpriseRecord, error) {
	if !domain.ValidEnterpriseType(enterpriseType) {
		return nil, fmt.Errorf("invalid enterprise type %q: %w", enterpriseType, domain.ErrBadRequest)
	}
	records, err := s.enterprises.ListByType(ctx, enterpriseType)
	if err != nil {
		return nil, err
	}

	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		slog.Warn("directory listing unavailable, returning unenriched records", "err", err)
		return records, nil
	}
	byUsername := make(map[string]domain.DirectoryUser, len(users))
	for _, u := range users {
		byUsername[u.Username] = u
	}
	for i := range records {
		if u, ok := byUsername[records[i].Attrs.Admin]; ok {
			records[i].Attrs.IsConfirmedByAdmin = u.Attributes[domain.AttrConfirmedByAdmin]
		}
	}
	return records, nil
}

func (s *service) ListMembers(ctx context.Context, eid string) ([]domain.MemberRecord, error) {
	if eid == "" {
		return nil, fmt.Errorf("eid is required: %w", domain.ErrBadRequest)
	}
	return s.enterprises.ListMembers(ctx, eid)
}

// ListUnconfirmed returns the directory accounts still waiting for manual
// approval. Only admin and guest accounts go through that gate.
func (s *service) ListUnconfirmed(ctx context.Context) ([]domain.DirectoryUser, error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	unconfirmed := []domain.DirectoryUser{}
	for _, u := range users {
		if u.Attributes[domain.AttrConfirmedByAdmin] != "false" {
			continue
		}
		role := u.Attributes[domain.AttrRole]
		if role == domain.AdminRole(domain.EnterpriseLSP) || role == domain.GuestRole(domain.EnterpriseLSP) {
			unconfirmed = append(unconfirmed, u)
		}
	}
	return unconfirmed, nil
}

// ConfirmUser approves an account: the store flips its two records in one
// transaction, then the directory attribute follows. AdminConfirmSignUp is
// tolerant of accounts that already completed email verification.
func (s *service) ConfirmUser(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("username is required: %w", domain.ErrBadRequest)
	}
	profile, err := s.auth.GetProfile(ctx, username)
	if err != nil {
		return fmt.Errorf("no profile for %s: %w", username, err)
	}
	if err := s.enterprises.Confirm(ctx, profile); err != nil {
		return err
	}
	if err := s.directory.AdminUpdateUserAttributes(ctx, username, map[string]string{
		domain.AttrConfirmedByAdmin: "true",
	}); err != nil {
		return err
	}
	if err := s.directory.AdminConfirmSignUp(ctx, username); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
			slog.Info("directory account already confirmed", "username", username)
		} else {
			return err
		}
	}
	return nil
}

// Delete removes an enterprise and every account under it. Only lsp
// enterprises can be deleted; the superadmin tenant is not deletable.
// Directory deletions run first and tolerate already-deleted accounts, then
// the store records fall in a single transaction.
func (s *service) Delete(ctx context.Context, eid string) error {
	if eid == "" {
		return fmt.Errorf("eid is required: %w", domain.ErrBadRequest)
	}
	ent, err := s.auth.GetEnterpriseProfile(ctx, eid)
	if err != nil {
		return fmt.Errorf("enterprise %s: %w", eid, err)
	}
	if ent.EnterpriseType != domain.EnterpriseLSP {
		return fmt.Errorf("only lsp enterprises can be deleted: %w", domain.ErrForbidden)
	}

	members, err := s.enterprises.ListMembers(ctx, eid)
	if err != nil {
		return err
	}
	for _, m := range members {
		username := m.Attrs.Username
		if err := s.directory.AdminDeleteUser(ctx, username); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return fmt.Errorf("delete directory account %s: %w", username, err)
		}
	}
	return s.enterprises.DeleteEnterprise(ctx, ent, members)
}

// ListPendingDirectory lists profiles whose directory half of signup never
// completed, for operator reconciliation.
func (s *service) ListPendingDirectory(ctx context.Context) ([]domain.AuthAttrs, error) {
	return s.auth.ListPendingProfiles(ctx)
}
