package site

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/pkg/id"
	"github.com/qwiktax/lsp-oms/internal/pkg/validate"
)

// subdomainRe accepts DNS-label subdomains: lowercase alphanumerics and
// inner hyphens, at most 63 characters.
var subdomainRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

type Service interface {
	SaveDraft(ctx context.Context, email string, settings domain.SiteSettings) error
	GetDraft(ctx context.Context, email string) (domain.SiteSettings, error)
	Publish(ctx context.Context, email, subdomain string, settings domain.SiteSettings) error
	GetLive(ctx context.Context, email string) (domain.SiteSettings, error)
	GetBySubdomain(ctx context.Context, subdomain string) (domain.SiteSettings, error)
	SubmitLead(ctx context.Context, lead domain.Lead) error
}

type siteStore interface {
	SaveDraft(ctx context.Context, email string, settings domain.SiteSettings) error
	GetDraft(ctx context.Context, email string) (domain.SiteSettings, error)
	Publish(ctx context.Context, email, subdomain string, settings domain.SiteSettings) error
	GetLive(ctx context.Context, email string) (domain.SiteSettings, error)
	GetSubdomainRef(ctx context.Context, subdomain string) (domain.LiveSiteRef, error)
	PutLead(ctx context.Context, email, leadID string, lead domain.Lead) error
}

type htmlMailer interface {
	SendHTMLEmail(to, subject, htmlBody string) error
}

type service struct {
	store  siteStore
	mailer htmlMailer
}

type ServiceDeps struct {
	Store  siteStore
	Mailer htmlMailer
}

func NewService(deps ServiceDeps) Service {
	return &service{store: deps.Store, mailer: deps.Mailer}
}

func (s *service) SaveDraft(ctx context.Context, email string, settings domain.SiteSettings) error {
	if email == "" {
		return fmt.Errorf("owner email is required: %w", domain.ErrBadRequest)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.store.SaveDraft(ctx, strings.ToLower(email), settings)
}

func (s *service) GetDraft(ctx context.Context, email string) (domain.SiteSettings, error) {
	if email == "" {
		return nil, fmt.Errorf("owner email is required: %w", domain.ErrBadRequest)
	}
	return s.store.GetDraft(ctx, strings.ToLower(email))
}

// Publish takes the settings document live under a subdomain. A subdomain
// already owned by another tenant surfaces as domain.ErrConflict from the
// store's conditional transaction.
func (s *service) Publish(ctx context.Context, email, subdomain string, settings domain.SiteSettings) error {
	if email == "" {
		return fmt.Errorf("owner email is required: %w", domain.ErrBadRequest)
	}
	subdomain = strings.ToLower(subdomain)
	if !subdomainRe.MatchString(subdomain) {
		return fmt.Errorf("invalid subdomain %q: %w", subdomain, domain.ErrBadRequest)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.store.Publish(ctx, strings.ToLower(email), subdomain, settings)
}

func (s *service) GetLive(ctx context.Context, email string) (domain.SiteSettings, error) {
	if email == "" {
		return nil, fmt.Errorf("owner email is required: %w", domain.ErrBadRequest)
	}
	return s.store.GetLive(ctx, strings.ToLower(email))
}

// GetBySubdomain resolves a public site: subdomain index first, then the
// owner's live document.
func (s *service) GetBySubdomain(ctx context.Context, subdomain string) (domain.SiteSettings, error) {
	subdomain = strings.ToLower(subdomain)
	if !subdomainRe.MatchString(subdomain) {
		return nil, fmt.Errorf("invalid subdomain %q: %w", subdomain, domain.ErrBadRequest)
	}
	ref, err := s.store.GetSubdomainRef(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	return s.store.GetLive(ctx, ref.OwnerEmail)
}

// SubmitLead stores a public inquiry under the site owner and emails the
// firm. The lead is durable even when the notification fails.
func (s *service) SubmitLead(ctx context.Context, lead domain.Lead) error {
	if err := validate.Struct(lead); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	lead.Subdomain = strings.ToLower(lead.Subdomain)
	ref, err := s.store.GetSubdomainRef(ctx, lead.Subdomain)
	if err != nil {
		return err
	}

	if err := s.store.PutLead(ctx, ref.OwnerEmail, id.New(), lead); err != nil {
		return err
	}

	live, err := s.store.GetLive(ctx, ref.OwnerEmail)
	if err != nil {
		slog.Warn("lead stored but live settings unavailable for notification", "subdomain", lead.Subdomain, "err", err)
		return nil
	}
	contact := live.ContactEmail()
	if contact == "" {
		contact = ref.OwnerEmail
	}
	firm := live.FirmName()
	if firm == "" {
		firm = lead.Subdomain
	}
	if err := s.mailer.SendHTMLEmail(contact, "New inquiry from your website", leadEmailBody(firm, lead)); err != nil {
		slog.Warn("lead stored but notification email failed", "subdomain", lead.Subdomain, "err", err)
	}
	return nil
}

func leadEmailBody(firm string, lead domain.Lead) string {
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString("<h2>New inquiry for " + esc(firm) + "</h2>")
	b.WriteString("<table>")
	b.WriteString("<tr><td><b>Name</b></td><td>" + esc(lead.Name) + "</td></tr>")
	b.WriteString("<tr><td><b>Email</b></td><td>" + esc(lead.Email) + "</td></tr>")
	b.WriteString("<tr><td><b>Mobile</b></td><td>" + esc(lead.Mobile) + "</td></tr>")
	if lead.Service != "" {
		b.WriteString("<tr><td><b>Service</b></td><td>" + esc(lead.Service) + "</td></tr>")
	}
	if lead.Message != "" {
		b.WriteString("<tr><td><b>Message</b></td><td>" + esc(lead.Message) + "</td></tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
