package dynamo

import (
	"context"

	"github.com/qwiktax/lsp-oms/internal/domain"
)

// SiteRepo persists the per-tenant site settings documents, the live-site
// subdomain index and public leads.
type SiteRepo struct {
	table *Table
}

func NewSiteRepo(table *Table) *SiteRepo {
	return &SiteRepo{table: table}
}

// SaveDraft upserts the tenant's draft settings document.
func (r *SiteRepo) SaveDraft(ctx context.Context, email string, settings domain.SiteSettings) error {
	return r.table.SetAttrs(ctx, DraftSettingsKey(email), settings)
}

// GetDraft loads the tenant's draft settings document.
func (r *SiteRepo) GetDraft(ctx context.Context, email string) (domain.SiteSettings, error) {
	item, err := r.table.Get(ctx, DraftSettingsKey(email))
	if err != nil {
		return nil, err
	}
	var settings domain.SiteSettings
	if err := unmarshalAttr1(item, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Publish writes the live settings document and claims the subdomain in one
// transaction. The subdomain leg is conditioned on the slot being free or
// already owned by this tenant; a claim on someone else's subdomain fails
// the whole transaction with domain.ErrConflict.
func (r *SiteRepo) Publish(ctx context.Context, email, subdomain string, settings domain.SiteSettings) error {
	ref := domain.LiveSiteRef{OwnerEmail: email, Subdomain: subdomain}
	return r.table.TransactWrite(ctx, []WriteOp{
		UpdateOp(LiveSettingsKey(email), settings),
		PutOpIf(SubdomainKey(subdomain), ref,
			map[string]interface{}{"owner_email": email},
			"attribute_not_exists(PK) OR owner_email = :owner",
			map[string]interface{}{":owner": email},
		),
	})
}

// GetLive loads the tenant's published settings document.
func (r *SiteRepo) GetLive(ctx context.Context, email string) (domain.SiteSettings, error) {
	item, err := r.table.Get(ctx, LiveSettingsKey(email))
	if err != nil {
		return nil, err
	}
	var settings domain.SiteSettings
	if err := unmarshalAttr1(item, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetSubdomainRef resolves a subdomain to its owning tenant.
func (r *SiteRepo) GetSubdomainRef(ctx context.Context, subdomain string) (domain.LiveSiteRef, error) {
	item, err := r.table.Get(ctx, SubdomainKey(subdomain))
	if err != nil {
		return domain.LiveSiteRef{}, err
	}
	var ref domain.LiveSiteRef
	if err := unmarshalAttr1(item, &ref); err != nil {
		return domain.LiveSiteRef{}, err
	}
	return ref, nil
}

// PutLead stores a public inquiry under the owning tenant.
func (r *SiteRepo) PutLead(ctx context.Context, email, leadID string, lead domain.Lead) error {
	return r.table.Put(ctx, LeadKey(email, leadID), lead, nil)
}
