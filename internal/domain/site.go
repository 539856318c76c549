package domain

import "fmt"

// SiteSettings is the per-tenant site configuration document. The document
// shape is owned by the frontend builder; the backend treats it as an
// opaque object and only validates it is a non-empty JSON object at the
// store boundary.
type SiteSettings map[string]interface{}

// Validate rejects empty or missing documents before they reach the store.
func (s SiteSettings) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("siteSettings must be a non-empty object: %w", ErrBadRequest)
	}
	return nil
}

// ContactEmail digs the firm's contact address out of the settings
// document, falling back to empty when the document doesn't carry one.
func (s SiteSettings) ContactEmail() string {
	general, ok := s["GeneralSettings"].(map[string]interface{})
	if !ok {
		return ""
	}
	email, _ := general["email"].(string)
	return email
}

// FirmName returns the display name of the firm, or the empty string.
func (s SiteSettings) FirmName() string {
	general, ok := s["GeneralSettings"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := general["name"].(string)
	return name
}

// Lead is a public inquiry submitted from a live tenant site.
type Lead struct {
	Name      string `json:"name" dynamodbav:"name" validate:"required"`
	Email     string `json:"email" dynamodbav:"email" validate:"required,email"`
	Mobile    string `json:"mobile" dynamodbav:"mobile" validate:"required"`
	Service   string `json:"service,omitempty" dynamodbav:"service,omitempty"`
	Message   string `json:"message,omitempty" dynamodbav:"message,omitempty"`
	Subdomain string `json:"subdomain" dynamodbav:"subdomain" validate:"required"`
}

// LiveSiteRef is the ATTR1 payload of the LiveSites subdomain index record.
// The owner email is duplicated top-level on the item so the publish
// transaction can condition on it.
type LiveSiteRef struct {
	OwnerEmail string `json:"owner_email" dynamodbav:"owner_email"`
	Subdomain  string `json:"subdomain" dynamodbav:"subdomain"`
}
