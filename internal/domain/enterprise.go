package domain

// EnterpriseAttrs is the ATTR1 payload of the two Enterprise index records
// (by-type and profile). Both records carry the same payload and are kept in
// sync on write.
type EnterpriseAttrs struct {
	Eid            string `json:"eid" dynamodbav:"eid"`
	EnterpriseType string `json:"enterprise_type" dynamodbav:"enterprise_type"`
	BusinessName   string `json:"business_name" dynamodbav:"business_name"`
	Admin          string `json:"admin" dynamodbav:"admin"`
	CreateDatetime int64  `json:"create_datetime" dynamodbav:"create_datetime"`
	// EmailVerified is "yes"/"no"; riders skip email verification.
	EmailVerified string `json:"email_verified" dynamodbav:"email_verified"`
	MobileNumber  string `json:"mobile_number,omitempty" dynamodbav:"mobile_number,omitempty"`
	// IsConfirmedByAdmin is filled from the directory when superadmin
	// listings enrich enterprises with directory state. Not stored.
	IsConfirmedByAdmin string `json:"isConfirmedByAdmin,omitempty" dynamodbav:"-"`
}

// AuthAttrs is the ATTR1 payload of the Authentication profile, the
// enterprise membership record and the rider membership record.
type AuthAttrs struct {
	Eid            string `json:"eid" dynamodbav:"eid"`
	Username       string `json:"username" dynamodbav:"username"`
	EnterpriseType string `json:"enterprise_type" dynamodbav:"enterprise_type"`
	Role           string `json:"role" dynamodbav:"role"`
	CreateDatetime int64  `json:"create_datetime" dynamodbav:"create_datetime"`
	// IsConfirmedByAdmin is the manual approval flag, stored as the
	// strings "true"/"false".
	IsConfirmedByAdmin string `json:"isConfirmedByAdmin" dynamodbav:"isConfirmedByAdmin"`
	MobileNumber       string `json:"mobile_number,omitempty" dynamodbav:"mobile_number,omitempty"`
	// PendingDirectory marks records whose identity-directory counterpart
	// has not been confirmed yet. Set before directory registration,
	// cleared after it succeeds; a surviving marker means the signup's
	// directory half failed and the record awaits reconciliation.
	PendingDirectory string `json:"pending_directory,omitempty" dynamodbav:"pending_directory,omitempty"`
}

// Approved reports whether a superadmin has confirmed the account.
func (a AuthAttrs) Approved() bool { return a.IsConfirmedByAdmin == "true" }

// EnterpriseRecord is an Enterprise index item as returned to API clients:
// key plus typed ATTR1 payload.
type EnterpriseRecord struct {
	PK    string          `json:"PK" dynamodbav:"PK"`
	SK    string          `json:"SK" dynamodbav:"SK"`
	Attrs EnterpriseAttrs `json:"ATTR1" dynamodbav:"ATTR1"`
}

// MemberRecord is a membership item (PK "Eid#<eid>" or "Rider").
type MemberRecord struct {
	PK    string    `json:"PK" dynamodbav:"PK"`
	SK    string    `json:"SK" dynamodbav:"SK"`
	Attrs AuthAttrs `json:"ATTR1" dynamodbav:"ATTR1"`
}

// DirectoryUser is a user as seen by the external identity directory.
type DirectoryUser struct {
	Username   string
	Status     string // directory lifecycle status, e.g. "CONFIRMED"
	Enabled    bool
	CreateDate int64
	// Attributes holds the flattened attribute set, custom attributes
	// included ("custom:role", "custom:eid", ...).
	Attributes map[string]string
}

// Directory attribute names shared with the identity provider.
const (
	AttrConfirmedByAdmin = "custom:isConfirmedByAdmin"
	AttrEnterpriseType   = "custom:enterpriseType"
	AttrRole             = "custom:role"
	AttrEid              = "custom:eid"
	AttrPhoneNumber      = "phone_number"
	AttrEmailVerified    = "email_verified"
)
