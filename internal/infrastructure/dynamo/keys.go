package dynamo

import "strings"

// Key is the composite primary key of the single application table.
// PK is a coarse entity-group identifier, SK a fine-grained record
// discriminator.
type Key struct {
	PK string
	SK string
}

// Partition-key families.
const (
	pkAuthentication = "Authentication"
	pkEnterprise     = "Enterprise"
	pkRider          = "Rider"
	pkLiveSites      = "LiveSites"
)

// AuthProfileKey locates the Authentication profile of a username.
func AuthProfileKey(username string) Key {
	return Key{PK: pkAuthentication, SK: "Username#" + username + "#Profile"}
}

// OTPKey locates the ephemeral OTP record of an E.164 number.
func OTPKey(mobile string) Key {
	return Key{PK: pkAuthentication, SK: "Mobile#" + mobile}
}

// EnterpriseTypeKey locates the type-indexed enterprise record.
func EnterpriseTypeKey(enterpriseType, eid string) Key {
	return Key{PK: pkEnterprise, SK: "EnterpriseType#" + enterpriseType + ":Eid#" + eid}
}

// EnterpriseProfileKey locates the enterprise profile record.
func EnterpriseProfileKey(eid string) Key {
	return Key{PK: pkEnterprise, SK: "Profile:Eid#" + eid}
}

// MemberKey locates the denormalized enterprise-membership record that
// makes "list all users of an enterprise" a query instead of a scan.
func MemberKey(eid, username string) Key {
	return Key{PK: "Eid#" + eid, SK: "Username#" + username}
}

// RiderKey locates the additional membership record written for riders.
func RiderKey(username, eid string) Key {
	return Key{PK: pkRider, SK: "Username#" + username + ":Eid#" + eid}
}

// DraftSettingsKey and LiveSettingsKey locate a tenant's site-settings
// documents; SubdomainKey is the uniqueness index for live sites.
func DraftSettingsKey(email string) Key {
	return Key{PK: "Enterprise:" + email, SK: "SiteSettings:Draft"}
}

func LiveSettingsKey(email string) Key {
	return Key{PK: "Enterprise:" + email, SK: "SiteSettings:Live"}
}

func SubdomainKey(subdomain string) Key {
	return Key{PK: pkLiveSites, SK: "Subdomain#" + subdomain}
}

// LeadKey locates a stored public inquiry under the owning tenant.
func LeadKey(email, leadID string) Key {
	return Key{PK: "Enterprise:" + email, SK: "Lead#" + leadID}
}

// UsernameFromMemberSK recovers the username from a membership sort key.
func UsernameFromMemberSK(sk string) string {
	return strings.TrimPrefix(sk, "Username#")
}
