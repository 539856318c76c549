package domain

import "strings"

// Enterprise types. Every tenant is one of these; roles derive from them.
const (
	EnterpriseLSP        = "lsp"
	EnterpriseSuperadmin = "superadmin"
)

// RoleRider is the only role that is requested explicitly at signup.
// All other roles are derived: <type>_admin when the signup creates the
// enterprise, <type>_guest when it joins an existing one.
const RoleRider = "lsp_rider"

// RiderUsernameSuffix synthesizes a directory-compatible username for
// rider accounts, which are identified by phone number only.
const RiderUsernameSuffix = "@lsp-rider.local"

func ValidEnterpriseType(t string) bool {
	return t == EnterpriseLSP || t == EnterpriseSuperadmin
}

func AdminRole(enterpriseType string) string { return enterpriseType + "_admin" }
func GuestRole(enterpriseType string) string { return enterpriseType + "_guest" }

// RiderUsername returns the synthetic username for a rider mobile number.
func RiderUsername(mobile string) string { return mobile + RiderUsernameSuffix }

// DisplayName composes the human-readable name returned on login:
// "<EnterpriseType>-<LocalPartOfUsername>", both capitalized.
func DisplayName(enterpriseType, username string) string {
	local := username
	if i := strings.Index(username, "@"); i > 0 {
		local = username[:i]
	}
	return capitalize(enterpriseType) + "-" + capitalize(local)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
