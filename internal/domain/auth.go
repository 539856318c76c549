package domain

// SignupRequest is the role-dependent signup payload. Standard roles
// require email/password/business_name/enterprise_type/clientId; riders
// require mobile_number and eid instead (the OTP is their credential).
type SignupRequest struct {
	Role           string `json:"role"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	BusinessName   string `json:"business_name"`
	EnterpriseType string `json:"enterprise_type"`
	ClientID       string `json:"clientId"`
	MobileNumber   string `json:"mobile_number"`
	Username       string `json:"username"`
	Eid            string `json:"eid"`
}

// SignupResult reports how the created account will authenticate.
type SignupResult struct {
	Role                      string `json:"role"`
	AuthMethod                string `json:"auth_method,omitempty"`
	RequiresEmailVerification bool   `json:"requires_email_verification"`
}

type ConfirmRequest struct {
	Username string `json:"username"`
	ClientID string `json:"clientId"`
	Code     string `json:"code"`
}

type ResendCodeRequest struct {
	Username string `json:"username"`
	ClientID string `json:"clientId"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"clientId"`
}

type ForgotPasswordRequest struct {
	Username string `json:"username"`
	ClientID string `json:"clientId"`
}

type ConfirmForgotPasswordRequest struct {
	Username         string `json:"username"`
	ClientID         string `json:"clientId"`
	Password         string `json:"password"`
	ConfirmationCode string `json:"confirmationCode"`
}

// TokenResponse is the token envelope returned by password login and OTP
// verification. JWT is either the directory-issued ID token (password
// login, verified via the provider's published keys) or a self-issued
// token (OTP login, verified with the shared secret).
type TokenResponse struct {
	JWT            string `json:"jwt"`
	Eid            string `json:"eid"`
	Username       string `json:"username"`
	EnterpriseType string `json:"enterprise_type"`
	DisplayName    string `json:"display_name"`
	Role           string `json:"role"`
	MobileNumber   string `json:"mobile_number,omitempty"`
	AuthMethod     string `json:"auth_method,omitempty"`
}

// GoogleUser is the identity extracted from a verified Google ID token.
// It represents identity only, not tenant membership.
type GoogleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// OTPRecord is the ephemeral one-time code stored per phone number.
// Both fields live top-level on the item (not inside ATTR1) so they can be
// removed together with a single REMOVE expression on verification.
type OTPRecord struct {
	OTP string `dynamodbav:"otp"`
	// Expiry is epoch milliseconds; expiry is checked lazily on verify.
	Expiry int64 `dynamodbav:"otp_expiry"`
}
