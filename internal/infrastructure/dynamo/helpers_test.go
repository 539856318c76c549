package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"otp": "123456"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "otp"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"otp_expiry": int64(1700000000000),
		"otp":        "123456",
		"channel":    "sms",
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: channel < otp < otp_expiry
	assert.Equal(t, "channel", ue1.Names["#f0"])
	assert.Equal(t, "otp", ue1.Names["#f1"])
	assert.Equal(t, "otp_expiry", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"enabled": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, Key{PK: "Authentication", SK: "Username#alice@firm.com#Profile"},
		AuthProfileKey("alice@firm.com"))
	assert.Equal(t, Key{PK: "Authentication", SK: "Mobile#+919999900000"},
		OTPKey("+919999900000"))
	assert.Equal(t, Key{PK: "Enterprise", SK: "EnterpriseType#lsp:Eid#e-1"},
		EnterpriseTypeKey("lsp", "e-1"))
	assert.Equal(t, Key{PK: "Enterprise", SK: "Profile:Eid#e-1"},
		EnterpriseProfileKey("e-1"))
	assert.Equal(t, Key{PK: "Eid#e-1", SK: "Username#alice@firm.com"},
		MemberKey("e-1", "alice@firm.com"))
	assert.Equal(t, Key{PK: "Rider", SK: "Username#+911234@lsp-rider.local:Eid#e-1"},
		RiderKey("+911234@lsp-rider.local", "e-1"))
	assert.Equal(t, Key{PK: "LiveSites", SK: "Subdomain#acme"},
		SubdomainKey("acme"))
}

func TestUsernameFromMemberSK(t *testing.T) {
	assert.Equal(t, "alice@firm.com", UsernameFromMemberSK("Username#alice@firm.com"))
}
