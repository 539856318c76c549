package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qwiktax/lsp-oms/internal/domain"
)

// AuthRepo persists authentication profiles, membership records and the
// ephemeral OTP records.
type AuthRepo struct {
	table *Table
}

func NewAuthRepo(table *Table) *AuthRepo {
	return &AuthRepo{table: table}
}

// GetProfile loads the authentication profile of a username.
func (r *AuthRepo) GetProfile(ctx context.Context, username string) (domain.AuthAttrs, error) {
	item, err := r.table.Get(ctx, AuthProfileKey(username))
	if err != nil {
		return domain.AuthAttrs{}, err
	}
	var attrs domain.AuthAttrs
	if err := unmarshalAttr1(item, &attrs); err != nil {
		return domain.AuthAttrs{}, err
	}
	return attrs, nil
}

// GetEnterpriseProfile loads the enterprise profile for an eid.
func (r *AuthRepo) GetEnterpriseProfile(ctx context.Context, eid string) (domain.EnterpriseAttrs, error) {
	item, err := r.table.Get(ctx, EnterpriseProfileKey(eid))
	if err != nil {
		return domain.EnterpriseAttrs{}, err
	}
	var attrs domain.EnterpriseAttrs
	if err := unmarshalAttr1(item, &attrs); err != nil {
		return domain.EnterpriseAttrs{}, err
	}
	return attrs, nil
}

// SignupTransact writes every record of a signup atomically: the two
// enterprise index records, the authentication profile and the membership
// record, plus the rider record for rider signups. Either all records land
// or none do.
func (r *AuthRepo) SignupTransact(ctx context.Context, ent domain.EnterpriseAttrs, auth domain.AuthAttrs) error {
	ops := []WriteOp{
		UpdateOp(EnterpriseTypeKey(ent.EnterpriseType, ent.Eid), ent),
		UpdateOp(EnterpriseProfileKey(ent.Eid), ent),
		UpdateOp(AuthProfileKey(auth.Username), auth),
		UpdateOp(MemberKey(auth.Eid, auth.Username), auth),
	}
	if auth.Role == domain.RoleRider {
		ops = append(ops, UpdateOp(RiderKey(auth.Username, auth.Eid), auth))
	}
	return r.table.TransactWrite(ctx, ops)
}

// ClearPendingDirectory removes the pending_directory marker from every
// record written for the user, atomically. Called after the directory half
// of a signup succeeds.
func (r *AuthRepo) ClearPendingDirectory(ctx context.Context, auth domain.AuthAttrs) error {
	auth.PendingDirectory = ""
	ops := []WriteOp{
		UpdateOp(AuthProfileKey(auth.Username), auth),
		UpdateOp(MemberKey(auth.Eid, auth.Username), auth),
	}
	if auth.Role == domain.RoleRider {
		ops = append(ops, UpdateOp(RiderKey(auth.Username, auth.Eid), auth))
	}
	return r.table.TransactWrite(ctx, ops)
}

// ListPendingProfiles returns authentication profiles whose directory
// registration never completed. Used by the reconciliation listing.
func (r *AuthRepo) ListPendingProfiles(ctx context.Context) ([]domain.AuthAttrs, error) {
	items, err := r.table.QueryPrefix(ctx, pkAuthentication, "Username#")
	if err != nil {
		return nil, err
	}
	pending := []domain.AuthAttrs{}
	for _, item := range items {
		var attrs domain.AuthAttrs
		if err := unmarshalAttr1(item, &attrs); err != nil {
			return nil, err
		}
		if attrs.PendingDirectory != "" {
			pending = append(pending, attrs)
		}
	}
	return pending, nil
}

// GetOTP loads the pending one-time code for a phone number. A record
// without an otp field (already consumed) reports domain.ErrNotFound.
func (r *AuthRepo) GetOTP(ctx context.Context, mobile string) (domain.OTPRecord, error) {
	item, err := r.table.Get(ctx, OTPKey(mobile))
	if err != nil {
		return domain.OTPRecord{}, err
	}
	if _, ok := item["otp"]; !ok {
		return domain.OTPRecord{}, fmt.Errorf("no pending otp for %s: %w", mobile, domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return domain.OTPRecord{}, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return rec, nil
}

// SetOTP upserts the one-time code and its expiry on the phone record.
func (r *AuthRepo) SetOTP(ctx context.Context, mobile, otp string, expiry int64) error {
	return r.table.SetFields(ctx, OTPKey(mobile), map[string]interface{}{
		"otp":        otp,
		"otp_expiry": expiry,
	})
}

// ClearOTP removes the code fields so a code can never be redeemed twice.
func (r *AuthRepo) ClearOTP(ctx context.Context, mobile string) error {
	return r.table.RemoveFields(ctx, OTPKey(mobile), "otp", "otp_expiry")
}

// unmarshalAttr1 decodes the ATTR1 payload of a raw item into dst.
func unmarshalAttr1(item map[string]types.AttributeValue, dst interface{}) error {
	attr1, ok := item["ATTR1"]
	if !ok {
		return fmt.Errorf("item has no ATTR1 payload: %w", domain.ErrNotFound)
	}
	if err := attributevalue.Unmarshal(attr1, dst); err != nil {
		return fmt.Errorf("unmarshal ATTR1: %w", err)
	}
	return nil
}
