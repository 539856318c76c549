package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qwiktax/lsp-oms/internal/domain"
)

// EnterpriseRepo serves the superadmin directory views and the membership
// mutations (confirmation, cascade delete).
type EnterpriseRepo struct {
	table *Table
}

func NewEnterpriseRepo(table *Table) *EnterpriseRepo {
	return &EnterpriseRepo{table: table}
}

// ListProfiles returns every enterprise profile record, newest first.
func (r *EnterpriseRepo) ListProfiles(ctx context.Context) ([]domain.EnterpriseRecord, error) {
	items, err := r.table.QueryPrefix(ctx, pkEnterprise, "Profile:")
	if err != nil {
		return nil, err
	}
	return unmarshalEnterprises(items)
}

// ListByType returns the enterprises of one type via the by-type index
// records.
func (r *EnterpriseRepo) ListByType(ctx context.Context, enterpriseType string) ([]domain.EnterpriseRecord, error) {
	items, err := r.table.QueryPrefix(ctx, pkEnterprise, "EnterpriseType#"+enterpriseType)
	if err != nil {
		return nil, err
	}
	return unmarshalEnterprises(items)
}

// ListMembers returns the membership records of an enterprise.
func (r *EnterpriseRepo) ListMembers(ctx context.Context, eid string) ([]domain.MemberRecord, error) {
	items, err := r.table.QueryPrefix(ctx, "Eid#"+eid, "Username")
	if err != nil {
		return nil, err
	}
	return unmarshalMembers(items)
}

// GetMember loads one membership record of an enterprise.
func (r *EnterpriseRepo) GetMember(ctx context.Context, eid, username string) (domain.AuthAttrs, error) {
	item, err := r.table.Get(ctx, MemberKey(eid, username))
	if err != nil {
		return domain.AuthAttrs{}, err
	}
	var attrs domain.AuthAttrs
	if err := unmarshalAttr1(item, &attrs); err != nil {
		return domain.AuthAttrs{}, err
	}
	return attrs, nil
}

// Confirm flips the admin-approval flag on the authentication profile and
// the membership record together, so a login can never observe the two
// disagreeing.
func (r *EnterpriseRepo) Confirm(ctx context.Context, auth domain.AuthAttrs) error {
	auth.IsConfirmedByAdmin = "true"
	return r.table.TransactWrite(ctx, []WriteOp{
		UpdateOp(AuthProfileKey(auth.Username), auth),
		UpdateOp(MemberKey(auth.Eid, auth.Username), auth),
	})
}

// maxTransactOps is the DynamoDB TransactWriteItems item cap.
const maxTransactOps = 100

// DeleteEnterprise removes every membership record and member
// authentication profile, then the two enterprise index records.
// DynamoDB caps a transaction at 100 items, so a large enterprise is
// deleted across several transactions: each chunk is atomic, the cascade
// as a whole is not. The index records go in the final chunk, so a
// failure mid-cascade leaves the enterprise discoverable and the delete
// retryable. members must be the full membership listing.
func (r *EnterpriseRepo) DeleteEnterprise(ctx context.Context, ent domain.EnterpriseAttrs, members []domain.MemberRecord) error {
	for _, chunk := range chunkOps(enterpriseDeleteOps(ent, members), maxTransactOps) {
		if err := r.table.TransactWrite(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// enterpriseDeleteOps stages the full cascade: member records first, the
// enterprise index records last.
func enterpriseDeleteOps(ent domain.EnterpriseAttrs, members []domain.MemberRecord) []WriteOp {
	var ops []WriteOp
	for _, m := range members {
		username := UsernameFromMemberSK(m.SK)
		ops = append(ops,
			DeleteOp(MemberKey(ent.Eid, username)),
			DeleteOp(AuthProfileKey(username)),
		)
		if m.Attrs.Role == domain.RoleRider {
			ops = append(ops, DeleteOp(RiderKey(username, ent.Eid)))
		}
	}
	return append(ops,
		DeleteOp(EnterpriseTypeKey(ent.EnterpriseType, ent.Eid)),
		DeleteOp(EnterpriseProfileKey(ent.Eid)),
	)
}

func chunkOps(ops []WriteOp, size int) [][]WriteOp {
	var chunks [][]WriteOp
	for start := 0; start < len(ops); start += size {
		chunks = append(chunks, ops[start:min(start+size, len(ops))])
	}
	return chunks
}

func unmarshalEnterprises(items []map[string]types.AttributeValue) ([]domain.EnterpriseRecord, error) {
	records := make([]domain.EnterpriseRecord, 0, len(items))
	for _, item := range items {
		var rec domain.EnterpriseRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func unmarshalMembers(items []map[string]types.AttributeValue) ([]domain.MemberRecord, error) {
	records := make([]domain.MemberRecord, 0, len(items))
	for _, item := range items {
		var rec domain.MemberRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
