package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qwiktax/lsp-oms/internal/domain"
)

// Table wraps the single application table. Every record lives under a
// composite PK/SK key with its payload in ATTR1 and store-managed
// create_datetime / modified_datetime stamps (epoch ms). The multi-item
// transactional write is the only atomicity primitive the application uses.
type Table struct {
	client *dynamodb.Client
	name   string
}

func NewTable(client *dynamodb.Client, name string) *Table {
	return &Table{client: client, name: name}
}

func (t *Table) Name() string { return t.name }

func nowMillis() int64 { return time.Now().UnixMilli() }

// Get fetches a single item. Returns domain.ErrNotFound when absent.
func (t *Table) Get(ctx context.Context, key Key) (map[string]types.AttributeValue, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       avKey(key),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item %s/%s: %w", key.PK, key.SK, domain.ErrNotFound)
	}
	return out.Item, nil
}

// Put writes an item with ATTR1 set to attr1 plus any extra top-level
// fields, overwriting an existing item and refreshing both datetime stamps.
func (t *Table) Put(ctx context.Context, key Key, attr1 interface{}, fields map[string]interface{}) error {
	item, err := buildItem(key, attr1, fields)
	if err != nil {
		return err
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	return err
}

// SetAttrs upserts ATTR1 on the item, creating it when missing.
func (t *Table) SetAttrs(ctx context.Context, key Key, attr1 interface{}) error {
	val, err := attributevalue.Marshal(attr1)
	if err != nil {
		return fmt.Errorf("marshal ATTR1: %w", err)
	}
	_, err = t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(t.name),
		Key:              avKey(key),
		UpdateExpression: aws.String("SET ATTR1 = :val, modified_datetime = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":val": val,
			":m":   &types.AttributeValueMemberN{Value: fmt.Sprint(nowMillis())},
		},
	})
	return err
}

// SetFields upserts top-level fields on the item (used for the OTP record,
// whose otp/otp_expiry live outside ATTR1).
func (t *Table) SetFields(ctx context.Context, key Key, fields map[string]interface{}) error {
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	ue.Expr += ", modified_datetime = :m"
	ue.Values[":m"] = &types.AttributeValueMemberN{Value: fmt.Sprint(nowMillis())}
	_, err = t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       avKey(key),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// RemoveFields removes top-level fields from the item, stamping
// modified_datetime in the same expression.
func (t *Table) RemoveFields(ctx context.Context, key Key, fields ...string) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to remove")
	}
	expr := "REMOVE "
	names := make(map[string]string, len(fields))
	for i, f := range fields {
		nameKey := fmt.Sprintf("#f%d", i)
		names[nameKey] = f
		if i > 0 {
			expr += ", "
		}
		expr += nameKey
	}
	expr += " SET modified_datetime = :m"
	_, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(t.name),
		Key:                      avKey(key),
		UpdateExpression:         aws.String(expr),
		ExpressionAttributeNames: names,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberN{Value: fmt.Sprint(nowMillis())},
		},
	})
	return err
}

// Delete removes a single item by key.
func (t *Table) Delete(ctx context.Context, key Key) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       avKey(key),
	})
	return err
}

// QueryPrefix returns all items whose PK matches and whose SK begins with
// skPrefix, newest first.
func (t *Table) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error) {
	out, err := t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
			":sk": &types.AttributeValueMemberS{Value: skPrefix},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

type opKind int

const (
	opPut opKind = iota
	opUpdate
	opDelete
)

// WriteOp is one leg of a multi-item transactional write.
type WriteOp struct {
	kind       opKind
	key        Key
	attr1      interface{}
	fields     map[string]interface{}
	cond       string
	condValues map[string]interface{}
}

// PutOp stages a full-item write (ATTR1 + extra top-level fields).
func PutOp(key Key, attr1 interface{}, fields map[string]interface{}) WriteOp {
	return WriteOp{kind: opPut, key: key, attr1: attr1, fields: fields}
}

// PutOpIf stages a conditional full-item write. cond may reference the
// staged fields; condValues supplies its expression values.
func PutOpIf(key Key, attr1 interface{}, fields map[string]interface{}, cond string, condValues map[string]interface{}) WriteOp {
	return WriteOp{kind: opPut, key: key, attr1: attr1, fields: fields, cond: cond, condValues: condValues}
}

// UpdateOp stages a SET ATTR1 upsert.
func UpdateOp(key Key, attr1 interface{}) WriteOp {
	return WriteOp{kind: opUpdate, key: key, attr1: attr1}
}

// DeleteOp stages an item deletion.
func DeleteOp(key Key) WriteOp {
	return WriteOp{kind: opDelete, key: key}
}

// TransactWrite executes all staged ops as a single all-or-nothing
// transaction. A failed condition on any leg cancels every leg and
// surfaces as domain.ErrConflict.
func (t *Table) TransactWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	items := make([]types.TransactWriteItem, 0, len(ops))
	for _, op := range ops {
		item, err := t.transactItem(op)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	_, err := t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
					return fmt.Errorf("transaction condition failed: %w", domain.ErrConflict)
				}
			}
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

func (t *Table) transactItem(op WriteOp) (types.TransactWriteItem, error) {
	switch op.kind {
	case opPut:
		item, err := buildItem(op.key, op.attr1, op.fields)
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		put := &types.Put{
			TableName: aws.String(t.name),
			Item:      item,
		}
		if op.cond != "" {
			put.ConditionExpression = aws.String(op.cond)
			values, err := marshalValues(op.condValues)
			if err != nil {
				return types.TransactWriteItem{}, err
			}
			put.ExpressionAttributeValues = values
		}
		return types.TransactWriteItem{Put: put}, nil
	case opUpdate:
		val, err := attributevalue.Marshal(op.attr1)
		if err != nil {
			return types.TransactWriteItem{}, fmt.Errorf("marshal ATTR1: %w", err)
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:        aws.String(t.name),
			Key:              avKey(op.key),
			UpdateExpression: aws.String("SET ATTR1 = :val, modified_datetime = :m"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":val": val,
				":m":   &types.AttributeValueMemberN{Value: fmt.Sprint(nowMillis())},
			},
		}}, nil
	case opDelete:
		return types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(t.name),
			Key:       avKey(op.key),
		}}, nil
	}
	return types.TransactWriteItem{}, fmt.Errorf("unsupported write op kind %d", op.kind)
}

func buildItem(key Key, attr1 interface{}, fields map[string]interface{}) (map[string]types.AttributeValue, error) {
	item := avKey(key)
	if attr1 != nil {
		val, err := attributevalue.Marshal(attr1)
		if err != nil {
			return nil, fmt.Errorf("marshal ATTR1: %w", err)
		}
		item["ATTR1"] = val
	}
	for name, v := range fields {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", name, err)
		}
		item[name] = av
	}
	now := fmt.Sprint(nowMillis())
	item["create_datetime"] = &types.AttributeValueMemberN{Value: now}
	item["modified_datetime"] = &types.AttributeValueMemberN{Value: now}
	return item, nil
}

func marshalValues(values map[string]interface{}) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(values))
	for k, v := range values {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal value %s: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}
