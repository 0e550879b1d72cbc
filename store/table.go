// Package store wraps a single DynamoDB table. Every write it offers is
// conditioned on the existence or absence of the item's key, and a failed
// condition is reported as ErrConditionFailed so callers can tell a conflict
// from an outage.
package store

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ChunkSize is the number of items written per transaction.
const ChunkSize = 25

// MaxPages bounds Query and Scan pagination.
const MaxPages = 100

// ErrConditionFailed is the cause of any write whose key condition did not
// hold.
var ErrConditionFailed = errors.New("conditional check failed")

// Key identifies one item.
type Key map[string]*dynamodb.AttributeValue

// StringKey builds a Key from string attributes.
func StringKey(attrs map[string]string) Key {
	key := make(Key, len(attrs))
	for name, value := range attrs {
		key[name] = &dynamodb.AttributeValue{S: aws.String(value)}
	}
	return key
}

// Table is one DynamoDB table. PartitionKey names the hash key attribute, it
// is what the existence conditions test.
type Table struct {
	Name         string
	PartitionKey string

	svc dynamodbiface.DynamoDBAPI
}

// NewTable returns a Table using svc.
func NewTable(svc dynamodbiface.DynamoDBAPI, name string, partitionKey string) *Table {
	return &Table{Name: name, PartitionKey: partitionKey, svc: svc}
}

// Get loads the item at key into out. It reports false when there is no such
// item.
func (t *Table) Get(ctx context.Context, key Key, out interface{}) (bool, error) {
	result, err := t.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.Name),
		Key:       key,
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed get from %s", t.Name)
	}

	if len(result.Item) == 0 {
		return false, nil
	}

	if err := dynamodbattribute.UnmarshalMap(result.Item, out); err != nil {
		return false, errors.Wrapf(err, "failed unmarshalling item from %s", t.Name)
	}

	return true, nil
}

// Create puts item only if no item with the same key exists.
func (t *Table) Create(ctx context.Context, item interface{}) error {
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		return errors.Wrap(err, "failed marshalling item")
	}

	expr, err := expression.NewBuilder().WithCondition(t.absent()).Build()
	if err != nil {
		return errors.Wrap(err, "failed building condition")
	}

	_, err = t.svc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(t.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	return t.writeError(err, "put")
}

// Update applies update to the item at key only if it exists and unmarshals
// the updated item into out.
func (t *Table) Update(ctx context.Context, key Key, update expression.UpdateBuilder, out interface{}) error {
	expr, err := expression.NewBuilder().WithCondition(t.present()).WithUpdate(update).Build()
	if err != nil {
		return errors.Wrap(err, "failed building update")
	}

	result, err := t.svc.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.Name),
		Key:                       key,
		ConditionExpression:       expr.Condition(),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              aws.String(dynamodb.ReturnValueAllNew),
	})
	if err := t.writeError(err, "update"); err != nil {
		return err
	}

	if out == nil || result == nil {
		return nil
	}

	if err := dynamodbattribute.UnmarshalMap(result.Attributes, out); err != nil {
		return errors.Wrapf(err, "failed unmarshalling updated item from %s", t.Name)
	}
	return nil
}

// Delete removes the item at key only if it exists and unmarshals the removed
// item into out.
func (t *Table) Delete(ctx context.Context, key Key, out interface{}) error {
	expr, err := expression.NewBuilder().WithCondition(t.present()).Build()
	if err != nil {
		return errors.Wrap(err, "failed building condition")
	}

	result, err := t.svc.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(t.Name),
		Key:                       key,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              aws.String(dynamodb.ReturnValueAllOld),
	})
	if err := t.writeError(err, "delete"); err != nil {
		return err
	}

	if out == nil || result == nil {
		return nil
	}

	if err := dynamodbattribute.UnmarshalMap(result.Attributes, out); err != nil {
		return errors.Wrapf(err, "failed unmarshalling deleted item from %s", t.Name)
	}
	return nil
}

// QueryAll collects every item matching keyCondition, following
// LastEvaluatedKey, into out (a pointer to a slice).
func (t *Table) QueryAll(ctx context.Context, keyCondition expression.KeyConditionBuilder, out interface{}) error {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return errors.Wrap(err, "failed building key condition")
	}

	var items []map[string]*dynamodb.AttributeValue
	var startKey Key
	for page := 0; ; page++ {
		if page == MaxPages {
			return errors.Errorf("query on %s exceeded %d pages", t.Name, MaxPages)
		}

		result, err := t.svc.QueryWithContext(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(t.Name),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return errors.Wrapf(err, "failed query on %s", t.Name)
		}

		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return t.unmarshalList(ctx, "query", items, out)
}

// ScanAll collects every item in the table, optionally filtered, following
// LastEvaluatedKey, into out (a pointer to a slice).
func (t *Table) ScanAll(ctx context.Context, filter *expression.ConditionBuilder, out interface{}) error {
	input := &dynamodb.ScanInput{TableName: aws.String(t.Name)}

	if filter != nil {
		expr, err := expression.NewBuilder().WithFilter(*filter).Build()
		if err != nil {
			return errors.Wrap(err, "failed building filter")
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []map[string]*dynamodb.AttributeValue
	for page := 0; ; page++ {
		if page == MaxPages {
			return errors.Errorf("scan on %s exceeded %d pages", t.Name, MaxPages)
		}

		result, err := t.svc.ScanWithContext(ctx, input)
		if err != nil {
			return errors.Wrapf(err, "failed scan on %s", t.Name)
		}

		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return t.unmarshalList(ctx, "scan", items, out)
}

// CreateAll writes items in transactions of ChunkSize, each item conditioned
// on its key being absent. A conflict in one chunk cancels that chunk only;
// chunks already committed stay written.
func (t *Table) CreateAll(ctx context.Context, items []interface{}) error {
	expr, err := expression.NewBuilder().WithCondition(t.absent()).Build()
	if err != nil {
		return errors.Wrap(err, "failed building condition")
	}

	for start := 0; start < len(items); start += ChunkSize {
		end := start + ChunkSize
		if end > len(items) {
			end = len(items)
		}

		writes := make([]*dynamodb.TransactWriteItem, 0, end-start)
		for _, item := range items[start:end] {
			av, err := dynamodbattribute.MarshalMap(item)
			if err != nil {
				return errors.Wrap(err, "failed marshalling item")
			}

			writes = append(writes, &dynamodb.TransactWriteItem{
				Put: &dynamodb.Put{
					TableName:                 aws.String(t.Name),
					Item:                      av,
					ConditionExpression:       expr.Condition(),
					ExpressionAttributeNames:  expr.Names(),
					ExpressionAttributeValues: expr.Values(),
				},
			})
		}

		_, err := t.svc.TransactWriteItemsWithContext(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: writes,
		})
		if err := t.writeError(err, "transact write"); err != nil {
			return errors.Wrapf(err, "chunk starting at item %d", start)
		}

		zerolog.Ctx(ctx).Debug().Str("table", t.Name).Int("items", len(writes)).Msg("chunk written")
	}

	return nil
}

func (t *Table) absent() expression.ConditionBuilder {
	return expression.AttributeNotExists(expression.Name(t.PartitionKey))
}

func (t *Table) present() expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name(t.PartitionKey))
}

func (t *Table) unmarshalList(ctx context.Context, op string, items []map[string]*dynamodb.AttributeValue, out interface{}) error {
	zerolog.Ctx(ctx).Debug().Str("table", t.Name).Str("op", op).Int("items", len(items)).Msg("collected items")

	if err := dynamodbattribute.UnmarshalListOfMaps(items, out); err != nil {
		return errors.Wrapf(err, "failed unmarshalling %s results from %s", op, t.Name)
	}
	return nil
}

// writeError translates a failed conditional write into ErrConditionFailed.
func (t *Table) writeError(err error, op string) error {
	if err == nil {
		return nil
	}

	if IsConditionFailed(err) {
		return errors.Wrapf(ErrConditionFailed, "%s on %s", op, t.Name)
	}

	return errors.Wrapf(err, "failed %s on %s", op, t.Name)
}

// IsConditionFailed reports whether err is a DynamoDB condition failure,
// either from a single write or from a cancelled transaction.
func IsConditionFailed(err error) bool {
	if errors.Cause(err) == ErrConditionFailed {
		return true
	}

	var canceled *dynamodb.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason != nil && aws.StringValue(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}

	aerr, ok := errors.Cause(err).(awserr.Error)
	return ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}
