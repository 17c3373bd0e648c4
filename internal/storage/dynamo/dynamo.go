// Package dynamo stores records in Amazon DynamoDB.
//
// Every table is expected to have a single string hash key named after the
// record's key field (username for users, uuid for audit). Loads are table
// scans with a filter expression; the record set this service manages is
// small and the lookups are by arbitrary columns, not only by key.
//
// Dynamo has no equivalent of INSERT ... SELECT, so Dynamo does not
// implement storage.Rotator.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aanand-mishra/users-api/internal/storage"
)

// API is the subset of *dynamodb.Client the backend uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.ScanAPIClient
}

// Dynamo implements storage.Storage on top of an API client.
type Dynamo struct {
	client API
}

// New wraps client.
func New(client API) *Dynamo {
	return &Dynamo{client: client}
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (d *Dynamo) Close() error { return nil }

// Save puts a new item or updates the dirty attributes of an existing one.
//
// Inserts are conditioned on the key not existing yet and updates on the key
// existing, so an update of a vanished item reports NotFound instead of
// silently creating a partial item.
func (d *Dynamo) Save(ctx context.Context, obj storage.Object) error {
	table, key := obj.TableName(), obj.DBKey()
	updates, err := obj.DBUpdates()
	if err != nil {
		return err
	}

	if key.IsNew() {
		item, err := attributevalue.MarshalMap(updates)
		if err != nil {
			return d.fail("save", table, "marshal item", err)
		}
		_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(table),
			Item:                     item,
			ConditionExpression:      aws.String("attribute_not_exists(#k)"),
			ExpressionAttributeNames: map[string]string{"#k": key.Name},
		})
		if err != nil {
			return d.fail("save", table, "put item", err)
		}
		return nil
	}

	keyAttr, err := marshalKey(key)
	if err != nil {
		return d.fail("save", table, "marshal key", err)
	}
	names := map[string]string{"#k": key.Name}
	values := make(map[string]types.AttributeValue, len(updates))
	sets := make([]string, 0, len(updates))
	for i, col := range storage.SortedColumns(updates) {
		v, err := attributevalue.Marshal(updates[col])
		if err != nil {
			return d.fail("save", table, "marshal "+col, err)
		}
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		names[name] = col
		values[value] = v
		sets = append(sets, name+" = "+value)
	}

	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       keyAttr,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return storage.NotFound("save", table)
		}
		return d.fail("save", table, "update item", err)
	}
	return nil
}

// Delete removes the item with the object's key.
func (d *Dynamo) Delete(ctx context.Context, obj storage.Object) error {
	table := obj.TableName()
	keyAttr, err := marshalKey(obj.DBKey())
	if err != nil {
		return d.fail("delete", table, "marshal key", err)
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       keyAttr,
	})
	if err != nil {
		return d.fail("delete", table, "delete item", err)
	}
	return nil
}

// LoadByID returns the first item matching every filter condition.
func (d *Dynamo) LoadByID(ctx context.Context, table string, filter storage.Filter) (storage.Row, error) {
	rows, err := d.scan(ctx, "load", table, filter, true)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.NotFound("load", table)
	}
	return rows[0], nil
}

// LoadList returns every item matching filter.
func (d *Dynamo) LoadList(ctx context.Context, table string, filter storage.Filter) ([]storage.Row, error) {
	return d.scan(ctx, "list", table, filter, false)
}

// scan pages through the table. Scan's Limit is applied before the filter,
// so "first match" means reading pages until one comes back non-empty.
func (d *Dynamo) scan(ctx context.Context, op, table string, filter storage.Filter, first bool) ([]storage.Row, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if len(filter) > 0 {
		names := make(map[string]string, len(filter))
		values := make(map[string]types.AttributeValue, len(filter))
		conds := make([]string, 0, len(filter))
		for i, col := range filter.Columns() {
			v, err := attributevalue.Marshal(filter[col])
			if err != nil {
				return nil, d.fail(op, table, "marshal filter "+col, err)
			}
			name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
			names[name] = col
			values[value] = v
			conds = append(conds, name+" = "+value)
		}
		input.FilterExpression = aws.String(strings.Join(conds, " AND "))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	out := make([]storage.Row, 0)
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, d.fail(op, table, "scan", err)
		}
		for _, item := range page.Items {
			row, err := unmarshalRow(item)
			if err != nil {
				return nil, d.fail(op, table, "unmarshal item", err)
			}
			out = append(out, row)
			if first {
				return out, nil
			}
		}
	}
	return out, nil
}

func (d *Dynamo) fail(op, table, step string, err error) error {
	slog.Error("dynamo request failed",
		slog.String("op", op),
		slog.String("table", table),
		slog.String("step", step),
		slog.String("error", err.Error()))
	return storage.Failed(op, table)
}

func marshalKey(key storage.Key) (map[string]types.AttributeValue, error) {
	v, err := attributevalue.Marshal(key.Value)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{key.Name: v}, nil
}

// unmarshalRow decodes an item into plain Go values. Numbers come back as
// int64 when they are whole and float64 otherwise.
func unmarshalRow(item map[string]types.AttributeValue) (storage.Row, error) {
	raw := map[string]any{}
	err := attributevalue.UnmarshalMapWithOptions(item, &raw, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	row := make(storage.Row, len(raw))
	for k, v := range raw {
		n, ok := v.(attributevalue.Number)
		if !ok {
			row[k] = v
			continue
		}
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			row[k] = i
			continue
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		row[k] = f
	}
	return row, nil
}
