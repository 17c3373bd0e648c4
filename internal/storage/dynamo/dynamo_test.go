package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/users-api/internal/storage"
)

type object struct {
	table   string
	key     storage.Key
	updates map[string]any
}

func (o object) TableName() string                  { return o.table }
func (o object) DBKey() storage.Key                 { return o.key }
func (o object) DBUpdates() (map[string]any, error) { return o.updates, nil }

// fakeAPI records every request and replays canned scan pages.
type fakeAPI struct {
	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	deletes []*dynamodb.DeleteItemInput
	scans   []*dynamodb.ScanInput

	pages     [][]map[string]types.AttributeValue
	updateErr error
	scanErr   error
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deletes = append(f.deletes, in)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	page := len(f.scans) - 1
	out := &dynamodb.ScanOutput{}
	if page < len(f.pages) {
		out.Items = f.pages[page]
	}
	if page+1 < len(f.pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"username": &types.AttributeValueMemberS{Value: "cursor"},
		}
	}
	return out, nil
}

func userItem(name string, deleted string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: name},
		"password": &types.AttributeValueMemberS{Value: "p123456"},
		"gender":   &types.AttributeValueMemberS{Value: "male"},
		"deleted":  &types.AttributeValueMemberN{Value: deleted},
	}
}

func TestSaveInsertPutsConditionalItem(t *testing.T) {
	api := &fakeAPI{}
	d := New(api)

	err := d.Save(context.Background(), object{
		table:   "users",
		key:     storage.Key{Name: "username"},
		updates: map[string]any{"username": "test", "deleted": int64(0)},
	})
	require.NoError(t, err)
	require.Len(t, api.puts, 1)

	in := api.puts[0]
	assert.Equal(t, "users", aws.ToString(in.TableName))
	assert.Equal(t, "attribute_not_exists(#k)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, map[string]string{"#k": "username"}, in.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "test"}, in.Item["username"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "0"}, in.Item["deleted"])
}

func TestSaveUpdateSetsDirtyAttributes(t *testing.T) {
	api := &fakeAPI{}
	d := New(api)

	err := d.Save(context.Background(), object{
		table:   "users",
		key:     storage.Key{Name: "username", Value: "test"},
		updates: map[string]any{"password": "1234", "gender": "female"},
	})
	require.NoError(t, err)
	require.Len(t, api.updates, 1)

	in := api.updates[0]
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", aws.ToString(in.UpdateExpression))
	assert.Equal(t, "attribute_exists(#k)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, map[string]string{"#k": "username", "#f0": "gender", "#f1": "password"}, in.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "female"}, in.ExpressionAttributeValues[":v0"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "test"}, in.Key["username"])
}

func TestSaveUpdateOfMissingItemIsNotFound(t *testing.T) {
	api := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("nope")}}
	err := New(api).Save(context.Background(), object{
		table:   "users",
		key:     storage.Key{Name: "username", Value: "ghost"},
		updates: map[string]any{"password": "1234"},
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.EqualError(t, err, "user not found")
}

func TestSaveUpdateFailureIsBackendError(t *testing.T) {
	api := &fakeAPI{updateErr: errors.New("throttled")}
	err := New(api).Save(context.Background(), object{
		table:   "users",
		key:     storage.Key{Name: "username", Value: "test"},
		updates: map[string]any{"password": "1234"},
	})
	assert.ErrorIs(t, err, storage.ErrBackend)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteUsesKey(t *testing.T) {
	api := &fakeAPI{}
	err := New(api).Delete(context.Background(), object{
		table: "users",
		key:   storage.Key{Name: "username", Value: "test"},
	})
	require.NoError(t, err)
	require.Len(t, api.deletes, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "test"}, api.deletes[0].Key["username"])
}

func TestLoadListPagesAndFilters(t *testing.T) {
	api := &fakeAPI{pages: [][]map[string]types.AttributeValue{
		{userItem("test1", "0")},
		{userItem("test2", "0")},
	}}
	rows, err := New(api).LoadList(context.Background(), "users", storage.Filter{"deleted": 0, "gender": "male"})
	require.NoError(t, err)

	assert.Equal(t, []storage.Row{
		{"username": "test1", "password": "p123456", "gender": "male", "deleted": int64(0)},
		{"username": "test2", "password": "p123456", "gender": "male", "deleted": int64(0)},
	}, rows)

	require.Len(t, api.scans, 2)
	in := api.scans[0]
	assert.Equal(t, "#f0 = :v0 AND #f1 = :v1", aws.ToString(in.FilterExpression))
	assert.Equal(t, map[string]string{"#f0": "deleted", "#f1": "gender"}, in.ExpressionAttributeNames)
}

func TestLoadByIDStopsAtFirstMatch(t *testing.T) {
	api := &fakeAPI{pages: [][]map[string]types.AttributeValue{
		{},
		{userItem("test1", "0")},
		{userItem("test2", "0")},
	}}
	row, err := New(api).LoadByID(context.Background(), "users", storage.Filter{"username": "test1"})
	require.NoError(t, err)
	assert.Equal(t, "test1", row["username"])
	assert.Len(t, api.scans, 2)
}

func TestLoadByIDMissIsNotFound(t *testing.T) {
	_, err := New(&fakeAPI{}).LoadByID(context.Background(), "audit", storage.Filter{"uuid": "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScanFailureIsBackendError(t *testing.T) {
	_, err := New(&fakeAPI{scanErr: errors.New("boom")}).LoadList(context.Background(), "users", nil)
	assert.ErrorIs(t, err, storage.ErrBackend)
	assert.EqualError(t, err, "backend failed: list users")
}

func TestUnmarshalRowNumbers(t *testing.T) {
	row, err := unmarshalRow(map[string]types.AttributeValue{
		"datetime": &types.AttributeValueMemberN{Value: "1700000000"},
		"ratio":    &types.AttributeValueMemberN{Value: "0.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, storage.Row{"datetime": int64(1700000000), "ratio": 0.5}, row)
}
