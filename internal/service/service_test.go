package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/storage/memory"
)

func assertGolden(t *testing.T, name string, resp Response) {
	t.Helper()
	data, err := json.MarshalIndent(resp, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

func TestHandleEnvelopes(t *testing.T) {
	store := memory.New("datetime")
	ctx := context.Background()

	tests := []struct {
		name string
		fn   Func
	}{
		{
			name: "success_item",
			fn: func(context.Context) (any, error) {
				return model.NewUser(store, "test1", "p123456", "male", 0), nil
			},
		},
		{
			name: "success_items",
			fn: func(context.Context) (any, error) {
				return []*model.User{
					model.NewUser(store, "test1", "p123456", "male", 0),
					model.NewUser(store, "test2", "secret12", "female", 0),
				}, nil
			},
		},
		{
			name: "success_empty_items",
			fn: func(context.Context) (any, error) {
				var none []*model.User
				return none, nil
			},
		},
		{
			name: "error_validation",
			fn: func(ctx context.Context) (any, error) {
				u, err := model.CreateUser(store, map[string]any{
					"username": "test1", "password": "s", "gender": "male",
				})
				if err != nil {
					return nil, err
				}
				return u, u.Save(ctx)
			},
		},
		{
			name: "error_model",
			fn: func(ctx context.Context) (any, error) {
				u := model.NewUser(store, "test1", "p123456", "male", 0)
				return u, u.Update("username", "other")
			},
		},
		{
			name: "error_backend",
			fn: func(ctx context.Context) (any, error) {
				return model.GetUser(ctx, store, storage.Filter{"username": "ghost"})
			},
		},
		{
			name: "error_general",
			fn: func(context.Context) (any, error) {
				return nil, errors.New("boom")
			},
		},
		{
			name: "error_panic",
			fn: func(context.Context) (any, error) {
				panic("nil map")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Handle(ctx, "req-1", tt.fn)
			assertGolden(t, tt.name, resp)
		})
	}
}

func TestHandleGeneratesRequestID(t *testing.T) {
	resp := Handle(context.Background(), "", func(context.Context) (any, error) {
		return map[string]any{"rotated": true}, nil
	})
	assert.Len(t, resp.RequestID, 32)
	assert.NotContains(t, resp.RequestID, "-")
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"item": map[string]any{"rotated": true}}, resp.Payload)
	assert.NoError(t, resp.Cause())
}

func TestRequestContextFinalizesOnce(t *testing.T) {
	rc := New("req-1")
	resp, done := rc.Response()
	assert.False(t, done)
	assert.Equal(t, StatusPending, resp.Status)

	require.NoError(t, rc.Succeed("first"))
	assert.ErrorIs(t, rc.Succeed("second"), ErrFinalized)
	assert.ErrorIs(t, rc.Fail(errors.New("late")), ErrFinalized)

	resp, done = rc.Response()
	assert.True(t, done)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, map[string]any{"item": "first"}, resp.Payload)
	assert.Empty(t, resp.ErrorType)
}

func TestRequestContextErrorThenSuccessRejected(t *testing.T) {
	rc := New("req-1")
	cause := &model.ModelError{Msg: "Nothing to save"}
	require.NoError(t, rc.Fail(cause))
	assert.ErrorIs(t, rc.Succeed("value"), ErrFinalized)

	resp, _ := rc.Response()
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, Model, resp.ErrorType)
	assert.Equal(t, "Nothing to save", resp.Message)
	assert.Nil(t, resp.Payload)
	assert.Same(t, cause, resp.Cause())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{&model.ValidationError{Field: "password", Reason: "too short"}, Validation},
		{&model.CoercionError{Field: "datetime", Kind: model.Int, Value: "x"}, Validation},
		{fmt.Errorf("save: %w", &model.ModelError{Msg: "x"}), Model},
		{storage.Failed("save", "users"), Backend},
		{storage.NotFound("load", "users"), Backend},
		{fmt.Errorf("wrapped: %w", storage.NotFound("load", "audit")), Backend},
		{errors.New("boom"), General},
		{context.Canceled, General},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), tt.err.Error())
	}
}

func TestChainListsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New("inner"))
	assert.Equal(t,
		"*fmt.wrapError: outer: inner <- *errors.errorString: inner",
		chain(err))
}
