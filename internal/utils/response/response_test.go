package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/service"
	"github.com/aanand-mishra/users-api/internal/storage"
)

func respond(err error) service.Response {
	return service.Handle(context.Background(), "req-1", func(context.Context) (any, error) {
		return "done", err
	})
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   int
		want int
	}{
		{"ok", nil, http.StatusOK, http.StatusOK},
		{"created", nil, http.StatusCreated, http.StatusCreated},
		{"validation", &model.ValidationError{Field: "gender", Reason: "bad"}, http.StatusOK, http.StatusBadRequest},
		{"model", &model.ModelError{Msg: "Nothing to save"}, http.StatusOK, http.StatusBadRequest},
		{"not found", storage.NotFound("load", "users"), http.StatusOK, http.StatusNotFound},
		{"backend", storage.Failed("save", "users"), http.StatusOK, http.StatusBadGateway},
		{"general", errors.New("boom"), http.StatusOK, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(respond(tt.err), tt.ok))
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Write(rec, respond(storage.NotFound("load", "users")), http.StatusOK))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"request_id": "req-1",
		"status":     "error",
		"error_type": "backend",
		"message":    "user not found",
	}, body)
}

func TestRequestIDHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"plain token", "trace-42.a_b", "trace-42.a_b"},
		{"absent", "", ""},
		{"too long", strings.Repeat("a", 65), ""},
		{"control characters", "abc\x1bdef", ""},
		{"spaces", "abc def", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header[RequestIDHeader] = []string{tt.header}
			assert.Equal(t, tt.want, RequestID(req))
		})
	}
}

func TestServeReplacesUnsafeRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	rec := httptest.NewRecorder()

	Serve(rec, req, http.StatusOK, func(context.Context) (any, error) { return "done", nil })

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	id, _ := body["request_id"].(string)
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "x")
}

func TestDecodeObject(t *testing.T) {
	data, err := DecodeObject(strings.NewReader(`{"username":"test1","password":123456}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "test1", "password": json.Number("123456")}, data)

	var modelErr *model.ModelError

	_, err = DecodeObject(strings.NewReader(""))
	require.ErrorAs(t, err, &modelErr)
	assert.EqualError(t, err, "request body is empty")

	_, err = DecodeObject(strings.NewReader(`{"username":`))
	require.ErrorAs(t, err, &modelErr)

	_, err = DecodeObject(strings.NewReader(`[1,2]`))
	require.ErrorAs(t, err, &modelErr)

	_, err = DecodeObject(strings.NewReader(`null`))
	assert.EqualError(t, err, "request body must be a JSON object")
}
