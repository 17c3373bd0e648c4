// Package service wraps one unit of work into a uniform response envelope.
//
// A RequestContext starts Pending and is finalized exactly once, either
// with a success payload or with a classified error:
//
//	{"request_id": "...", "status": "ok",    "payload": {"item": {...}}}
//	{"request_id": "...", "status": "ok",    "payload": {"items": [...]}}
//	{"request_id": "...", "status": "error", "error_type": "validation", "message": "..."}
//
// Handle is the usual entry point: it runs a function under a fresh
// context, recovers panics and returns the finished Response.
package service

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// ErrFinalized is returned when a RequestContext that already holds a
// result is asked to record another one.
var ErrFinalized = errors.New("request context already finalized")

// Status values of the envelope.
const (
	StatusPending = "pending"
	StatusOK      = "ok"
	StatusError   = "error"
)

// Response is the envelope sent back to the caller.
type Response struct {
	RequestID string         `json:"request_id"`
	Status    string         `json:"status"`
	Payload   map[string]any `json:"payload,omitempty"`
	ErrorType ErrorType      `json:"error_type,omitempty"`
	Message   string         `json:"message,omitempty"`

	cause error
}

// Cause returns the error that finalized the context, or nil on success.
func (r Response) Cause() error { return r.cause }

// RequestContext tracks the outcome of one operation.
type RequestContext struct {
	resp Response
}

// NewRequestID returns a fresh request identifier: a random UUID without
// dashes.
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// New returns a pending context. An empty id is replaced by NewRequestID.
func New(requestID string) *RequestContext {
	if requestID == "" {
		requestID = NewRequestID()
	}
	return &RequestContext{resp: Response{RequestID: requestID, Status: StatusPending}}
}

// ID returns the request identifier.
func (c *RequestContext) ID() string { return c.resp.RequestID }

// Done reports whether the context has been finalized.
func (c *RequestContext) Done() bool { return c.resp.Status != StatusPending }

// Succeed records value as the success payload. Slices and arrays are
// wrapped as {"items": [...]}, anything else as {"item": ...}.
func (c *RequestContext) Succeed(value any) error {
	if c.Done() {
		return ErrFinalized
	}
	c.resp.Status = StatusOK
	c.resp.Payload = payload(value)
	return nil
}

// Fail records err as a classified error.
//
// Unclassified errors are logged with their full chain; every error
// envelope is logged with the request id and its type.
func (c *RequestContext) Fail(err error) error {
	if c.Done() {
		return ErrFinalized
	}
	kind := Classify(err)
	c.resp.Status = StatusError
	c.resp.ErrorType = kind
	c.resp.Message = err.Error()
	c.resp.cause = err

	slog.Error("request failed",
		slog.String("request_id", c.resp.RequestID),
		slog.String("error_type", string(kind)),
		slog.String("message", c.resp.Message))
	if kind == General {
		slog.Error("unclassified failure",
			slog.String("request_id", c.resp.RequestID),
			slog.String("error", err.Error()),
			slog.String("chain", chain(err)))
	}
	return nil
}

// Response returns the envelope and whether the context has been finalized.
func (c *RequestContext) Response() (Response, bool) {
	return c.resp, c.Done()
}

func payload(value any) map[string]any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if v.Kind() == reflect.Slice && v.IsNil() {
			return map[string]any{"items": []any{}}
		}
		return map[string]any{"items": value}
	}
	return map[string]any{"item": value}
}

// chain renders every error in err's Unwrap chain, outermost first.
func chain(err error) string {
	var parts []string
	for err != nil {
		parts = append(parts, reflect.TypeOf(err).String()+": "+err.Error())
		err = errors.Unwrap(err)
	}
	return strings.Join(parts, " <- ")
}
