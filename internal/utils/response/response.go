// Package response provides helpers for writing the JSON envelope and for
// reading JSON request bodies.
//
// Every handler in this application sends a service.Response back to the
// client. Rather than repeating the same steps (pick a status code, set the
// header, encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/service"
	"github.com/aanand-mishra/users-api/internal/storage"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded body with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// ─────────────────────────────────────────────────────────────────────────────
// StatusCode maps an envelope to an HTTP status.
//
//	ok                 → okStatus (200, or 201 for creates)
//	validation / model → 400 Bad Request
//	backend not found  → 404 Not Found
//	backend            → 502 Bad Gateway
//	general            → 500 Internal Server Error
//
// The envelope's error_type stays the client's source of truth; the status
// code only makes the outcome visible to proxies and generic clients.
// ─────────────────────────────────────────────────────────────────────────────
func StatusCode(resp service.Response, okStatus int) int {
	if resp.Status == service.StatusOK {
		return okStatus
	}
	switch resp.ErrorType {
	case service.Validation, service.Model:
		return http.StatusBadRequest
	case service.Backend:
		if errors.Is(resp.Cause(), storage.ErrNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Write sends resp with the status StatusCode picks for it.
func Write(w http.ResponseWriter, resp service.Response, okStatus int) error {
	return WriteJSON(w, StatusCode(resp, okStatus), resp)
}

// RequestIDHeader lets a caller pick the request id; when absent one is
// generated.
const RequestIDHeader = "X-Request-ID"

// A caller-supplied id is logged and echoed, so only short plain tokens are
// taken as is.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID returns the caller's X-Request-ID when it is a plain token and
// "" otherwise, in which case the request context generates one.
func RequestID(r *http.Request) string {
	id := r.Header.Get(RequestIDHeader)
	if !requestIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// Serve runs fn under a new request context and writes the envelope.
func Serve(w http.ResponseWriter, r *http.Request, okStatus int, fn service.Func) {
	resp := service.Handle(r.Context(), RequestID(r), fn)
	if err := Write(w, resp, okStatus); err != nil {
		slog.Error("failed to write response",
			slog.String("request_id", resp.RequestID),
			slog.String("error", err.Error()))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DecodeObject reads a JSON object body into a map.
//
// Numbers are kept as json.Number so the record's field coercion decides
// whether "123456" is a string or an integer.
//
// Error cases (both surface as model errors, i.e. 400):
//
//	empty body       → "request body is empty"
//	not a JSON object → "invalid request body: ..."
//
// ─────────────────────────────────────────────────────────────────────────────
func DecodeObject(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var data map[string]any
	err := dec.Decode(&data)
	if errors.Is(err, io.EOF) {
		return nil, &model.ModelError{Msg: "request body is empty"}
	}
	if err != nil {
		return nil, &model.ModelError{Msg: fmt.Sprintf("invalid request body: %s", err.Error())}
	}
	if data == nil {
		return nil, &model.ModelError{Msg: "request body must be a JSON object"}
	}
	return data, nil
}
