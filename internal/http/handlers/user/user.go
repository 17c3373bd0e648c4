// Package user contains all HTTP handlers related to the User resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN
// ─────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (storage)
//  2. Returns a function with the exact signature the router needs
//
// Each handler body is a service.Func run through response.Serve, so every
// response (success or failure) has the same envelope and request id.
package user

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/utils/response"
)

// active restricts a lookup to users that have not been soft deleted.
func active(username string) storage.Filter {
	f := storage.Filter{"deleted": 0}
	if username != "" {
		f["username"] = username
	}
	return f
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/v1/users/
// Returns every user that is not deleted.
//
// Success response (200 OK):
//
//	{ "request_id": "...", "status": "ok", "payload": { "items": [ {...}, ... ] } }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all users")
		response.Serve(w, r, http.StatusOK, func(ctx context.Context) (any, error) {
			return model.ListUsers(ctx, store, active(""))
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/v1/users/
// Creates a new user from the JSON request body.
//
// Request body (JSON):
//
//	{ "username": "test1", "password": "p123456", "gender": "male" }
//
// Success response (201 Created): the stored user as a one-element list.
//
// Error responses:
//
//	400 Bad Request  (empty body, unknown field, failed validation, taken username)
//	502 Bad Gateway  (storage failure)
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a user")
		response.Serve(w, r, http.StatusCreated, func(ctx context.Context) (any, error) {
			data, err := response.DecodeObject(r.Body)
			if err != nil {
				return nil, err
			}
			u, err := model.CreateUser(store, data)
			if err != nil {
				return nil, err
			}
			if err := u.Save(ctx); err != nil {
				return nil, err
			}
			slog.Info("user created", slog.String("username", u.Username()))
			return []*model.User{u}, nil
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByUsername handles GET /api/v1/users/{username}
// Deleted users are reported as not found (404).
// ─────────────────────────────────────────────────────────────────────────────
func GetByUsername(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		slog.Info("getting a user", slog.String("username", username))
		response.Serve(w, r, http.StatusOK, func(ctx context.Context) (any, error) {
			return model.GetUser(ctx, store, active(username))
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/v1/users/{username}
// Applies every key of the JSON body to the user, then saves.
//
// Request body (JSON), any subset of the writable fields:
//
//	{ "password": "n3wsecret", "gender": "other" }
//
// Keys are applied in sorted order so that with several bad keys the error
// reported is always the same one. username is read only (400).
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		slog.Info("updating a user", slog.String("username", username))
		response.Serve(w, r, http.StatusOK, func(ctx context.Context) (any, error) {
			u, err := model.GetUser(ctx, store, active(username))
			if err != nil {
				return nil, err
			}
			data, err := response.DecodeObject(r.Body)
			if err != nil {
				return nil, err
			}
			for _, k := range slices.Sorted(maps.Keys(data)) {
				if err := u.Update(k, data[k]); err != nil {
					return nil, err
				}
			}
			if err := u.Save(ctx); err != nil {
				return nil, err
			}
			slog.Info("user updated", slog.String("username", username))
			return u, nil
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/v1/users/{username}
// Soft delete: the row stays, flagged deleted, and an audit entry
// "user <username> deleted" is written.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		slog.Info("deleting a user", slog.String("username", username))
		response.Serve(w, r, http.StatusOK, func(ctx context.Context) (any, error) {
			u, err := model.GetUser(ctx, store, active(username))
			if err != nil {
				return nil, err
			}
			if err := u.Delete(ctx); err != nil {
				return nil, err
			}
			slog.Info("user deleted", slog.String("username", username))
			return u, nil
		})
	}
}
