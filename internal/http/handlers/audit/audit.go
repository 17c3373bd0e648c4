// Package audit contains the HTTP handlers for the audit trail. Entries
// can be appended and listed; they leave the live table only through
// rotation.
package audit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/users-api/internal/jobs"
	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles PUT /api/v1/audit/{username}
// Appends an entry about {username}.
//
// Request body (JSON):
//
//	{ "message": "password changed" }
//
// uuid and datetime are generated when omitted. The username comes from the
// path and wins over any username in the body.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		slog.Info("creating an audit entry", slog.String("username", username))
		response.Serve(w, r, http.StatusCreated, func(ctx context.Context) (any, error) {
			data, err := response.DecodeObject(r.Body)
			if err != nil {
				return nil, err
			}
			data["username"] = username
			entry, err := model.CreateAudit(store, data)
			if err != nil {
				return nil, err
			}
			if err := entry.Save(ctx); err != nil {
				return nil, err
			}
			return []*model.Audit{entry}, nil
		})
	}
}

// GetList handles GET /api/v1/audit/{username}: every entry about
// {username}, oldest first.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		slog.Info("listing audit entries", slog.String("username", username))
		response.Serve(w, r, http.StatusOK, func(ctx context.Context) (any, error) {
			return model.ListAudit(ctx, store, storage.Filter{"username": username})
		})
	}
}

// Rotate handles POST /api/v1/audit/rotate, meant to be called by a
// scheduler. The payload item is {"rotated": true|false}.
func Rotate(job *jobs.Rotate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("rotating audit entries")
		response.Serve(w, r, http.StatusOK, func(ctx context.Context) (any, error) {
			return job.Run(ctx)
		})
	}
}
