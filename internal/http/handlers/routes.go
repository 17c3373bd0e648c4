// Package handlers wires the resource handlers into a router.
package handlers

import (
	"net/http"

	"github.com/aanand-mishra/users-api/internal/http/handlers/audit"
	"github.com/aanand-mishra/users-api/internal/http/handlers/user"
	"github.com/aanand-mishra/users-api/internal/jobs"
	"github.com/aanand-mishra/users-api/internal/storage"
)

// NewRouter registers every route.
//
// Route table:
//
//	GET    /api/v1/users/            → list users that are not deleted
//	POST   /api/v1/users/            → create a user
//	GET    /api/v1/users/{username}  → get one user
//	PUT    /api/v1/users/{username}  → update a user
//	DELETE /api/v1/users/{username}  → soft delete a user (+ audit entry)
//	PUT    /api/v1/audit/{username}  → append an audit entry
//	GET    /api/v1/audit/{username}  → list a user's audit entries
//	POST   /api/v1/audit/rotate      → archive old audit entries
//
// "rotate" is a literal segment, which the ServeMux prefers over the
// {username} wildcard.
func NewRouter(store storage.Storage, rotate *jobs.Rotate) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /api/v1/users/{$}", user.GetList(store))
	router.HandleFunc("POST /api/v1/users/{$}", user.New(store))
	router.HandleFunc("GET /api/v1/users/{username}", user.GetByUsername(store))
	router.HandleFunc("PUT /api/v1/users/{username}", user.Update(store))
	router.HandleFunc("DELETE /api/v1/users/{username}", user.Delete(store))

	router.HandleFunc("PUT /api/v1/audit/{username}", audit.New(store))
	router.HandleFunc("GET /api/v1/audit/{username}", audit.GetList(store))
	router.HandleFunc("POST /api/v1/audit/rotate", audit.Rotate(rotate))

	return router
}
