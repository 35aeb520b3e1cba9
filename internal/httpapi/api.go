// Package httpapi is the HTTP layer of the IAM service: routing, bearer
// authentication, the generic entity controller and the specialized user and
// token endpoints.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"iamgate.org/internal/iam"
	"iamgate.org/internal/obs"
	"iamgate.org/internal/token"
)

const apiBase = "/api/iam"

// ReadyProbe checks the dependencies behind /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API wires the HTTP surface over the identity store and token codec.
type API struct {
	mux        *http.ServeMux
	store      iam.Store
	codec      *token.Codec
	readyProbe ReadyProbe
	version    string
}

// New builds the API and registers all routes.
func New(store iam.Store, codec *token.Codec, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		store:      store,
		codec:      codec,
		readyProbe: rp,
		version:    version,
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("POST "+apiBase+"/token", a.handleIssueToken)
	a.mux.HandleFunc("GET "+apiBase+"/token", a.handleRefreshToken)

	// Users: self-registration and the self-aware item routes are
	// specialized; listing goes through the generic controller.
	users := newUserResource(store)
	a.mux.HandleFunc("POST "+apiBase+"/user", a.handleCreateUser)
	a.mux.HandleFunc("GET "+apiBase+"/user", users.HandleList)
	a.mux.HandleFunc("GET "+apiBase+"/user/{id}", a.handleGetUser)
	a.mux.HandleFunc("PUT "+apiBase+"/user/{id}", a.handleEditUser)
	a.mux.HandleFunc("DELETE "+apiBase+"/user/{id}", a.handleDeleteUser)

	newGroupResource(store).Register(a.mux, apiBase)
	newPermissionResource(store).Register(a.mux, apiBase)

	return a
}

// Handler returns the fully wrapped handler: metrics innermost around the
// mux, then authentication, body limits, rate limiting, logging and transport
// hardening.
func (a *API) Handler() http.Handler {
	h := obs.Instrument(a.mux)
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 100, 50)
	h = LoggingJSON(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "iam-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
