package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"iamgate.org/internal/iam"
)

// OpConfig declares the authorization requirement of a single CRUD operation:
// whether a principal must be present at all, and optionally which permission
// it must hold. An empty Permission means authentication alone suffices.
type OpConfig struct {
	AuthRequired bool
	Permission   string
}

// Resource is the generic entity controller: a fixed request algorithm
// (authenticate, authorize, resolve id / validate input, locate, mutate or
// project, respond) parameterized by a capability-set record of store
// functions and entity-specific hooks. Each operation checks only its own
// configured permission.
type Resource[T any] struct {
	// Code names the entity and derives the REST paths and error messages.
	Code     string
	PageSize int

	Create OpConfig
	Delete OpConfig
	List   OpConfig
	Get    OpConfig
	Edit   OpConfig

	// Store capabilities.
	Insert func(ctx context.Context, entity T) error
	Find   func(ctx context.Context, id string) (T, error)
	Update func(ctx context.Context, entity T) error
	Remove func(ctx context.Context, id string) error
	Search func(ctx context.Context, q iam.ListQuery, perPage int) ([]T, iam.PageInfo, error)

	// PrepareCreate owns all field-level validation of the create body and
	// returns the entity to persist. It must fail with a validation error,
	// never a generic one, on bad input.
	PrepareCreate func(ctx context.Context, p *iam.Principal, body []byte) (T, error)
	// PrepareID may transform or validate the raw path id. Nil means
	// identity.
	PrepareID func(ctx context.Context, p *iam.Principal, raw string) (string, error)
	// PrepareEdit applies the request body to the located entity in place.
	// Partial update semantics: only fields present in the body are touched.
	PrepareEdit func(ctx context.Context, p *iam.Principal, entity T, body []byte) error

	// Projections.
	Short func(entity T) any
	Full  func(entity T) any
}

// Register wires the five routes under base (e.g. /api/iam).
func (rs *Resource[T]) Register(mux *http.ServeMux, base string) {
	collection := base + "/" + rs.Code
	item := collection + "/{id}"
	mux.HandleFunc("POST "+collection, rs.HandleCreate)
	mux.HandleFunc("GET "+collection, rs.HandleList)
	mux.HandleFunc("GET "+item, rs.HandleGet)
	mux.HandleFunc("PUT "+item, rs.HandleEdit)
	mux.HandleFunc("DELETE "+item, rs.HandleDelete)
}

// authorize resolves the principal and enforces the operation's own declared
// permission. It never consults another operation's config.
func (rs *Resource[T]) authorize(r *http.Request, op OpConfig) (*iam.Principal, error) {
	p, ok := iam.PrincipalFromContext(r.Context())
	if op.AuthRequired && !ok {
		return nil, iam.ErrUnauthorized
	}
	if op.Permission != "" {
		if !ok {
			return nil, iam.ErrUnauthorized
		}
		if !p.HasRights(op.Permission) {
			return nil, &iam.PermissionError{Username: p.Identity.Username, Permission: op.Permission}
		}
	}
	return p, nil
}

func (rs *Resource[T]) resolveID(ctx context.Context, p *iam.Principal, raw string) (string, error) {
	if rs.PrepareID == nil {
		return raw, nil
	}
	return rs.PrepareID(ctx, p, raw)
}

func (rs *Resource[T]) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found.", rs.Code))
}

// HandleCreate persists a new entity prepared by the create hook.
func (rs *Resource[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := rs.authorize(r, rs.Create)
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, iam.Invalid("body", "Can't read request body."))
		return
	}
	entity, err := rs.PrepareCreate(r.Context(), p, body)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := rs.Insert(r.Context(), entity); err != nil {
		if errors.Is(err, iam.ErrConflict) {
			respondError(w, r, iam.Invalid("name", fmt.Sprintf("%s already exists.", rs.Code)))
			return
		}
		respondError(w, r, err)
		return
	}
	success(w, http.StatusCreated)
}

type listResponse struct {
	Error any   `json:"error"`
	Data  []any `json:"data"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
}

// HandleList serves one page of short projections. Malformed paging input
// falls back to the first page, never an error; a page past the end yields an
// empty list.
func (rs *Resource[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	_, err := rs.authorize(r, rs.List)
	if err != nil {
		respondError(w, r, err)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	q := iam.ListQuery{Page: page, Search: r.URL.Query().Get("search")}

	items, info, err := rs.Search(r.Context(), q, rs.PageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	data := make([]any, 0, len(items))
	for _, item := range items {
		data = append(data, rs.Short(item))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: data, Pages: info.Pages, Page: info.Page})
}

// HandleGet serves the full projection of one entity.
func (rs *Resource[T]) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := rs.authorize(r, rs.Get)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := rs.resolveID(r.Context(), p, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	entity, err := rs.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			rs.notFound(w)
			return
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"error": nil, "data": rs.Full(entity)})
}

// HandleEdit applies a partial update through the edit hook and commits.
func (rs *Resource[T]) HandleEdit(w http.ResponseWriter, r *http.Request) {
	p, err := rs.authorize(r, rs.Edit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := rs.resolveID(r.Context(), p, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	entity, err := rs.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			rs.notFound(w)
			return
		}
		respondError(w, r, err)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, iam.Invalid("body", "Can't read request body."))
		return
	}
	if err := rs.PrepareEdit(r.Context(), p, entity, body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := rs.Update(r.Context(), entity); err != nil {
		if errors.Is(err, iam.ErrConflict) {
			respondError(w, r, iam.Invalid("name", fmt.Sprintf("%s already exists.", rs.Code)))
			return
		}
		respondError(w, r, err)
		return
	}
	success(w, http.StatusOK)
}

// HandleDelete removes one entity. Association rows cascade; related entities
// survive.
func (rs *Resource[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := rs.authorize(r, rs.Delete)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := rs.resolveID(r.Context(), p, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := rs.Find(r.Context(), id); err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			rs.notFound(w)
			return
		}
		respondError(w, r, err)
		return
	}
	if err := rs.Remove(r.Context(), id); err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			rs.notFound(w)
			return
		}
		respondError(w, r, err)
		return
	}
	success(w, http.StatusOK)
}
