package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"iamgate.org/internal/iam"
	"iamgate.org/internal/obs"
	"iamgate.org/internal/token"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// success is the uniform all-good body: a null error marker and nothing else.
func success(w http.ResponseWriter, code int) {
	writeJSON(w, code, map[string]any{"error": nil})
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return iam.Invalid("body", "Invalid JSON body.")
	}
	return nil
}

// respondError maps the domain error taxonomy onto HTTP statuses once, at the
// outermost layer. Unexpected failures become a logged 500 and are never
// silently swallowed.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *iam.ValidationError
	var pErr *iam.PermissionError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Msg)
	case errors.As(err, &pErr):
		writeError(w, http.StatusForbidden, pErr.Error())
	case errors.Is(err, iam.ErrUnauthorized), errors.Is(err, token.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, iam.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, iam.ErrConflict):
		writeError(w, http.StatusBadRequest, "Already exists.")
	default:
		obs.Error("request failed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "Internal error.")
	}
}
