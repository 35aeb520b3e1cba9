package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"iamgate.org/internal/iam"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	// msgUnauthorized is the single 401 body. A bad token and no token at
	// all must be indistinguishable in the response.
	msgUnauthorized = "Unauthorized"
)

// isPublic reports whether the route handles its own authentication. Token
// refresh extracts its bearer token itself because it accepts the refresh
// artifact, which the middleware would reject.
func isPublic(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return true
	case "/api/iam/token":
		return true
	case "/api/iam/user":
		// Self-registration only; listing users stays protected.
		return r.Method == http.MethodPost
	}
	return false
}

// withAuth verifies the bearer access token on every protected route and
// attaches the resulting principal to the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		claims, err := a.codec.VerifyAccess(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		principal := iam.NewPrincipal(claims.Identity)
		next.ServeHTTP(w, r.WithContext(iam.ContextWithPrincipal(r.Context(), principal)))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", errors.New("invalid authorization scheme")
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return "", errors.New("missing bearer token")
	}
	return raw, nil
}
