package httpapi

import (
	"errors"
	"net/http"

	"iamgate.org/internal/iam"
)

// msgBadCredentials is returned for unknown usernames and wrong passwords
// alike, so responses never reveal whether a username exists.
const msgBadCredentials = "Bad username or password"

type issueTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	Error        any    `json:"error"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// handleIssueToken authenticates credentials and issues an access plus
// refresh token carrying the current identity claims.
func (a *API) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := a.store.Users().FindByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		respondError(w, r, err)
		return
	}
	if !user.CheckPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	identity := user.Identity()
	access, _, err := a.codec.IssueAccess(identity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	refresh, _, err := a.codec.IssueRefresh(identity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

// handleRefreshToken mints a fresh access token. The user is re-fetched from
// the store so permission changes since issuance propagate here; this is the
// only point where claim staleness is reduced.
func (a *API) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	raw, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	claims, err := a.codec.Verify(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	user, err := a.store.Users().Find(r.Context(), claims.Identity.ID)
	if err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		respondError(w, r, err)
		return
	}

	access, _, err := a.codec.IssueAccess(user.Identity())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"error": nil, "token": access})
}
