package httpapi

import (
	"errors"
	"net/http"

	"iamgate.org/internal/iam"
	"iamgate.org/internal/ids"
)

// selfID is the sentinel path id that always resolves to the caller.
const selfID = "self"

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// handleCreateUser is unauthenticated self-registration. New users join the
// default group and start inactive.
func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := iam.ValidateUsername(req.Username); err != nil {
		respondError(w, r, err)
		return
	}
	if err := iam.ValidatePassword(req.Password); err != nil {
		respondError(w, r, err)
		return
	}
	if err := iam.ValidateDisplayName(req.Name); err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := a.store.Users().FindByUsername(r.Context(), req.Username); err == nil {
		respondError(w, r, iam.Invalid("username", "Username already exists."))
		return
	} else if !errors.Is(err, iam.ErrNotFound) {
		respondError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}
	hash, err := iam.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	defaultGroups, err := a.store.Groups().FindByNames(r.Context(), []string{iam.DefaultGroupName})
	if err != nil {
		respondError(w, r, err)
		return
	}

	user := &iam.User{
		ID:           ids.New(),
		Active:       false,
		Username:     req.Username,
		Name:         name,
		PasswordHash: hash,
		Groups:       defaultGroups,
	}
	if err := a.store.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, iam.ErrConflict) {
			respondError(w, r, iam.Invalid("username", "Username already exists."))
			return
		}
		respondError(w, r, err)
		return
	}
	success(w, http.StatusCreated)
}

// resolveUserID maps the self sentinel onto the caller's own id. Addressing
// any other user requires the user-management permission.
func resolveUserID(p *iam.Principal, raw string) (string, error) {
	if raw == selfID {
		return p.Identity.ID, nil
	}
	if !p.HasRights(iam.PermUsersManage) {
		return "", &iam.PermissionError{Username: p.Identity.Username, Permission: iam.PermUsersManage}
	}
	return raw, nil
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	p, ok := iam.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, r, iam.ErrUnauthorized)
		return
	}
	id, err := resolveUserID(p, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := a.store.Users().Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found.")
			return
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"error": nil, "data": user.Full()})
}

type editUserRequest struct {
	Name        *string   `json:"name"`
	Password    *string   `json:"password"`
	OldPassword *string   `json:"old_password"`
	Groups      *[]string `json:"groups"`
}

func (a *API) handleEditUser(w http.ResponseWriter, r *http.Request) {
	p, ok := iam.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, r, iam.ErrUnauthorized)
		return
	}
	id, err := resolveUserID(p, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := a.store.Users().Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found.")
			return
		}
		respondError(w, r, err)
		return
	}

	var req editUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.Name != nil {
		if err := iam.ValidateDisplayName(*req.Name); err != nil {
			respondError(w, r, err)
			return
		}
		user.Name = *req.Name
	}

	if req.Password != nil {
		// Changing a password needs the correct old one unless the
		// caller manages users.
		old := ""
		if req.OldPassword != nil {
			old = *req.OldPassword
		}
		if !user.CheckPassword(old) && !p.HasRights(iam.PermUsersManage) {
			respondError(w, r, iam.Invalid("old_password", "Old password is not correct."))
			return
		}
		if err := iam.ValidatePassword(*req.Password); err != nil {
			respondError(w, r, err)
			return
		}
		hash, err := iam.HashPassword(*req.Password)
		if err != nil {
			respondError(w, r, err)
			return
		}
		user.PasswordHash = hash
	}

	if req.Groups != nil {
		// Group membership changes always need the management
		// permission, self included.
		if !p.HasRights(iam.PermUsersManage) {
			respondError(w, r, &iam.PermissionError{Username: p.Identity.Username, Permission: iam.PermUsersManage})
			return
		}
		groups, err := a.store.Groups().FindByNames(r.Context(), *req.Groups)
		if err != nil {
			respondError(w, r, err)
			return
		}
		user.Groups = groups
	}

	if err := a.store.Users().Update(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}
	success(w, http.StatusOK)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p, ok := iam.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, r, iam.ErrUnauthorized)
		return
	}
	id, err := resolveUserID(p, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := a.store.Users().Delete(r.Context(), id); err != nil {
		if errors.Is(err, iam.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found.")
			return
		}
		respondError(w, r, err)
		return
	}
	success(w, http.StatusOK)
}
