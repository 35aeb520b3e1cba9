package iam

import (
	"slices"
	"sort"
	"testing"
)

func sampleUser() *User {
	return &User{
		ID:           "u1",
		Active:       true,
		Username:     "alice123",
		Name:         "Alice",
		PasswordHash: "$2a$10$hash",
		Groups: []Group{
			{ID: "g1", Name: "editors", Permissions: permsOf("iam_users_manage")},
			{ID: "g2", Name: "auditors", Permissions: permsOf("reports_view")},
		},
	}
}

func TestUserShortOmitsCredentials(t *testing.T) {
	short := sampleUser().Short()
	if short.ID != "u1" || short.Username != "alice123" || !short.Active || short.Name != "Alice" {
		t.Fatalf("unexpected short projection: %+v", short)
	}
}

func TestUserFullEmbedsGroupShorts(t *testing.T) {
	full := sampleUser().Full()
	if len(full.Groups) != 2 {
		t.Fatalf("expected 2 group shorts, got %d", len(full.Groups))
	}
	if full.Groups[0].ID != "g1" || full.Groups[0].Name != "editors" {
		t.Fatalf("unexpected group short: %+v", full.Groups[0])
	}
	sort.Strings(full.Permissions)
	if !slices.Equal(full.Permissions, []string{"iam_users_manage", "reports_view"}) {
		t.Fatalf("unexpected effective permissions: %v", full.Permissions)
	}
}

func TestUserIdentityClaims(t *testing.T) {
	identity := sampleUser().Identity()
	if identity.ID != "u1" || identity.Username != "alice123" || !identity.Active {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if !slices.Equal(identity.Groups, []string{"editors", "auditors"}) {
		t.Fatalf("identity groups must be names: %v", identity.Groups)
	}
	sort.Strings(identity.Permissions)
	if !slices.Equal(identity.Permissions, []string{"iam_users_manage", "reports_view"}) {
		t.Fatalf("identity permissions must be the effective set: %v", identity.Permissions)
	}
}

func TestGroupFullEmbedsShortViews(t *testing.T) {
	g := &Group{
		ID:   "g1",
		Name: "editors",
		Users: []User{
			{ID: "u1", Username: "alice123", Name: "Alice"},
		},
		Permissions: permsOf("iam_users_manage"),
	}
	full := g.Full()
	if full.ID != "g1" || full.Name != "editors" {
		t.Fatalf("unexpected group full: %+v", full)
	}
	if len(full.Users) != 1 || full.Users[0].Username != "alice123" {
		t.Fatalf("expected embedded user shorts: %+v", full.Users)
	}
	if len(full.Permissions) != 1 || full.Permissions[0].Name != "iam_users_manage" {
		t.Fatalf("expected embedded permission shorts: %+v", full.Permissions)
	}
}

func TestPermissionFullEmbedsGroups(t *testing.T) {
	p := &Permission{
		ID:          "p1",
		Name:        "iam_users_manage",
		Description: "Manage users",
		Groups:      []Group{{ID: "g1", Name: "admins"}},
	}
	full := p.Full()
	if full.Description != "Manage users" {
		t.Fatalf("unexpected description: %q", full.Description)
	}
	if len(full.Groups) != 1 || full.Groups[0].Name != "admins" {
		t.Fatalf("expected embedded group shorts: %+v", full.Groups)
	}
}

func TestPrincipalHasRights(t *testing.T) {
	p := NewPrincipal(Identity{
		ID:          "u1",
		Username:    "alice123",
		Permissions: []string{"iam_users_manage"},
	})
	if !p.HasRights("iam_users_manage") {
		t.Fatal("expected right to be present")
	}
	if p.HasRights("iam_group_manage") {
		t.Fatal("did not expect unrelated right")
	}
	var nilPrincipal *Principal
	if nilPrincipal.HasRights("anything") {
		t.Fatal("nil principal must have no rights")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &User{PasswordHash: hash}
	if !u.CheckPassword("secret1") {
		t.Fatal("correct password must verify")
	}
	if u.CheckPassword("wrong77") {
		t.Fatal("wrong password must not verify")
	}
	if u.CheckPassword("") {
		t.Fatal("empty password must not verify")
	}
}
