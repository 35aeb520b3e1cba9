package iam

// EffectivePermissions computes the union of permission names across the
// user's loaded groups, deduplicated. The result order is unspecified beyond
// being deterministic for a given group graph; callers must not rely on it.
func EffectivePermissions(u *User) []string {
	if u == nil {
		return nil
	}
	seen := make(map[string]struct{})
	perms := make([]string, 0)
	for i := range u.Groups {
		for j := range u.Groups[i].Permissions {
			name := u.Groups[i].Permissions[j].Name
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			perms = append(perms, name)
		}
	}
	return perms
}

// HasPermission reports whether the permission name is in the user's
// effective set.
func (u *User) HasPermission(name string) bool {
	if name == "" {
		return false
	}
	for i := range u.Groups {
		for j := range u.Groups[i].Permissions {
			if u.Groups[i].Permissions[j].Name == name {
				return true
			}
		}
	}
	return false
}
