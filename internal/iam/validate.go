package iam

// Field length bounds mirror the stored column sizes; names shorter than four
// characters are rejected everywhere a name is unique.
const (
	maxFieldLen    = 122
	minNameLen     = 4
	minPasswordLen = 7
	maxPasswordLen = 24
)

// ValidateUsername checks self-service username policy. Uniqueness is
// enforced by the store.
func ValidateUsername(username string) error {
	if username == "" {
		return Invalid("username", "Username can't be empty.")
	}
	if len(username) < minNameLen {
		return Invalid("username", "Username must be longer than 3 symbols.")
	}
	if len(username) > maxFieldLen {
		return Invalid("username", "Username can't be longer than 122 symbols.")
	}
	return nil
}

// ValidatePassword checks the password policy for new and changed passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return Invalid("password", "Password can't be empty.")
	}
	if len(password) < minPasswordLen {
		return Invalid("password", "Password must be longer than 6 symbols.")
	}
	if len(password) > maxPasswordLen {
		return Invalid("password", "Password can't be longer than 24 symbols.")
	}
	return nil
}

// ValidateDisplayName checks the optional display name. Empty is allowed and
// defaults to the username at creation time.
func ValidateDisplayName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > maxFieldLen {
		return Invalid("name", "Name can't be longer than 122 symbols.")
	}
	return nil
}

// ValidateGroupName checks group name length bounds.
func ValidateGroupName(name string) error {
	if len(name) < minNameLen {
		return Invalid("name", "Group name must be longer than 3 symbols.")
	}
	if len(name) > maxFieldLen {
		return Invalid("name", "Group name can't be longer than 122 symbols.")
	}
	return nil
}

// ValidatePermissionName checks permission name length bounds.
func ValidatePermissionName(name string) error {
	if len(name) < minNameLen {
		return Invalid("name", "Permission name must be longer than 3 symbols.")
	}
	if len(name) > maxFieldLen {
		return Invalid("name", "Permission name can't be longer than 122 symbols.")
	}
	return nil
}
