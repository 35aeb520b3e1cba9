package iam

// Conventional permission names seeded at install time. These are ordinary
// data rows; new permissions can be declared without a code change.
const (
	PermUsersManage      = "iam_users_manage"
	PermGroupManage      = "iam_group_manage"
	PermPermissionManage = "iam_permission_manage"
)

// DefaultGroupName is the group every self-registered user joins.
const DefaultGroupName = "users"
