package auth

// Staff permissions checked by RequirePermission.
const (
	PermissionAuditRead     = "audit:read"
	PermissionSettingsRead  = "settings:read"
	PermissionSettingsWrite = "settings:write"
	PermissionMembersRead   = "members:read"
	PermissionBillingRead   = "billing:read"
)

// AllPermissions lists every permission a staff role can hold.
var AllPermissions = []string{
	PermissionAuditRead,
	PermissionSettingsRead,
	PermissionSettingsWrite,
	PermissionMembersRead,
	PermissionBillingRead,
}
