// Package authz decides whether a role may perform an action.
//
// Permissions use a "resource:action" format with "*" wildcards:
//
//	checker := authz.DefaultPolicy()
//	checker.HasPermission("USER", authz.TenantWrite) // false
//	checker.HasPermission("ADMIN", authz.TenantWrite) // true
package authz
