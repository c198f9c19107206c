package authz

// Permissions checked by the HTTP layer.
const (
	TenantRead   = "tenant:read"
	TenantWrite  = "tenant:write"
	ContactRead  = "contact:read"
	ContactWrite = "contact:write"
)

// Checker is the core authorization interface.
type Checker interface {
	HasPermission(role string, permission string) bool
}

// CheckerFunc is an adapter to use ordinary functions as Checker.
type CheckerFunc func(role string, permission string) bool

// HasPermission implements Checker.
func (f CheckerFunc) HasPermission(role string, permission string) bool {
	return f(role, permission)
}

// MapChecker is an in-memory Checker backed by role → permission patterns.
type MapChecker struct {
	permissions map[string][]string
}

// NewMapChecker creates a Checker from a static map of role → patterns.
func NewMapChecker(permissions map[string][]string) *MapChecker {
	return &MapChecker{permissions: permissions}
}

// HasPermission implements Checker.
func (c *MapChecker) HasPermission(role string, required string) bool {
	patterns, ok := c.permissions[role]
	if !ok {
		return false
	}
	return MatchAny(patterns, required)
}

// DefaultPolicy grants admins everything and members read access to the
// tenant plus full access to contacts.
func DefaultPolicy() *MapChecker {
	return NewMapChecker(map[string][]string{
		"ADMIN": {"*:*"},
		"USER":  {"contact:*", TenantRead},
	})
}
