package events

// Topic outcome suffixes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Operation names an action whose outcome is announced on "<operation>:success"
// and "<operation>:error".
type Operation string

// Success returns the success topic for the operation.
func (o Operation) Success() string { return string(o) + ":" + OutcomeSuccess }

// Error returns the error topic for the operation.
func (o Operation) Error() string { return string(o) + ":" + OutcomeError }

// Auth operations.
const (
	AuthLogin    Operation = "auth:login"
	AuthRegister Operation = "auth:register"
	AuthProfile  Operation = "auth:profile"
	AuthRefresh  Operation = "auth:refresh"
)

// TopicAuthLogout is published on every logout. It has no outcome suffix.
const TopicAuthLogout = "auth:logout"

// Admin user operations.
const (
	AdminUsers              Operation = "admin:users"
	AdminUser               Operation = "admin:user"
	AdminUserUpdate         Operation = "admin:user:update"
	AdminUserDeactivate     Operation = "admin:user:deactivate"
	AdminUserActivate       Operation = "admin:user:activate"
	AdminUserDelete         Operation = "admin:user:delete"
	AdminUserRoles          Operation = "admin:user:roles"
	AdminUserLogout         Operation = "admin:user:logout"
	AdminUserPasswordReset  Operation = "admin:user:password:reset"
	AdminUserPasswordChange Operation = "admin:user:password:change"
	AdminPosts              Operation = "admin:posts"
	AdminStats              Operation = "admin:stats"
)

// Admin role and permission operations.
const (
	AdminRoleAssign  Operation = "admin:role:assign"
	AdminRoleRemove  Operation = "admin:role:remove"
	AdminRoles       Operation = "admin:roles"
	AdminRoleCreate  Operation = "admin:role:create"
	AdminRoleUpdate  Operation = "admin:role:update"
	AdminRoleDelete  Operation = "admin:role:delete"
	AdminPermissions Operation = "admin:permissions"
)

// Category operations.
const (
	CategoriesFetch Operation = "categories:fetch"
	CategoryFetch   Operation = "category:fetch"
	CategoryCreate  Operation = "category:create"
	CategoryUpdate  Operation = "category:update"
	CategoryDelete  Operation = "category:delete"
	CategoryToggle  Operation = "category:toggle"
)
