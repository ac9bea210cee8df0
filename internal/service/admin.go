package service

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/domain/model"
	"github.com/target/mmk-ui-client/internal/events"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
)

const adminUsersPath = "/api/admin/users"

// UsersResponse lists users.
type UsersResponse struct {
	Envelope
	Users []model.AdminUser `json:"users,omitempty"`
	Total int               `json:"total,omitempty"`
}

// UserResponse carries a single user.
type UserResponse struct {
	Envelope
	User *model.AdminUser `json:"user,omitempty"`
}

// PostsResponse lists posts.
type PostsResponse struct {
	Envelope
	Posts []model.Post `json:"posts,omitempty"`
	Total int          `json:"total,omitempty"`
}

// StatsResponse carries the system statistics.
type StatsResponse struct {
	Envelope
	Stats *model.Stats `json:"stats,omitempty"`
}

// AdminClient performs privileged user, role and content operations on behalf of an
// already authenticated session.
type AdminClient struct {
	caller
	session ports.SessionContext
	roles   *RolesClient
}

// NewAdminClient constructs an AdminClient.
func NewAdminClient(opts ClientOptions) *AdminClient {
	if opts.Session == nil {
		panic("Session is required")
	}
	return &AdminClient{
		caller:  newCaller(opts, "admin_client"),
		session: opts.Session,
		roles:   NewRolesClient(opts),
	}
}

// GetAllUsers lists every user.
func (c *AdminClient) GetAllUsers(ctx context.Context) *UsersResponse {
	out := &UsersResponse{}
	req := ports.Request{Method: http.MethodGet, Path: adminUsersPath}
	c.run(ctx, events.AdminUsers, "Failed to fetch users", req, out, func() events.Payload {
		return events.Payload{"users": out.Users, "total": out.Total}
	})
	return out
}

// GetUserByID fetches one user.
func (c *AdminClient) GetUserByID(ctx context.Context, id string) *UserResponse {
	out := &UserResponse{}
	if err := requireID("id", id); err != nil {
		c.reject(ctx, events.AdminUser, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodGet, Path: userPath(id)}
	c.run(ctx, events.AdminUser, "Failed to fetch user", req, out, func() events.Payload {
		return events.Payload{"user": out.User}
	})
	return out
}

// UpdateUser applies a partial update to a user.
func (c *AdminClient) UpdateUser(ctx context.Context, id string, in model.UpdateUserRequest) *UserResponse {
	out := &UserResponse{}
	if err := firstError(requireID("id", id), in.Validate()); err != nil {
		c.reject(ctx, events.AdminUserUpdate, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodPut, Path: userPath(id), Body: in}
	c.run(ctx, events.AdminUserUpdate, "Failed to update user", req, out, func() events.Payload {
		return events.Payload{"user": out.User}
	})
	return out
}

// DeactivateUser disables a user account.
func (c *AdminClient) DeactivateUser(ctx context.Context, id string) *Envelope {
	return c.userAction(ctx, events.AdminUserDeactivate, "Failed to deactivate user", http.MethodPut, id, "/deactivate", nil)
}

// ActivateUser re-enables a user account.
func (c *AdminClient) ActivateUser(ctx context.Context, id string) *Envelope {
	return c.userAction(ctx, events.AdminUserActivate, "Failed to activate user", http.MethodPut, id, "/activate", nil)
}

// DeleteUser removes a user account.
func (c *AdminClient) DeleteUser(ctx context.Context, id string) *Envelope {
	return c.userAction(ctx, events.AdminUserDelete, "Failed to delete user", http.MethodDelete, id, "", nil)
}

// GetUserRoles lists the roles held by a user.
func (c *AdminClient) GetUserRoles(ctx context.Context, userID string) *RolesResponse {
	out := &RolesResponse{}
	if err := requireID("userId", userID); err != nil {
		c.reject(ctx, events.AdminUserRoles, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodGet, Path: userPath(userID) + "/roles"}
	c.run(ctx, events.AdminUserRoles, "Failed to fetch user roles", req, out, func() events.Payload {
		return events.Payload{"userId": userID, "roles": out.Roles}
	})
	return out
}

// AssignRole grants a role to a user.
func (c *AdminClient) AssignRole(ctx context.Context, userID string, in model.RoleAssignment) *Envelope {
	out := &Envelope{}
	if err := firstError(requireID("userId", userID), in.Validate()); err != nil {
		c.reject(ctx, events.AdminRoleAssign, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodPost, Path: userPath(userID) + "/roles", Body: in}
	c.run(ctx, events.AdminRoleAssign, "Failed to assign role", req, out, func() events.Payload {
		return events.Payload{"userId": userID, "roleName": in.RoleName}
	})
	return out
}

// RemoveRole revokes a role from a user.
func (c *AdminClient) RemoveRole(ctx context.Context, userID, roleName string) *Envelope {
	out := &Envelope{}
	if err := firstError(requireID("userId", userID), requireID("roleName", roleName)); err != nil {
		c.reject(ctx, events.AdminRoleRemove, err, out)
		return out
	}
	req := ports.Request{
		Method: http.MethodDelete,
		Path:   userPath(userID) + "/roles/" + url.PathEscape(roleName),
	}
	c.run(ctx, events.AdminRoleRemove, "Failed to remove role", req, out, func() events.Payload {
		return events.Payload{"userId": userID, "roleName": roleName}
	})
	return out
}

// ForceLogout terminates every session of a user.
func (c *AdminClient) ForceLogout(ctx context.Context, userID string) *Envelope {
	return c.userAction(ctx, events.AdminUserLogout, "Failed to logout user", http.MethodPost, userID, "/logout", struct{}{})
}

// ResetPassword triggers a password reset for a user.
func (c *AdminClient) ResetPassword(ctx context.Context, userID string) *Envelope {
	return c.userAction(ctx, events.AdminUserPasswordReset, "Failed to reset password", http.MethodPost, userID, "/reset-password", struct{}{})
}

// ChangePassword sets a new password for a user.
func (c *AdminClient) ChangePassword(ctx context.Context, userID string, in model.PasswordChange) *Envelope {
	if err := in.Validate(); err != nil {
		out := &Envelope{}
		c.reject(ctx, events.AdminUserPasswordChange, err, out)
		return out
	}
	return c.userAction(ctx, events.AdminUserPasswordChange, "Failed to change password", http.MethodPut, userID, "/password", in)
}

// GetAllPosts lists every post.
func (c *AdminClient) GetAllPosts(ctx context.Context) *PostsResponse {
	out := &PostsResponse{}
	req := ports.Request{Method: http.MethodGet, Path: "/api/admin/posts"}
	c.run(ctx, events.AdminPosts, "Failed to fetch posts", req, out, func() events.Payload {
		return events.Payload{"posts": out.Posts, "total": out.Total}
	})
	return out
}

// GetSystemStats fetches user and post counts.
func (c *AdminClient) GetSystemStats(ctx context.Context) *StatsResponse {
	out := &StatsResponse{}
	req := ports.Request{Method: http.MethodGet, Path: "/api/admin/stats"}
	c.run(ctx, events.AdminStats, "Failed to fetch stats", req, out, func() events.Payload {
		return events.Payload{"stats": out.Stats}
	})
	return out
}

// Roles exposes role and permission management.
func (c *AdminClient) Roles() *RolesClient { return c.roles }

// IsAdminAuthenticated reports whether privileged calls can be attempted. There is no
// separate elevation; the backend authorizes each call.
func (c *AdminClient) IsAdminAuthenticated() bool { return c.session.IsAuthenticated() }

// CurrentUser returns the session user, or nil when none is held.
func (c *AdminClient) CurrentUser() domainauth.Record { return c.session.CurrentUser() }

// Overview is the admin dashboard snapshot.
type Overview struct {
	Stats *StatsResponse `json:"stats"`
	Users *UsersResponse `json:"users"`
	Roles *RolesResponse `json:"roles"`
}

// Overview fetches stats, users and roles concurrently. Each part runs to completion
// and carries its own outcome; the returned error is the first failure, if any.
func (c *AdminClient) Overview(ctx context.Context) (*Overview, error) {
	ov := &Overview{}
	var g errgroup.Group
	g.Go(func() error {
		ov.Stats = c.GetSystemStats(ctx)
		return ov.Stats.Err()
	})
	g.Go(func() error {
		ov.Users = c.GetAllUsers(ctx)
		return ov.Users.Err()
	})
	g.Go(func() error {
		ov.Roles = c.roles.GetRoles(ctx)
		return ov.Roles.Err()
	})
	err := g.Wait()
	return ov, err
}

func (c *AdminClient) userAction(
	ctx context.Context,
	op events.Operation,
	fallback, method, userID, suffix string,
	body any,
) *Envelope {
	out := &Envelope{}
	if err := requireID("userId", userID); err != nil {
		c.reject(ctx, op, err, out)
		return out
	}
	req := ports.Request{Method: method, Path: userPath(userID) + suffix, Body: body}
	c.run(ctx, op, fallback, req, out, func() events.Payload {
		return events.Payload{"userId": userID}
	})
	return out
}

func userPath(id string) string {
	return adminUsersPath + "/" + url.PathEscape(id)
}

func requireID(field, value string) error {
	if value == "" {
		return apperrors.ValidationField(field, field+" is required")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
