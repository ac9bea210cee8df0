package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/target/mmk-ui-client/internal/domain/model"
	"github.com/target/mmk-ui-client/internal/events"
	"github.com/target/mmk-ui-client/internal/ports"
)

const adminRolesPath = "/api/admin/roles"

// RolesResponse lists roles.
type RolesResponse struct {
	Envelope
	Roles []model.Role `json:"roles,omitempty"`
}

// RoleResponse carries a created or updated role under data.
type RoleResponse struct {
	Envelope
	Data *model.Role `json:"data,omitempty"`
}

// PermissionsResponse lists permissions. On success both fields hold the same list,
// whichever one the backend used.
type PermissionsResponse struct {
	Envelope
	Data        []model.Permission `json:"data,omitempty"`
	Permissions []model.Permission `json:"permissions,omitempty"`
}

// RolesClient manages roles and lists permissions.
type RolesClient struct {
	caller
}

// NewRolesClient constructs a RolesClient.
func NewRolesClient(opts ClientOptions) *RolesClient {
	return &RolesClient{caller: newCaller(opts, "roles_client")}
}

// GetRoles lists every role.
func (c *RolesClient) GetRoles(ctx context.Context) *RolesResponse {
	out := &RolesResponse{}
	req := ports.Request{Method: http.MethodGet, Path: adminRolesPath}
	c.run(ctx, events.AdminRoles, "Failed to fetch roles", req, out, func() events.Payload {
		return events.Payload{"roles": out.Roles}
	})
	return out
}

// CreateRole creates a role with the named permissions.
func (c *RolesClient) CreateRole(ctx context.Context, in model.RoleInput) *RoleResponse {
	out := &RoleResponse{}
	if err := in.Validate(); err != nil {
		c.reject(ctx, events.AdminRoleCreate, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodPost, Path: adminRolesPath, Body: in}
	c.run(ctx, events.AdminRoleCreate, "Failed to create role", req, out, func() events.Payload {
		return events.Payload{"role": out.Data}
	})
	return out
}

// UpdateRole replaces the name and permissions of a role.
func (c *RolesClient) UpdateRole(ctx context.Context, id string, in model.RoleInput) *RoleResponse {
	out := &RoleResponse{}
	if err := firstError(requireID("id", id), in.Validate()); err != nil {
		c.reject(ctx, events.AdminRoleUpdate, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodPut, Path: rolePath(id), Body: in}
	c.run(ctx, events.AdminRoleUpdate, "Failed to update role", req, out, func() events.Payload {
		return events.Payload{"role": out.Data}
	})
	return out
}

// DeleteRole removes a role.
func (c *RolesClient) DeleteRole(ctx context.Context, id string) *Envelope {
	out := &Envelope{}
	if err := requireID("id", id); err != nil {
		c.reject(ctx, events.AdminRoleDelete, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodDelete, Path: rolePath(id)}
	c.run(ctx, events.AdminRoleDelete, "Failed to delete role", req, out, func() events.Payload {
		return events.Payload{"id": id}
	})
	return out
}

// GetPermissions lists permissions, resolving the list from data then permissions.
func (c *RolesClient) GetPermissions(ctx context.Context) *PermissionsResponse {
	out := &PermissionsResponse{}
	req := ports.Request{Method: http.MethodGet, Path: "/api/admin/permissions"}
	c.run(ctx, events.AdminPermissions, "Failed to fetch permissions", req, out, func() events.Payload {
		perms := out.Data
		if perms == nil {
			perms = out.Permissions
		}
		if perms == nil {
			perms = []model.Permission{}
		}
		out.Data = perms
		out.Permissions = perms
		return events.Payload{"permissions": perms}
	})
	return out
}

func rolePath(id string) string {
	return adminRolesPath + "/" + url.PathEscape(id)
}
