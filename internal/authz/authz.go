// Package authz holds the closed role and permission sets, the static
// role-to-permission policy table and the engine that evaluates a caller's
// effective permissions against a declared requirement.
package authz

import (
	"context"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// Roles lists every valid role. Order matters nowhere; the set is closed.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type Permission string

const (
	PermReadUsers            Permission = "READ_USERS"
	PermWriteUsers           Permission = "WRITE_USERS"
	PermDeleteUsers          Permission = "DELETE_USERS"
	PermManageRoles          Permission = "MANAGE_ROLES"
	PermAccessAdminPanel     Permission = "ACCESS_ADMIN_PANEL"
	PermAccessModeratorPanel Permission = "ACCESS_MODERATOR_PANEL"
)

func Permissions() []Permission {
	return []Permission{
		PermReadUsers,
		PermWriteUsers,
		PermDeleteUsers,
		PermManageRoles,
		PermAccessAdminPanel,
		PermAccessModeratorPanel,
	}
}

func (p Permission) Valid() bool {
	switch p {
	case PermReadUsers, PermWriteUsers, PermDeleteUsers,
		PermManageRoles, PermAccessAdminPanel, PermAccessModeratorPanel:
		return true
	}
	return false
}

func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

// Policy is the immutable role-to-permission table. It is built once at
// startup and injected into the Engine; nothing mutates it afterwards.
type Policy struct {
	grants map[Role]map[Permission]struct{}
}

// DefaultPolicy builds the fixed policy table: administrators hold every
// permission, moderators read users and access the moderator panel, regular
// users read users.
func DefaultPolicy() *Policy {
	table := map[Role][]Permission{
		RoleAdmin: {
			PermReadUsers,
			PermWriteUsers,
			PermDeleteUsers,
			PermManageRoles,
			PermAccessAdminPanel,
			PermAccessModeratorPanel,
		},
		RoleModerator: {
			PermReadUsers,
			PermAccessModeratorPanel,
		},
		RoleUser: {
			PermReadUsers,
		},
	}

	grants := make(map[Role]map[Permission]struct{}, len(table))
	for role, perms := range table {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &Policy{grants: grants}
}

// RolePermissions returns a copy of the permission set the policy grants to
// role. Unknown roles get an empty set.
func (p *Policy) RolePermissions(role Role) []Permission {
	set := p.grants[role]
	out := make([]Permission, 0, len(set))
	for perm := range set {
		out = append(out, perm)
	}
	return out
}

func (p *Policy) roleHas(role Role, perm Permission) bool {
	_, ok := p.grants[role][perm]
	return ok
}

// GrantSource supplies the direct per-user permission grants layered on top
// of the role-derived set.
type GrantSource interface {
	PermissionsForUser(ctx context.Context, userID uint) ([]Permission, error)
}

type Engine struct {
	policy *Policy
	grants GrantSource
}

func NewEngine(policy *Policy, grants GrantSource) *Engine {
	return &Engine{policy: policy, grants: grants}
}

// HasRole reports flat set membership. There is no role hierarchy: a
// moderator is not an admin and an admin is not a moderator.
func (e *Engine) HasRole(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// Missing returns the subset of required permissions the caller does not
// hold, checking the role-derived set first and direct grants second. An
// empty result means the requirement is satisfied (AND semantics).
func (e *Engine) Missing(ctx context.Context, userID uint, role Role, required ...Permission) ([]Permission, error) {
	var missing []Permission
	for _, perm := range required {
		if !e.policy.roleHas(role, perm) {
			missing = append(missing, perm)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	direct, err := e.grants.PermissionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load direct grants: %w", err)
	}
	directSet := make(map[Permission]struct{}, len(direct))
	for _, p := range direct {
		directSet[p] = struct{}{}
	}

	still := missing[:0]
	for _, perm := range missing {
		if _, ok := directSet[perm]; !ok {
			still = append(still, perm)
		}
	}
	if len(still) == 0 {
		return nil, nil
	}
	return still, nil
}
