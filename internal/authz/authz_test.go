package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGrants map[uint][]Permission

func (g staticGrants) PermissionsForUser(_ context.Context, userID uint) ([]Permission, error) {
	return g[userID], nil
}

func TestDefaultPolicy_TotalAndNonEmpty(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	for _, role := range Roles() {
		perms := policy.RolePermissions(role)
		assert.NotEmpty(t, perms, "role %s has no permissions", role)

		seen := map[Permission]bool{}
		for _, p := range perms {
			assert.False(t, seen[p], "role %s grants %s twice", role, p)
			seen[p] = true
		}
	}
}

func TestEngine_Missing_MatchesPolicyUnionGrants(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	grants := staticGrants{}
	engine := NewEngine(policy, grants)
	ctx := context.Background()

	// Without direct grants, requirePermissions must pass exactly when the
	// role-derived set covers the requirement, across the full enumeration.
	for _, role := range Roles() {
		roleSet := map[Permission]bool{}
		for _, p := range policy.RolePermissions(role) {
			roleSet[p] = true
		}
		for _, perm := range Permissions() {
			missing, err := engine.Missing(ctx, 1, role, perm)
			require.NoError(t, err)
			if roleSet[perm] {
				assert.Empty(t, missing, "role %s should hold %s", role, perm)
			} else {
				assert.Equal(t, []Permission{perm}, missing, "role %s should miss %s", role, perm)
			}
		}
	}
}

func TestEngine_Missing_DirectGrantsLayerOnTop(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultPolicy(), staticGrants{
		7: {PermManageRoles},
	})
	ctx := context.Background()

	missing, err := engine.Missing(ctx, 7, RoleUser, PermManageRoles)
	require.NoError(t, err)
	assert.Empty(t, missing, "direct grant should satisfy the requirement")

	missing, err = engine.Missing(ctx, 8, RoleUser, PermManageRoles)
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermManageRoles}, missing)

	// AND semantics: one satisfied permission does not carry the other.
	missing, err = engine.Missing(ctx, 7, RoleUser, PermManageRoles, PermAccessAdminPanel)
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermAccessAdminPanel}, missing)
}

func TestEngine_HasRole_FlatMembership(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultPolicy(), staticGrants{})

	assert.True(t, engine.HasRole(RoleAdmin, RoleAdmin))
	assert.True(t, engine.HasRole(RoleModerator, RoleAdmin, RoleModerator))

	// No hierarchy in either direction.
	assert.False(t, engine.HasRole(RoleAdmin, RoleModerator))
	assert.False(t, engine.HasRole(RoleModerator, RoleAdmin))
	assert.False(t, engine.HasRole(RoleUser, RoleAdmin, RoleModerator))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, role := range Roles() {
		parsed, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("SUPERADMIN")
	assert.Error(t, err)
	_, err = ParseRole("admin")
	assert.Error(t, err, "role values are case-sensitive")
}

func TestParsePermission(t *testing.T) {
	t.Parallel()

	for _, perm := range Permissions() {
		parsed, err := ParsePermission(string(perm))
		require.NoError(t, err)
		assert.Equal(t, perm, parsed)
	}

	_, err := ParsePermission("LAUNCH_MISSILES")
	assert.Error(t, err)
}
