package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societyos/authhub/internal/authz"
)

func TestAssignRole(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")

	require.NoError(t, svc.AssignRole(ctx, user.ID, "ADMIN"))

	stored, err := svc.Repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", stored.Role)

	assert.ErrorIs(t, svc.AssignRole(ctx, user.ID, "OVERLORD"), ErrValidation)
	assert.ErrorIs(t, svc.AssignRole(ctx, 9999, "ADMIN"), ErrNotFound)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice := mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")
	mustRegister(t, svc, "b@x.com", "bob", "Passw0rd!", "MODERATOR")
	require.NoError(t, svc.GrantPermission(ctx, alice.ID, "MANAGE_ROLES"))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, []authz.Permission{authz.PermManageRoles}, users[0].Permissions)
	assert.Equal(t, "MODERATOR", users[1].Role)
	assert.Empty(t, users[1].Permissions)
}

func TestGrantPermission(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")

	assert.ErrorIs(t, svc.GrantPermission(ctx, user.ID, "FLY"), ErrValidation)
	assert.ErrorIs(t, svc.GrantPermission(ctx, 9999, "MANAGE_ROLES"), ErrNotFound)

	require.NoError(t, svc.GrantPermission(ctx, user.ID, "MANAGE_ROLES"))
	// Granting twice is idempotent.
	require.NoError(t, svc.GrantPermission(ctx, user.ID, "MANAGE_ROLES"))

	engine := authz.NewEngine(authz.DefaultPolicy(), svc.Repo)
	missing, err := engine.Missing(ctx, user.ID, authz.RoleUser, authz.PermManageRoles)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, svc.RevokePermission(ctx, user.ID, "MANAGE_ROLES"))
	missing, err = engine.Missing(ctx, user.ID, authz.RoleUser, authz.PermManageRoles)
	require.NoError(t, err)
	assert.Equal(t, []authz.Permission{authz.PermManageRoles}, missing)
}
