package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/societyos/authhub/internal/authz"
	"github.com/societyos/authhub/internal/logging"
	"github.com/societyos/authhub/internal/models"
	"github.com/societyos/authhub/internal/repo"
	"github.com/societyos/authhub/internal/search"
)

type UserWithPermissions struct {
	ID          uint               `json:"id"`
	Email       string             `json:"email"`
	Username    string             `json:"username"`
	Role        string             `json:"role"`
	Permissions []authz.Permission `json:"permissions"`
}

// AssignRole replaces the target user's role. Only administrators reach
// this; the gate lives in the middleware, not here.
func (s *AuthService) AssignRole(ctx context.Context, userID uint, role string) error {
	l := logging.FromContext(ctx).With("svc", "auth.assign_role")

	parsed, err := authz.ParseRole(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.Repo.UpdateRole(ctx, userID, string(parsed)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		l.Error("assign_role_failed", "user_id", userID, "error", err)
		return err
	}

	if user, err := s.Repo.FindUserByID(ctx, userID); err == nil {
		s.reindex(ctx, user)
	}
	s.publish(ctx, userID, map[string]any{
		"type":    "role_assigned",
		"user_id": userID,
		"role":    string(parsed),
	})

	l.Info("role_assigned", "user_id", userID, "role", string(parsed))
	return nil
}

// ListUsers returns every user with role and direct permission grants.
func (s *AuthService) ListUsers(ctx context.Context) ([]UserWithPermissions, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserWithPermissions, 0, len(users))
	for i := range users {
		perms, err := s.Repo.PermissionsForUser(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, userView(&users[i], perms))
	}
	return out, nil
}

func (s *AuthService) GrantPermission(ctx context.Context, userID uint, permission string) error {
	perm, err := authz.ParsePermission(permission)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.Repo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.Repo.GrantPermission(ctx, userID, perm)
}

func (s *AuthService) RevokePermission(ctx context.Context, userID uint, permission string) error {
	perm, err := authz.ParsePermission(permission)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.Repo.RevokePermission(ctx, userID, perm)
}

// SearchUsers queries the directory index; search.ErrUnavailable passes
// through for the handler to map onto 503.
func (s *AuthService) SearchUsers(ctx context.Context, query string) ([]search.UserDoc, error) {
	return s.Index.Search(ctx, query)
}

func userView(u *models.User, perms []authz.Permission) UserWithPermissions {
	return UserWithPermissions{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: perms,
	}
}
