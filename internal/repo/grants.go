package repo

import (
	"context"

	"github.com/societyos/authhub/internal/authz"
	"github.com/societyos/authhub/internal/models"
)

// PermissionsForUser returns the direct grants for a user; it implements
// authz.GrantSource.
func (r *GormRepo) PermissionsForUser(ctx context.Context, userID uint) ([]authz.Permission, error) {
	var rows []models.UserPermission
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	perms := make([]authz.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, authz.Permission(row.Permission))
	}
	return perms, nil
}

func (r *GormRepo) GrantPermission(ctx context.Context, userID uint, perm authz.Permission) error {
	row := models.UserPermission{UserID: userID, Permission: string(perm)}
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND permission = ?", userID, string(perm)).
		FirstOrCreate(&row).Error
}

func (r *GormRepo) RevokePermission(ctx context.Context, userID uint, perm authz.Permission) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND permission = ?", userID, string(perm)).
		Delete(&models.UserPermission{}).Error
}
