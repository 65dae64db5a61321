package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/societyos/authhub/internal/models"
)

// SetRefreshToken stores the fingerprint of a freshly minted refresh token,
// superseding whatever token was active before (new login wins).
func (r *GormRepo) SetRefreshToken(ctx context.Context, userID uint, fingerprint string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", fingerprint).Error
}

// RotateRefreshToken swaps the stored fingerprint for a new one iff the old
// one is still current. Exactly one of two concurrent rotations with the
// same presented token can win.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, userID uint, oldFingerprint, newFingerprint string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token_hash = ?", userID, oldFingerprint).
		Update("refresh_token_hash", newFingerprint)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearRefreshToken revokes the active refresh token for the user, if any.
func (r *GormRepo) ClearRefreshToken(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", nil).Error
}

func (r *GormRepo) SetResetToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_password_token":   token,
			"reset_password_expires": expires,
		}).Error
}

// ConsumeResetToken atomically writes the new password hash and clears the
// reset token, keyed on the token still being present and unexpired. The
// returned bool is false when the token was unknown, expired or already
// consumed; the caller cannot tell which, deliberately.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, token string, now time.Time, newPasswordHash string) (*models.User, bool, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("reset_password_token = ?", token).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("reset_password_token = ? AND reset_password_expires > ?", token, now).
		Updates(map[string]any{
			"password_hash":          newPasswordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &user, true, nil
}

func (r *GormRepo) SetVerificationToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"email_verification_token":   token,
			"email_verification_expires": expires,
		}).Error
}

// ConsumeVerificationToken marks the email verified and clears the token in
// one conditional update; same single-use semantics as ConsumeResetToken.
func (r *GormRepo) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*models.User, bool, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("email_verification_token = ?", token).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email_verification_token = ? AND email_verification_expires > ?", token, now).
		Updates(map[string]any{
			"is_email_verified":          true,
			"email_verification_token":   nil,
			"email_verification_expires": nil,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &user, true, nil
}
