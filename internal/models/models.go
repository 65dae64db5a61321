package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`

	// sha256 hex of the currently active refresh token; nil when logged out.
	RefreshTokenHash *string `gorm:"index" json:"-"`

	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	EmailVerificationToken   *string    `gorm:"index" json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`

	IsEmailVerified bool `gorm:"default:false" json:"is_email_verified"`
}

type UserPermission struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"                     json:"id"`
	UserID     uint   `gorm:"index;not null;uniqueIndex:idx_user_perm"     json:"user_id"`
	Permission string `gorm:"not null;uniqueIndex:idx_user_perm"           json:"permission"`
}
