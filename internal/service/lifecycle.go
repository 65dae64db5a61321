package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/societyos/authhub/internal/hash"
	"github.com/societyos/authhub/internal/logging"
	"github.com/societyos/authhub/internal/repo"
	"github.com/societyos/authhub/internal/tokens"
)

// ForgotPassword generates a one-hour reset token for the account and mails
// a reset link. A second request overwrites the outstanding token, so at
// most one reset token is live per user. Unknown emails are disclosed as
// not-found on this endpoint.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	token, err := tokens.NewOneTimeToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(resetTokenTTL)

	if err := s.Repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		l.Error("forgot_password_failed", "reason", "store", "error", err)
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.FrontendURL, token)
	if err := s.Notifier.Send(ctx, user.Email, "Reset your password",
		"Please click this link to reset your password: "+resetURL); err != nil {
		// Token already persisted and still valid; surface nothing.
		l.Error("reset_mail_failed", "user_id", user.ID, "error", err)
	}

	l.Info("reset_token_issued", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token: the new hash is written and the
// token cleared in one conditional update, so a replay of the same token
// fails. Expired, unknown and already-used tokens are indistinguishable to
// the caller.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	pwHash, err := hash.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}

	user, consumed, err := s.Repo.ConsumeResetToken(ctx, token, s.now(), pwHash)
	if err != nil {
		l.Error("reset_password_failed", "reason", "store", "error", err)
		return err
	}
	if !consumed {
		return ErrInvalidOrExpiredToken
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "password_reset",
		"user_id": user.ID,
	})

	l.Info("password_reset", "user_id", user.ID)
	return nil
}

// ChangePassword is the authenticated variant: no token, but the current
// password must verify before the new hash is written.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password")

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	ok, err := hash.CheckPassword(user.PasswordHash, currentPassword)
	if err != nil {
		l.Error("change_password_failed", "reason", "digest", "error", err)
		return err
	}
	if !ok {
		return ErrInvalidCredential
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	pwHash, err := hash.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.Repo.UpdatePasswordHash(ctx, user.ID, pwHash); err != nil {
		l.Error("change_password_failed", "reason", "store", "error", err)
		return err
	}

	l.Info("password_changed", "user_id", user.ID)
	return nil
}

// VerifyEmail consumes a verification token within its 24h window, setting
// the verified flag and clearing the token atomically.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "auth.verify_email")

	user, consumed, err := s.Repo.ConsumeVerificationToken(ctx, token, s.now())
	if err != nil {
		l.Error("verify_email_failed", "reason", "store", "error", err)
		return err
	}
	if !consumed {
		return ErrInvalidOrExpiredToken
	}

	l.Info("email_verified", "user_id", user.ID)
	return nil
}
