// Package service orchestrates the credential lifecycle: registration,
// login, refresh rotation, logout and the password/email flows. Handlers
// stay thin; every rule lives here or lower.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/societyos/authhub/internal/authz"
	"github.com/societyos/authhub/internal/events"
	"github.com/societyos/authhub/internal/hash"
	"github.com/societyos/authhub/internal/logging"
	"github.com/societyos/authhub/internal/mailer"
	"github.com/societyos/authhub/internal/models"
	"github.com/societyos/authhub/internal/repo"
	"github.com/societyos/authhub/internal/search"
	"github.com/societyos/authhub/internal/tokens"
)

const (
	resetTokenTTL  = time.Hour
	verifyTokenTTL = 24 * time.Hour
)

type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Service
	Notifier mailer.Notifier
	Events   *events.Producer
	Index    *search.Index

	BcryptCost      int
	RequireVerified bool
	FrontendURL     string

	// Now overrides the clock in tests; nil means time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	UserID       uint
}

// Register creates a user with a hashed password and the default USER role
// unless an explicit valid role is supplied. Depending on deployment policy
// the account is either born verified or gets a 24h verification token
// delivered out of band.
func (s *AuthService) Register(ctx context.Context, email, username, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	userRole := authz.RoleUser
	if role != "" {
		parsed, err := authz.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		userRole = parsed
	}

	pwHash, err := hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		l.Error("register_failed", "reason", "hash", "error", err)
		return nil, err
	}

	user := models.User{
		Email:           email,
		Username:        username,
		PasswordHash:    pwHash,
		Role:            string(userRole),
		IsEmailVerified: !s.RequireVerified,
	}

	var verifyToken string
	if s.RequireVerified {
		verifyToken, err = tokens.NewOneTimeToken()
		if err != nil {
			return nil, err
		}
		expires := s.now().Add(verifyTokenTTL)
		user.EmailVerificationToken = &verifyToken
		user.EmailVerificationExpires = &expires
	}

	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		l.Error("register_failed", "reason", "store", "error", err)
		return nil, err
	}

	if s.RequireVerified {
		verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.FrontendURL, verifyToken)
		if err := s.Notifier.Send(ctx, user.Email, "Verify your email",
			"Please click this link to verify your email: "+verifyURL); err != nil {
			// The token stays valid; delivery is retried by the user
			// asking for a new mail, not by us.
			l.Error("verification_mail_failed", "user_id", user.ID, "error", err)
		}
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	s.reindex(ctx, &user)

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// Login verifies the password and mints a fresh access+refresh pair. The
// refresh fingerprint is persisted on the user row, superseding any
// previously active session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	ok, err := hash.CheckPassword(user.PasswordHash, password)
	if err != nil {
		l.Error("login_failed", "reason", "digest", "error", err)
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredential
	}

	if s.RequireVerified && !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	accessToken, accessExp, err := s.Tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.Tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SetRefreshToken(ctx, user.ID, tokens.Fingerprint(refreshToken)); err != nil {
		l.Error("login_failed", "reason", "persist_refresh", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

// Refresh rotates the session: the presented refresh token must verify
// cryptographically and still be the one stored for the user, in which case
// it is atomically swapped for a new one and a new access token is minted.
// A stale or superseded token loses, even before its nominal expiry.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	userID, err := s.Tokens.ParseRefresh(presented)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	newRefresh, refreshExp, err := s.Tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	won, err := s.Repo.RotateRefreshToken(ctx, user.ID,
		tokens.Fingerprint(presented), tokens.Fingerprint(newRefresh))
	if err != nil {
		l.Error("refresh_failed", "reason", "rotate", "error", err)
		return nil, err
	}
	if !won {
		return nil, ErrInvalidOrExpiredToken
	}

	accessToken, accessExp, err := s.Tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		UserID:       user.ID,
	}, nil
}

// Logout revokes the active refresh token; every outstanding refresh token
// for the user becomes permanently unusable.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if err := s.Repo.ClearRefreshToken(ctx, userID); err != nil {
		l.Error("logout_failed", "user_id", userID, "error", err)
		return err
	}
	l.Info("logout_successful", "user_id", userID)
	return nil
}

func (s *AuthService) publish(ctx context.Context, userID uint, event map[string]any) {
	if err := s.Events.Publish(ctx, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "user_id", userID, "error", err)
	}
}

func (s *AuthService) reindex(ctx context.Context, user *models.User) {
	err := s.Index.IndexUser(ctx, search.UserDoc{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil && !errors.Is(err, search.ErrUnavailable) {
		logging.FromContext(ctx).Error("user_index_failed", "user_id", user.ID, "error", err)
	}
}
