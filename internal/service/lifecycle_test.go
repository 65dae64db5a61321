package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForgotPassword(t *testing.T) {
	t.Parallel()
	svc, mail := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")

	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	sent := mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "reset-password?token=")

	user, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.ResetPasswordToken)
	assert.Contains(t, sent[0].Body, *user.ResetPasswordToken)
	require.NotNil(t, user.ResetPasswordExpires)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *user.ResetPasswordExpires, time.Minute)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForgotPassword_MailFailureKeepsToken(t *testing.T) {
	t.Parallel()
	svc, mail := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")
	mail.fail = errors.New("smtp down")

	// Delivery failure is not a lifecycle failure.
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	user, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.ResetPasswordToken)

	require.NoError(t, svc.ResetPassword(ctx, *user.ResetPasswordToken, "N3wPassw0rd!"))
}

func TestResetPassword_SingleUse(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	user, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	token := *user.ResetPasswordToken

	require.NoError(t, svc.ResetPassword(ctx, token, "N3wPassw0rd!"))

	_, err = svc.Login(ctx, "a@x.com", "N3wPassw0rd!")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "a@x.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	// Replaying the consumed token is rejected, not crashed.
	err = svc.ResetPassword(ctx, token, "An0ther!Pass")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestResetPassword_Expired(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	user, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	token := *user.ResetPasswordToken

	// Jump past the one hour window.
	svc.Now = func() time.Time { return time.Now().Add(time.Hour + time.Minute) }

	err = svc.ResetPassword(ctx, token, "N3wPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// No mutation happened: the old password still verifies.
	svc.Now = nil
	_, err = svc.Login(ctx, "a@x.com", "Passw0rd!")
	require.NoError(t, err)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	err := svc.ResetPassword(context.Background(), strings.Repeat("ab", 32), "N3wPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestForgotPassword_OverwritesOutstandingToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")

	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	user, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	first := *user.ResetPasswordToken

	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	user, err = svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	second := *user.ResetPasswordToken
	require.NotEqual(t, first, second)

	// Only the latest token is live.
	assert.ErrorIs(t, svc.ResetPassword(ctx, first, "N3wPassw0rd!"), ErrInvalidOrExpiredToken)
	require.NoError(t, svc.ResetPassword(ctx, second, "N3wPassw0rd!"))
}

func TestResetPassword_WeakPassword(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	user, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, *user.ResetPasswordToken, "weak")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")

	err := svc.ChangePassword(ctx, user.ID, "wrong-current", "N3wPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "Passw0rd!", "N3wPassw0rd!"))

	_, err = svc.Login(ctx, "a@x.com", "N3wPassw0rd!")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "a@x.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyEmail_Flow(t *testing.T) {
	t.Parallel()
	svc, mail := newTestService(t)
	svc.RequireVerified = true
	ctx := context.Background()

	user := mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")
	assert.False(t, user.IsEmailVerified)

	sent := mail.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "verify-email?token=")

	// Unverified accounts cannot log in under this policy.
	_, err := svc.Login(ctx, "a@x.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	stored, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerificationToken)
	token := *stored.EmailVerificationToken

	require.NoError(t, svc.VerifyEmail(ctx, token))

	_, err = svc.Login(ctx, "a@x.com", "Passw0rd!")
	require.NoError(t, err)

	// Single use.
	err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_Expired(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	svc.RequireVerified = true
	ctx := context.Background()

	mustRegister(t, svc, "a@x.com", "alice", "Passw0rd!", "")

	stored, err := svc.Repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	token := *stored.EmailVerificationToken

	svc.Now = func() time.Time { return time.Now().Add(24*time.Hour + time.Minute) }
	err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
