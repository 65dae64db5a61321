package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService([]byte("test-access-secret"), []byte("test-refresh-secret"))
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	token, exp, err := svc.IssueAccess(42, "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(AccessTTL), exp, time.Second)

	userID, role, err := svc.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "ADMIN", role)
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	token, exp, err := svc.IssueRefresh(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(RefreshTTL), exp, time.Second)

	userID, err := svc.ParseRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestParseAccess_DeterministicExpiry(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc := newTestService()
	svc.Now = func() time.Time { return base }
	token, _, err := svc.IssueAccess(1, "USER")
	require.NoError(t, err)

	// One second short of the 15 minute window: valid.
	svc.Now = func() time.Time { return base.Add(AccessTTL - time.Second) }
	_, _, err = svc.ParseAccess(token)
	assert.NoError(t, err)

	// One second past: expired, and classified as such.
	svc.Now = func() time.Time { return base.Add(AccessTTL + time.Second) }
	_, _, err = svc.ParseAccess(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParseAccess_RejectsRefreshSecret(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	// A refresh token never verifies as an access token: distinct secrets.
	refresh, _, err := svc.IssueRefresh(1)
	require.NoError(t, err)
	_, _, err = svc.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	access, _, err := svc.IssueAccess(1, "USER")
	require.NoError(t, err)
	_, err = svc.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestParseAccess_TamperedToken(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	token, _, err := svc.IssueAccess(1, "USER")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, _, err = svc.ParseAccess(tampered)
	assert.Error(t, err)
}

func TestParseAccess_Malformed(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, _, err := svc.ParseAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = svc.ParseAccess("")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFingerprint_Stable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	assert.Len(t, Fingerprint("abc"), 64)
}

func TestNewOneTimeToken(t *testing.T) {
	t.Parallel()

	first, err := NewOneTimeToken()
	require.NoError(t, err)
	second, err := NewOneTimeToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
