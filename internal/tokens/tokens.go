// Package tokens issues and verifies the bearer credentials: short-lived
// access JWTs, long-lived refresh JWTs signed with a separate secret, and
// the random one-time tokens used by the reset and verification flows.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
)

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

type Service struct {
	AccessSecret  []byte
	RefreshSecret []byte

	// Now is the clock used for both issuance and verification; tests
	// override it, production leaves it nil for time.Now.
	Now func() time.Time
}

func NewService(accessSecret, refreshSecret []byte) *Service {
	return &Service{AccessSecret: accessSecret, RefreshSecret: refreshSecret}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) IssueAccess(userID uint, role string) (string, time.Time, error) {
	exp := s.now().Add(AccessTTL)
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.AccessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, exp, nil
}

func (s *Service) IssueRefresh(userID uint) (string, time.Time, error) {
	exp := s.now().Add(RefreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return token, exp, nil
}

// ParseAccess verifies an access token and returns the subject's user id
// and role. Failures map onto ErrExpired, ErrSignatureInvalid or
// ErrMalformed.
func (s *Service) ParseAccess(tokenStr string) (uint, string, error) {
	var claims AccessClaims
	if err := s.parse(tokenStr, &claims, s.AccessSecret); err != nil {
		return 0, "", err
	}
	id, err := subjectID(claims.Subject)
	if err != nil {
		return 0, "", err
	}
	return id, claims.Role, nil
}

// ParseRefresh verifies a refresh token cryptographically. Whether the token
// is still the active one for the user is the store's call, not ours.
func (s *Service) ParseRefresh(tokenStr string) (uint, error) {
	var claims RefreshClaims
	if err := s.parse(tokenStr, &claims, s.RefreshSecret); err != nil {
		return 0, err
	}
	return subjectID(claims.Subject)
}

func (s *Service) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	switch {
	case err == nil && tkn.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	default:
		return ErrMalformed
	}
}

func subjectID(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return uint(id), nil
}

// Fingerprint is the sha256 hex digest under which refresh tokens are
// persisted; the raw JWT never touches the database.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewOneTimeToken returns 32 random bytes hex encoded, the format shared by
// the password-reset and email-verification flows.
func NewOneTimeToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
