package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/societyos/authhub/internal/models"
	"github.com/societyos/authhub/internal/repo"
	"github.com/societyos/authhub/internal/tokens"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recorderMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (m *recorderMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recorderMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func newTestService(t *testing.T) (*AuthService, *recorderMailer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.UserPermission{}))

	mail := &recorderMailer{}
	svc := &AuthService{
		Repo:        repo.New(db),
		Tokens:      tokens.NewService([]byte("test-access-secret"), []byte("test-refresh-secret")),
		Notifier:    mail,
		BcryptCost:  bcrypt.MinCost,
		FrontendURL: "http://localhost:3000",
	}
	return svc, mail
}

func mustRegister(t *testing.T, svc *AuthService, email, username, password, role string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), email, username, password, role)
	require.NoError(t, err)
	return user
}
