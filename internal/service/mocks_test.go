package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"ghostauth/internal/domain"
	"ghostauth/internal/email"
)

type mockUserRepo struct {
	mu              sync.Mutex
	usersByID       map[string]domain.User
	usersByEmail    map[string]string
	usersByUsername map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:       make(map[string]domain.User),
		usersByEmail:    make(map[string]string),
		usersByUsername: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersByID[user.ID] = user
	m.usersByEmail[strings.ToLower(user.Email)] = user.ID
	m.usersByUsername[user.Username] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByIDLocked(id)
}

func (m *mockUserRepo) getByIDLocked(id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.getByIDLocked(id)
}

func (m *mockUserRepo) GetByEmailOrUsername(_ context.Context, emailOrUsername string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.usersByEmail[strings.ToLower(emailOrUsername)]; ok {
		return m.getByIDLocked(id)
	}
	if id, ok := m.usersByUsername[emailOrUsername]; ok {
		return m.getByIDLocked(id)
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.usersByEmail[strings.ToLower(email)]
	return ok, nil
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.usersByUsername[username]
	return ok, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return nil
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return nil
	}
	user.EmailVerified = true
	m.usersByID[id] = user
	return nil
}

type mockGhostRepo struct {
	mu     sync.Mutex
	ghosts map[string]domain.PendingRegistration
}

func newMockGhostRepo() *mockGhostRepo {
	return &mockGhostRepo{
		ghosts: make(map[string]domain.PendingRegistration),
	}
}

func (m *mockGhostRepo) Create(_ context.Context, ghost domain.PendingRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ghosts[ghost.ID] = ghost
	return nil
}

func (m *mockGhostRepo) GetByID(_ context.Context, id string) (domain.PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ghost, ok := m.ghosts[id]
	if !ok {
		return domain.PendingRegistration{}, pgx.ErrNoRows
	}
	return ghost, nil
}

func (m *mockGhostRepo) LinkToUser(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ghost, ok := m.ghosts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ghost.LinkedUserID = userID
	m.ghosts[id] = ghost
	return nil
}

func (m *mockGhostRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, ghost := range m.ghosts {
		if ghost.LinkedUserID == "" && ghost.CreatedAt.Before(cutoff) {
			delete(m.ghosts, id)
			deleted++
		}
	}
	return deleted, nil
}

type sentMail struct {
	to      string
	code    string
	purpose email.Purpose
}

type mockEmailSender struct {
	sent chan sentMail
	err  error
}

func newMockEmailSender() *mockEmailSender {
	return &mockEmailSender{sent: make(chan sentMail, 8)}
}

func (m *mockEmailSender) SendVerificationCode(_ context.Context, toEmail string, code string, purpose email.Purpose, _ time.Time) error {
	m.sent <- sentMail{to: toEmail, code: code, purpose: purpose}
	return m.err
}

func (m *mockEmailSender) waitForMail(timeout time.Duration) (sentMail, bool) {
	select {
	case mail := <-m.sent:
		return mail, true
	case <-time.After(timeout):
		return sentMail{}, false
	}
}
