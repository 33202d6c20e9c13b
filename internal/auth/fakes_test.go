// AngelaMos | 2026
// fakes_test.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/mail"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]*UserInfo
	touched map[string]int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:    make(map[string]*UserInfo),
		touched: make(map[string]int),
	}
}

func (m *memoryUsers) find(match func(*UserInfo) bool) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	return m.find(func(u *UserInfo) bool { return u.ID == id })
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	return m.find(func(u *UserInfo) bool { return u.Email == email })
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*UserInfo, error) {
	return m.find(func(u *UserInfo) bool { return u.Username == username })
}

func (m *memoryUsers) Create(_ context.Context, a NewAccount) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if u.Email == a.Email || u.Username == a.Username {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	spec := permission.DefaultRole()
	if a.Administrator {
		spec = permission.Roles[len(permission.Roles)-1]
	}

	u := &UserInfo{
		ID:           uuid.New().String(),
		Email:        a.Email,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Permissions:  spec.Permissions,
	}
	m.byID[u.ID] = u

	c := *u
	return &c, nil
}

func (m *memoryUsers) update(id string, fn func(*UserInfo) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	return fn(u)
}

func (m *memoryUsers) Confirm(_ context.Context, id string) error {
	return m.update(id, func(u *UserInfo) error {
		u.Confirmed = true
		return nil
	})
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return m.update(id, func(u *UserInfo) error {
		u.PasswordHash = hash
		return nil
	})
}

func (m *memoryUsers) UpdateEmail(_ context.Context, id, email string) error {
	m.mu.Lock()
	for _, u := range m.byID {
		if u.Email == email {
			m.mu.Unlock()
			return fmt.Errorf("update email: %w", core.ErrDuplicateKey)
		}
	}
	m.mu.Unlock()

	return m.update(id, func(u *UserInfo) error {
		u.Email = email
		return nil
	})
}

func (m *memoryUsers) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[id]++
	return nil
}

type memoryMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *memoryMailer) Enqueue(msg mail.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return true
}

func (m *memoryMailer) To(addr string) []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []mail.Message
	for _, msg := range m.sent {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}

type testEnv struct {
	svc    *Service
	users  *memoryUsers
	mailer *memoryMailer
	tokens *TokenManager
	clock  *fakeClock
	hasher *core.PasswordHasher
}

const testAdminEmail = "admin@example.com"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, clock := newTestTokens(t, "hard-to-guess-string-1234")

	hasher, err := core.NewPasswordHasher(config.PasswordConfig{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
	})
	require.NoError(t, err)

	users := newMemoryUsers()
	mailer := &memoryMailer{}

	svc := NewService(tokens, hasher, users, mailer, Config{
		Token: config.TokenConfig{
			AuthExpire:        time.Hour,
			ConfirmExpire:     time.Hour,
			ResetExpire:       time.Hour,
			ChangeEmailExpire: time.Hour,
		},
		AdminEmail: testAdminEmail,
	})

	return &testEnv{
		svc:    svc,
		users:  users,
		mailer: mailer,
		tokens: tokens,
		clock:  clock,
		hasher: hasher,
	}
}

func (e *testEnv) register(t *testing.T, username, email, password string) *UserInfo {
	t.Helper()

	u, err := e.svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) confirmed(t *testing.T, username, email, password string) *UserInfo {
	t.Helper()

	u := e.register(t, username, email, password)
	require.NoError(t, e.users.Confirm(context.Background(), u.ID))
	u.Confirmed = true
	return u
}
