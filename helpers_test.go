package streamauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/robspecs/streamauth/kv"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func newTestStore(t *testing.T) (kv.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	return kv.NewRedisStore(rdb), mr
}

type mockUserProvider struct {
	mu         sync.Mutex
	users      map[string]UserRecord // keyed by email
	nextID     int
	failUpdate bool
}

func newMockUserProvider(seed ...UserRecord) *mockUserProvider {
	p := &mockUserProvider{users: map[string]UserRecord{}}
	for _, u := range seed {
		if u.UserID == "" {
			p.nextID++
			u.UserID = fmt.Sprintf("u%d", p.nextID)
		}
		p.users[u.Email] = u
	}
	return p
}

func (p *mockUserProvider) GetByEmail(_ context.Context, email string) (UserRecord, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[email]
	return u, ok, nil
}

func (p *mockUserProvider) ExistsByEmail(_ context.Context, email string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.users[email]
	return ok, nil
}

func (p *mockUserProvider) Save(_ context.Context, user UserRecord) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if user.UserID == "" {
		p.nextID++
		user.UserID = fmt.Sprintf("u%d", p.nextID)
	}
	p.users[user.Email] = user
	return user, nil
}

func (p *mockUserProvider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failUpdate {
		return errors.New("simulated persistence failure")
	}
	for email, u := range p.users {
		if u.UserID == userID {
			u.PasswordHash = newHash
			p.users[email] = u
			return nil
		}
	}
	return errors.New("user record vanished")
}

func (p *mockUserProvider) hash(t *testing.T, email string) string {
	t.Helper()

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[email]
	if !ok {
		t.Fatalf("no user for %s", email)
	}
	return u.PasswordHash
}

type sentMail struct {
	kind  string
	email string
	body  string // code or token
}

type mockMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failOTP  bool
	failRst  bool
	failConf bool
}

func (m *mockMailer) SendOTPEmail(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOTP {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{kind: "otp", email: email, body: code})
	return nil
}

func (m *mockMailer) SendPasswordResetEmail(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failRst {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{kind: "reset", email: email, body: token})
	return nil
}

func (m *mockMailer) SendPasswordChangeConfirmationEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failConf {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{kind: "confirmation", email: email})
	return nil
}

func (m *mockMailer) last(t *testing.T) sentMail {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

// fakeHasher keeps engine tests fast; password hashing has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty password")
	}
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Verify(plaintext, encodedHash string) (bool, error) {
	return encodedHash == "hashed:"+plaintext, nil
}

type engineFixture struct {
	engine *Engine
	mr     *miniredis.Miniredis
	users  *mockUserProvider
	mailer *mockMailer
}

func newTestEngine(t *testing.T, mutate func(*Config), seed ...UserRecord) *engineFixture {
	t.Helper()

	mr, rdb := newTestRedis(t)
	users := newMockUserProvider(seed...)
	mailer := &mockMailer{}

	cfg := defaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUsers(users).
		WithMailer(mailer).
		WithHasher(fakeHasher{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &engineFixture{engine: engine, mr: mr, users: users, mailer: mailer}
}
