package plateauth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
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

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.SaltLength = 16
	cfg.Password.KeyLength = 16
	return cfg
}

type mockAccountProvider struct {
	mu       sync.Mutex
	accounts map[string]Account
	emails   map[string]string

	failWrites bool
}

func newMockAccountProvider() *mockAccountProvider {
	return &mockAccountProvider{
		accounts: map[string]Account{},
		emails:   map[string]string{},
	}
}

func cloneAccount(a Account) Account {
	out := a
	out.Hosts = append([]string(nil), a.Hosts...)
	out.Properties = map[string]string{}
	for k, v := range a.Properties {
		out.Properties[k] = v
	}
	return out
}

func (p *mockAccountProvider) CreateAccount(_ context.Context, input CreateAccountInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWrites {
		return errors.New("write failed")
	}
	p.accounts[input.ID] = Account{
		ID:           input.ID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Confirmed:    input.Confirmed,
		PasswordHash: input.PasswordHash,
		Properties:   map[string]string{},
	}
	p.emails[input.Email] = input.ID
	return nil
}

func (p *mockAccountProvider) AccountByID(_ context.Context, id string) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[id]
	if !ok {
		return Account{}, errors.New("no such account")
	}
	return cloneAccount(acct), nil
}

func (p *mockAccountProvider) AccountByEmail(_ context.Context, email string) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.emails[email]
	if !ok {
		return Account{}, errors.New("no such email")
	}
	return cloneAccount(p.accounts[id]), nil
}

func (p *mockAccountProvider) update(id string, fn func(*Account)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWrites {
		return errors.New("write failed")
	}
	acct, ok := p.accounts[id]
	if !ok {
		return errors.New("no such account")
	}
	fn(&acct)
	p.accounts[id] = acct
	return nil
}

func (p *mockAccountProvider) UpdateEmail(_ context.Context, id, email string) error {
	return p.update(id, func(a *Account) {
		delete(p.emails, a.Email)
		a.Email = email
		p.emails[email] = id
	})
}

func (p *mockAccountProvider) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return p.update(id, func(a *Account) { a.PasswordHash = hash })
}

func (p *mockAccountProvider) UpdateConfirmed(_ context.Context, id string, confirmed bool) error {
	return p.update(id, func(a *Account) { a.Confirmed = confirmed })
}

func (p *mockAccountProvider) UpdateHosts(_ context.Context, id string, hosts []string) error {
	return p.update(id, func(a *Account) { a.Hosts = append([]string(nil), hosts...) })
}

func (p *mockAccountProvider) SetProperty(_ context.Context, id, name, value string) error {
	return p.update(id, func(a *Account) { a.Properties[name] = value })
}

func (p *mockAccountProvider) ClearProperty(_ context.Context, id, name string) error {
	return p.update(id, func(a *Account) { delete(a.Properties, name) })
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mockMailer struct {
	mu    sync.Mutex
	mails []sentMail
	fail  bool
}

func (m *mockMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.mails = append(m.mails, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *mockMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.mails) == 0 {
		t.Fatal("expected at least one delivered mail")
	}
	return m.mails[len(m.mails)-1]
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mails)
}

var (
	codeBodyPattern  = regexp.MustCompile(`<strong style='font-size: large'>(\d+)</strong>`)
	tokenLinkPattern = regexp.MustCompile(`\?token=([0-9a-f]+)'`)
)

func extractCode(t *testing.T, body string) string {
	t.Helper()
	match := codeBodyPattern.FindStringSubmatch(body)
	if match == nil {
		t.Fatalf("no confirmation code in mail body: %q", body)
	}
	return match[1]
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	match := tokenLinkPattern.FindStringSubmatch(body)
	if match == nil {
		t.Fatalf("no token link in mail body: %q", body)
	}
	return match[1]
}

func newTestEngine(t *testing.T, rdb *redis.Client, up AccountProvider, m Mailer) *Engine {
	t.Helper()

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithAccounts(up)
	if m != nil {
		b = b.WithMailer(m)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

func createTestAccount(t *testing.T, engine *Engine, email, pass string) *Account {
	t.Helper()

	acct, err := engine.CreateAccount(context.Background(), CreateAccountRequest{
		FirstName: "Alice",
		LastName:  "Archer",
		Email:     email,
		Password:  pass,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return acct
}

func TestBuilderValidation(t *testing.T) {
	_, rdb := newTestRedis(t)

	if _, err := New().WithConfig(testConfig()).WithAccounts(newMockAccountProvider()).Build(); err == nil {
		t.Fatal("expected Build to fail without redis client")
	}
	if _, err := New().WithConfig(testConfig()).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected Build to fail without account provider")
	}

	bad := testConfig()
	bad.Session.TokenTTL = 0
	if _, err := New().WithConfig(bad).WithRedis(rdb).WithAccounts(newMockAccountProvider()).Build(); err == nil {
		t.Fatal("expected Build to reject zero session TTL")
	}

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithAccounts(newMockAccountProvider())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build on the same builder to fail")
	}
}

func TestMetricsSnapshotCounts(t *testing.T) {
	_, rdb := newTestRedis(t)
	up := newMockAccountProvider()

	engine, err := New().WithConfig(testConfig()).WithRedis(rdb).WithAccounts(up).WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricAccountCreated] != 1 {
		t.Fatalf("expected 1 account creation, got %d", snap.Counters[MetricAccountCreated])
	}
}
