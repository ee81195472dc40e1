package plateauth

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestLoginTrustedHost(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine := newTestEngine(t, rdb, newMockAccountProvider(), &mockMailer{})
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	acct := createTestAccount(t, engine, "alice@example.com", "longpassword")
	if err := engine.AddTrustedHost(ctx, acct.ID, "10.0.0.1"); err != nil {
		t.Fatalf("AddTrustedHost failed: %v", err)
	}

	token, err := engine.Login(ctx, "alice@example.com", "longpassword", "")
	if err != nil {
		t.Fatalf("Login from trusted host failed: %v", err)
	}
	if len(token.Value) != 96 {
		t.Fatalf("expected 96 hex char session token, got %d chars", len(token.Value))
	}

	subject, err := engine.ValidateToken(ctx, token.Value)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if subject != acct.ID {
		t.Fatalf("token subject %q, want %q", subject, acct.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, rdb := newTestRedis(t)
	mm := &mockMailer{}
	engine := newTestEngine(t, rdb, newMockAccountProvider(), mm)
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	if _, err := engine.Login(ctx, "nonsense", "longpassword", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	_, err := engine.Login(ctx, "ghost@example.com", "longpassword", "")
	if !errors.Is(err, ErrAccountNotExists) {
		t.Fatalf("expected ErrAccountNotExists, got %v", err)
	}
	if StatusCode(err) != 409 {
		t.Fatalf("unknown login email must map to 409, got %d", StatusCode(err))
	}

	_, err = engine.Login(ctx, "alice@example.com", "wrongpassword", "")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if StatusCode(err) != 403 {
		t.Fatalf("wrong password must map to 403, got %d", StatusCode(err))
	}
	if mm.count() != 0 {
		t.Fatal("failed credential checks must not send mail")
	}
}

func TestLoginUnknownHostFlow(t *testing.T) {
	_, rdb := newTestRedis(t)
	up := newMockAccountProvider()
	mm := &mockMailer{}
	engine := newTestEngine(t, rdb, up, mm)
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	acct := createTestAccount(t, engine, "alice@example.com", "longpassword")

	_, err := engine.Login(ctx, "alice@example.com", "longpassword", "")
	if !errors.Is(err, ErrUnknownHost) {
		t.Fatalf("expected ErrUnknownHost, got %v", err)
	}
	if StatusCode(err) != 403 {
		t.Fatalf("unknown host must map to 403, got %d", StatusCode(err))
	}

	mail := mm.last(t)
	if mail.To != "alice@example.com" {
		t.Fatalf("challenge mailed to %q", mail.To)
	}
	if mail.Subject != "Confirm login." {
		t.Fatalf("unexpected subject %q", mail.Subject)
	}
	code := extractCode(t, mail.Body)
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}

	token, err := engine.Login(ctx, "alice@example.com", "longpassword", code)
	if err != nil {
		t.Fatalf("Login with code failed: %v", err)
	}
	if token == nil || token.Subject != acct.ID {
		t.Fatalf("unexpected token: %+v", token)
	}

	got, _ := engine.Account(ctx, acct.ID)
	if !slices.Contains(got.Hosts, "203.0.113.7") {
		t.Fatalf("challenge host not trusted after confirmation: %v", got.Hosts)
	}

	// The challenge is single use.
	other := WithClientIP(context.Background(), "198.51.100.9")
	if _, err := engine.Login(other, "alice@example.com", "longpassword", code); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected replay to fail with ErrInvalidCode, got %v", err)
	}
}

func TestLoginCodeMisuse(t *testing.T) {
	_, rdb := newTestRedis(t)
	mm := &mockMailer{}
	engine := newTestEngine(t, rdb, newMockAccountProvider(), mm)
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	// A code with no pending challenge behind it.
	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", "123456"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", ""); !errors.Is(err, ErrUnknownHost) {
		t.Fatal("expected challenge issuance")
	}
	code := extractCode(t, mm.last(t).Body)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", wrong); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	// A wrong guess must not burn the pending challenge.
	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", code); err != nil {
		t.Fatalf("correct code rejected after a wrong guess: %v", err)
	}
}

func TestLoginChallengeSupersession(t *testing.T) {
	_, rdb := newTestRedis(t)
	mm := &mockMailer{}
	engine := newTestEngine(t, rdb, newMockAccountProvider(), mm)
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", ""); !errors.Is(err, ErrUnknownHost) {
		t.Fatal("expected challenge issuance")
	}
	first := extractCode(t, mm.last(t).Body)

	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", ""); !errors.Is(err, ErrUnknownHost) {
		t.Fatal("expected second challenge issuance")
	}
	second := extractCode(t, mm.last(t).Body)

	if first != second {
		if _, err := engine.Login(ctx, "alice@example.com", "longpassword", first); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("superseded code must be rejected, got %v", err)
		}
	}
	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", second); err != nil {
		t.Fatalf("latest code rejected: %v", err)
	}
}

func TestLoginWithoutClientHost(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mm := &mockMailer{}
	engine := newTestEngine(t, rdb, newMockAccountProvider(), mm)
	ctx := context.Background()

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	// No host fingerprint in the context: nothing to bind a challenge to,
	// and nothing that could ever enter the trusted set.
	_, err := engine.Login(ctx, "alice@example.com", "longpassword", "")
	if !errors.Is(err, ErrNoClientHost) {
		t.Fatalf("expected ErrNoClientHost, got %v", err)
	}
	if StatusCode(err) != 400 {
		t.Fatalf("missing client host must map to 400, got %d", StatusCode(err))
	}
	if mm.count() != 0 {
		t.Fatal("no challenge mail may be sent without a host fingerprint")
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("no challenge may be stored without a host fingerprint: %v", keys)
	}

	acct, _ := engine.AccountByEmail(context.Background(), "alice@example.com")
	if len(acct.Hosts) != 0 {
		t.Fatalf("trusted set must stay empty: %v", acct.Hosts)
	}
}

func TestLoginWithoutMailer(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine := newTestEngine(t, rdb, newMockAccountProvider(), nil)
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", ""); !errors.Is(err, ErrNoMailer) {
		t.Fatalf("expected ErrNoMailer, got %v", err)
	}
}

func TestLoginMailFailureWithdrawsChallenge(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mm := &mockMailer{fail: true}
	engine := newTestEngine(t, rdb, newMockAccountProvider(), mm)
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	createTestAccount(t, engine, "alice@example.com", "longpassword")

	if _, err := engine.Login(ctx, "alice@example.com", "longpassword", ""); !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("undeliverable challenge left behind: %v", keys)
	}
}

func TestTokenLifecycle(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine := newTestEngine(t, rdb, newMockAccountProvider(), nil)
	ctx := WithClientIP(context.Background(), "10.0.0.1")

	acct := createTestAccount(t, engine, "alice@example.com", "longpassword")
	if err := engine.AddTrustedHost(ctx, acct.ID, "10.0.0.1"); err != nil {
		t.Fatalf("AddTrustedHost failed: %v", err)
	}
	token, err := engine.Login(ctx, "alice@example.com", "longpassword", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := engine.RefreshToken(ctx, token.Value)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.Value == token.Value {
		t.Fatal("refresh must rotate the token value")
	}
	if refreshed.Subject != acct.ID {
		t.Fatalf("refreshed token subject %q, want %q", refreshed.Subject, acct.ID)
	}
	if _, err := engine.ValidateToken(ctx, token.Value); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("old token must be dead after refresh, got %v", err)
	}

	if err := engine.RevokeToken(ctx, refreshed.Value); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}
	_, err = engine.ValidateToken(ctx, refreshed.Value)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if StatusCode(err) != 401 {
		t.Fatalf("invalid session token must map to 401, got %d", StatusCode(err))
	}

	// Revoking an already dead token is fine.
	if err := engine.RevokeToken(ctx, refreshed.Value); err != nil {
		t.Fatalf("repeated RevokeToken failed: %v", err)
	}
}
