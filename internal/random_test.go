package internal

import (
	"strconv"
	"testing"
)

func TestNewAccountID(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 64; i++ {
		id := NewAccountID()
		if len(id) != 32 {
			t.Fatalf("expected 32 hex chars, got %q", id)
		}
		for _, r := range id {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				t.Fatalf("non hex rune %q in %q", r, id)
			}
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestTokenLengths(t *testing.T) {
	session, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	if len(session) != 96 {
		t.Fatalf("session token has %d chars, want 96", len(session))
	}

	change, err := NewChangeToken()
	if err != nil {
		t.Fatalf("NewChangeToken failed: %v", err)
	}
	if len(change) != 64 {
		t.Fatalf("change token has %d chars, want 64", len(change))
	}
}

func TestNewCodeRange(t *testing.T) {
	for _, digits := range []int{6, 8, 10} {
		low := int64(1)
		for i := 1; i < digits; i++ {
			low *= 10
		}
		for i := 0; i < 200; i++ {
			code, err := NewCode(digits)
			if err != nil {
				t.Fatalf("NewCode(%d) failed: %v", digits, err)
			}
			if len(code) != digits {
				t.Fatalf("NewCode(%d) produced %q", digits, code)
			}
			n, err := strconv.ParseInt(code, 10, 64)
			if err != nil {
				t.Fatalf("non numeric code %q", code)
			}
			if n < low || n >= low*10 {
				t.Fatalf("code %d out of range for %d digits", n, digits)
			}
		}
	}
}

func TestNewCodeRejectsBadDigitCounts(t *testing.T) {
	for _, digits := range []int{0, 5, 11} {
		if _, err := NewCode(digits); err == nil {
			t.Fatalf("expected error for %d digits", digits)
		}
	}
}

func TestHashSecretIsDeterministic(t *testing.T) {
	if HashSecret("abc") != HashSecret("abc") {
		t.Fatal("same input must hash to the same digest")
	}
	if HashSecret("abc") == HashSecret("abd") {
		t.Fatal("different inputs must not collide")
	}
}
