package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestSession_IssueAndParse(t *testing.T) {
	m := NewSessionManager(secret, "company-site", time.Hour)
	raw, issued, err := m.Issue("u1", "admin@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.UserID != "u1" || got.Email != "admin@example.com" || got.SessionID != issued.SessionID {
		t.Fatalf("claims mismatch: %+v vs %+v", got, issued)
	}
	if d := got.ExpiresAt.Sub(got.IssuedAt); d != time.Hour {
		t.Fatalf("ttl = %v; want 1h", d)
	}
}

func TestSession_RejectsBadTokens(t *testing.T) {
	m := NewSessionManager(secret, "company-site", time.Hour)
	raw, _, _ := m.Issue("u1", "a@b.c")

	other := NewSessionManager("ffffffffffffffffffffffffffffffff", "company-site", time.Hour)
	wrongIssuer := NewSessionManager(secret, "someone-else", time.Hour)

	for name, fn := range map[string]func() error{
		"empty":        func() error { _, err := m.Parse(""); return err },
		"garbage":      func() error { _, err := m.Parse("not.a.jwt"); return err },
		"wrong secret": func() error { _, err := other.Parse(raw); return err },
		"wrong issuer": func() error { _, err := wrongIssuer.Parse(raw); return err },
		"tampered":     func() error { _, err := m.Parse(raw + "x"); return err },
	} {
		if err := fn(); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("%s: expected ErrInvalidSession, got %v", name, err)
		}
	}
}

func TestSession_Expired(t *testing.T) {
	m := NewSessionManager(secret, "company-site", time.Minute)
	base := time.Now()
	m.now = func() time.Time { return base }
	raw, _, err := m.Issue("u1", "a@b.c")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := m.Parse(raw); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasherWithParams(&argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	enc, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	ok, err := h.Verify("correct horse", enc)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	ok, err = h.Verify("wrong", enc)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
	if _, err := h.Verify("x", "not-a-hash"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
	var nilHasher *Hasher
	if _, err := nilHasher.Hash("x"); err == nil {
		t.Fatalf("expected error for nil hasher")
	}
}
