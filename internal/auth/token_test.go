package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokens(t *testing.T, clock *fakeClock) *Tokens {
	t.Helper()
	tokens, err := NewTokens("test-secret", WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tokens
}

func TestIssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	token, expiresAt, err := tokens.IssueWithTTL("a@b.com", 30*time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}
	if want := clock.t.Add(30 * time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expiry %v, want %v", expiresAt, want)
	}

	subject, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "a@b.com" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestVerifyValidUntilExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	token, _, err := tokens.IssueWithTTL("a@b.com", 30*time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	// Still valid one second before the deadline.
	clock.Advance(30*time.Minute - time.Second)
	if _, err := tokens.Verify(token); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	// Rejected at exactly issued_at + lifetime.
	clock.Advance(time.Second)
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("token accepted at expiry instant")
	}

	// And stays rejected after.
	clock.Advance(time.Hour)
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("token accepted after expiry")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)

	token, _, err := tokens.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}

	// Flip a character at several positions of the signature segment.
	for _, pos := range []int{0, len(parts[2]) / 2, len(parts[2]) - 1} {
		sig := []byte(parts[2])
		if sig[pos] == 'A' {
			sig[pos] = 'B'
		} else {
			sig[pos] = 'A'
		}
		forged := parts[0] + "." + parts[1] + "." + string(sig)
		if forged == token {
			continue
		}
		if _, err := tokens.Verify(forged); err == nil {
			t.Fatalf("tampered signature accepted (pos %d)", pos)
		}
	}
}

func TestVerifyRejectsTamperedClaims(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)

	token, _, err := tokens.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	forged := parts[0] + "." + string(payload) + "." + parts[2]
	if _, err := tokens.Verify(forged); err == nil {
		t.Fatal("tampered payload accepted")
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)

	now := clock.t
	claims := jwt.RegisteredClaims{
		Issuer:    "lastshow",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := unsigned.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("token without subject accepted")
	}
}

func TestVerifyRejectsWrongSigningMethod(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)

	now := clock.t
	claims := jwt.RegisteredClaims{
		Issuer:    "lastshow",
		Subject:   "a@b.com",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	token, err := unsigned.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("HS512 token accepted")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)

	other, err := NewTokens("test-secret", WithIssuer("someone-else"), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	token, _, err := other.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tokens.Verify(token); err == nil {
		t.Fatal("token from foreign issuer accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)

	for _, raw := range []string{"", "   ", "abc", "a.b", "a.b.c.d"} {
		if _, err := tokens.Verify(raw); err == nil {
			t.Fatalf("garbage token %q accepted", raw)
		}
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokens("   "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
