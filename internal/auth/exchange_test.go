package auth

import (
	"context"
	"testing"
	"time"

	"iam/internal/models"
)

func TestExchangeIssuerStoresOnlyHash(t *testing.T) {
	db := newFakeDB()
	x := NewExchangeIssuer(db)

	token, expiresAt, err := x.Issue(context.Background(), "u1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Fatalf("unexpected expiry %s", expiresAt)
	}

	db.mu.Lock()
	for value, v := range db.verifications {
		if value == token {
			t.Fatal("plaintext token persisted")
		}
		if value != hashExchangeToken(token) || v.Scope != models.VerificationScopeSelectRole {
			t.Fatalf("unexpected record %+v", v)
		}
	}
	db.mu.Unlock()

	userID, ok, err := x.Verify(context.Background(), token)
	if err != nil || !ok || userID != "u1" {
		t.Fatalf("Verify: user=%q ok=%v err=%v", userID, ok, err)
	}
	// verification has no side effects
	if _, ok, _ := x.Verify(context.Background(), token); !ok {
		t.Fatal("second verify should still succeed")
	}
}

func TestExchangeIssuerExpiryAndPurge(t *testing.T) {
	db := newFakeDB()
	x := NewExchangeIssuer(db)
	now := time.Now()
	x.now = func() time.Time { return now }

	token, _, err := x.Issue(context.Background(), "u1", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := x.Issue(context.Background(), "u2", time.Hour); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := x.Verify(context.Background(), token); ok {
		t.Fatal("expired token verified")
	}

	n, err := x.PurgeExpired(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpired: n=%d err=%v", n, err)
	}
}

func TestExchangeIssuerConsumeOnce(t *testing.T) {
	db := newFakeDB()
	x := NewExchangeIssuer(db)

	token, _, err := x.Issue(context.Background(), "u1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	won, err := x.Consume(context.Background(), token)
	if err != nil || !won {
		t.Fatalf("Consume: won=%v err=%v", won, err)
	}
	if won, _ := x.Consume(context.Background(), token); won {
		t.Fatal("token consumed twice")
	}
	if _, ok, _ := x.Verify(context.Background(), token); ok {
		t.Fatal("consumed token still verifies")
	}
	if won, _ := x.Consume(context.Background(), ""); won {
		t.Fatal("empty token consumed")
	}
}

func TestExchangeIssuerRevoke(t *testing.T) {
	db := newFakeDB()
	x := NewExchangeIssuer(db)

	a, _, _ := x.Issue(context.Background(), "u1", time.Hour)
	b, _, _ := x.Issue(context.Background(), "u1", time.Hour)
	other, _, _ := x.Issue(context.Background(), "u2", time.Hour)

	if err := x.Revoke(context.Background(), "u1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	for _, tok := range []string{a, b} {
		if _, ok, _ := x.Verify(context.Background(), tok); ok {
			t.Fatal("revoked token verified")
		}
	}
	if _, ok, _ := x.Verify(context.Background(), other); !ok {
		t.Fatal("another user's token must survive")
	}
}

func TestExchangeVerifyEmpty(t *testing.T) {
	x := NewExchangeIssuer(newFakeDB())
	if _, ok, err := x.Verify(context.Background(), ""); ok || err != nil {
		t.Fatalf("empty token: ok=%v err=%v", ok, err)
	}
}
