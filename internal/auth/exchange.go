package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"iam/internal/models"
	"iam/internal/repository"
)

const exchangeTokenBytes = 32

// ExchangeIssuer hands out the one-family-use secrets that let a multi-role
// user pick a role. Only the SHA-256 of a secret is ever persisted.
type ExchangeIssuer struct {
	repo   VerificationRepository
	now    func() time.Time
	random io.Reader
}

func NewExchangeIssuer(repo VerificationRepository) *ExchangeIssuer {
	return &ExchangeIssuer{repo: repo, now: time.Now, random: rand.Reader}
}

func hashExchangeToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func (x *ExchangeIssuer) Issue(ctx context.Context, userID string, ttl time.Duration) (string, time.Time, error) {
	buf := make([]byte, exchangeTokenBytes)
	if _, err := io.ReadFull(x.random, buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate exchange token: %w", err)
	}
	plaintext := hex.EncodeToString(buf)
	expiresAt := x.now().Add(ttl)

	record := &models.Verification{
		Value:     hashExchangeToken(plaintext),
		Scope:     models.VerificationScopeSelectRole,
		UserID:    userID,
		ExpiredAt: expiresAt,
	}
	if err := x.repo.Create(ctx, record); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to persist exchange token: %w", err)
	}
	return plaintext, expiresAt, nil
}

// Verify returns the owning user id of a live token. It never consumes the token.
func (x *ExchangeIssuer) Verify(ctx context.Context, plaintext string) (string, bool, error) {
	if plaintext == "" {
		return "", false, nil
	}
	record, err := x.repo.FindValid(ctx, hashExchangeToken(plaintext), models.VerificationScopeSelectRole, x.now())
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up exchange token: %w", err)
	}
	return record.UserID, true, nil
}

// Consume deletes a live token and reports whether this caller removed it.
// Of several concurrent callers holding the same token only one wins.
func (x *ExchangeIssuer) Consume(ctx context.Context, plaintext string) (bool, error) {
	if plaintext == "" {
		return false, nil
	}
	n, err := x.repo.DeleteValid(ctx, hashExchangeToken(plaintext), models.VerificationScopeSelectRole, x.now())
	if err != nil {
		return false, fmt.Errorf("failed to consume exchange token: %w", err)
	}
	return n == 1, nil
}

// Revoke burns every outstanding select-role token of the user.
func (x *ExchangeIssuer) Revoke(ctx context.Context, userID string) error {
	if _, err := x.repo.DeleteByUser(ctx, userID, models.VerificationScopeSelectRole); err != nil {
		return fmt.Errorf("failed to revoke exchange tokens: %w", err)
	}
	return nil
}

func (x *ExchangeIssuer) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := x.repo.DeleteExpired(ctx, x.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired exchange tokens: %w", err)
	}
	return n, nil
}
