package auth

import (
	"errors"
	"fmt"
	"time"

	"iam/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"
)

var ErrInvalidToken = errors.New("invalid token")

// UserClaim and RoleClaim are the identity fragments carried by access tokens.
type UserClaim struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type RoleClaim struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// AccessClaims is the ActiveUserPayload plus registered claims. sub is the user id.
type AccessClaims struct {
	User UserClaim `json:"user"`
	Role RoleClaim `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	RefreshTokenID string `json:"refreshTokenId"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens bound to one audience and issuer.
type Signer struct {
	secret     []byte
	audience   string
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewSigner(cfg config.JWTConfig) *Signer {
	return &Signer{
		secret:     []byte(cfg.Secret),
		audience:   cfg.Audience,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

func (s *Signer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.audience},
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        ulid.Make().String(),
	}
}

func (s *Signer) SignAccess(user UserClaim, role RoleClaim) (string, error) {
	claims := AccessClaims{
		User:             user,
		Role:             role,
		RegisteredClaims: s.registered(user.ID, s.accessTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *Signer) SignRefresh(userID, refreshTokenID string) (string, error) {
	claims := RefreshClaims{
		RefreshTokenID:   refreshTokenID,
		RegisteredClaims: s.registered(userID, s.refreshTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

func (s *Signer) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, &claims.RegisteredClaims); err != nil {
		return nil, err
	}
	if claims.User.ID == "" || claims.Role.ID == "" || claims.User.ID != claims.Subject {
		return nil, fmt.Errorf("%w: incomplete identity", ErrInvalidToken)
	}
	return claims, nil
}

func (s *Signer) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(token, claims, &claims.RegisteredClaims); err != nil {
		return nil, err
	}
	if claims.RefreshTokenID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing refresh token id", ErrInvalidToken)
	}
	return claims, nil
}

func (s *Signer) parse(token string, claims jwt.Claims, registered *jwt.RegisteredClaims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	if !registered.VerifyAudience(s.audience, true) {
		return fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if !registered.VerifyIssuer(s.issuer, true) {
		return fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}
	return nil
}
