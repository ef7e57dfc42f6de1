package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"iam/internal/errs"
	"iam/internal/models"
	"iam/internal/repository"
	console "iam/internal/utils/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var log = console.New("AUTH")

const (
	MsgEmailExists          = "Email already exists"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgInvalidExchangeToken = "ExchangeToken value is invalid or expired"
	MsgInvalidRoleID        = "RoleId value is invalid"
	MsgInvalidRefreshToken  = "Invalid refresh token value"
	MsgInvalidImage         = "image must be an http or https URL"
)

// Event names published by the engine.
const (
	EventUserSignedUp         = "user.signed_up"
	EventUserSignedIn         = "user.signed_in"
	EventRoleSelected         = "auth.role_selected"
	EventTokensRefreshed      = "auth.tokens_refreshed"
	EventRefreshReuseDetected = "auth.refresh_reuse_detected"
	EventSignedOut            = "auth.signed_out"
)

// Emitter publishes auth events. events.EventBus satisfies it.
type Emitter interface {
	Emit(event string, data interface{})
}

// Event is the payload of every auth event.
type Event struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email,omitempty"`
	RoleID   string    `json:"roleId,omitempty"`
	RoleCode string    `json:"roleCode,omitempty"`
	At       time.Time `json:"at"`
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, interface{}) {}

type Dependencies struct {
	Users       UserRepository
	Roles       RoleRepository
	Hasher      Hasher
	Signer      *Signer
	Store       RefreshTokenStorage
	Exchange    *ExchangeIssuer
	Events      Emitter
	ExchangeTTL time.Duration
}

// Service is the authentication engine.
type Service struct {
	users       UserRepository
	roles       RoleRepository
	hasher      Hasher
	signer      *Signer
	store       RefreshTokenStorage
	exchange    *ExchangeIssuer
	events      Emitter
	exchangeTTL time.Duration
	newTokenID  func() string

	decoyOnce sync.Once
	decoyHash string
}

func NewService(deps Dependencies) *Service {
	events := deps.Events
	if events == nil {
		events = noopEmitter{}
	}
	ttl := deps.ExchangeTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		users:       deps.Users,
		roles:       deps.Roles,
		hasher:      deps.Hasher,
		signer:      deps.Signer,
		store:       deps.Store,
		exchange:    deps.Exchange,
		events:      events,
		exchangeTTL: ttl,
		newTokenID:  uuid.NewString,
	}
}

// fail passes classified errors through and hides everything else behind Internal.
func fail(op string, err error) error {
	if _, ok := errs.As(err); ok {
		return err
	}
	log.Error("Failed to %s", err, op)
	return errs.Internal(err)
}

func (s *Service) emit(name string, user *models.User, role *models.Role) {
	ev := Event{At: time.Now().UTC()}
	if user != nil {
		ev.UserID = user.ID
		ev.Email = user.Email
	}
	if role != nil {
		ev.RoleID = role.ID
		ev.RoleCode = role.Code
	}
	s.events.Emit(name, ev)
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	res, err := s.signUp(ctx, in)
	if err != nil {
		return nil, fail("sign up", err)
	}
	return res, nil
}

func (s *Service) signUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	email := strings.TrimSpace(in.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Conflict(MsgEmailExists)
	}

	// stored object keys are only ever written by the avatar upload
	if in.Image != nil && strings.HasPrefix(strings.TrimSpace(*in.Image), models.ObjectKeyPrefix) {
		return nil, errs.InvalidInput(MsgInvalidImage)
	}

	codes := dedupe(in.RoleCodes)
	if len(codes) == 0 {
		return nil, errs.InvalidInput("roleCodes must contain at least one role code")
	}
	found, err := s.roles.FindActiveByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Role, len(found))
	for _, r := range found {
		byCode[r.Code] = r
	}

	var invalid []string
	ordered := make([]models.Role, 0, len(codes))
	for _, code := range codes {
		role, ok := byCode[code]
		if !ok {
			invalid = append(invalid, fmt.Sprintf("Role code %s is not valid", code))
			continue
		}
		ordered = append(ordered, role)
	}
	if len(invalid) > 0 {
		return nil, errs.InvalidInput(invalid...)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    email,
		Password: hashed,
		Image:    in.Image,
		IsActive: true,
	}
	if err := s.users.CreateWithRoles(ctx, user, ordered); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errs.Conflict(MsgEmailExists)
		}
		return nil, err
	}

	s.emit(EventUserSignedUp, user, nil)
	return &SignUpResult{
		User:  NewUserProfile(user),
		Roles: NewRoleProfiles(ordered),
	}, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	res, err := s.signIn(ctx, email, password)
	if err != nil {
		return nil, fail("sign in", err)
	}
	return res, nil
}

// compareDecoy spends one hash comparison on sign-in attempts that fail before
// the stored hash is reached, so every rejection costs the same.
func (s *Service) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		hashed, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			log.Warn("failed to prepare decoy hash: %v", err)
			return
		}
		s.decoyHash = hashed
	})
	if s.decoyHash != "" {
		_, _ = s.hasher.Compare(password, s.decoyHash)
	}
}

func (s *Service) signIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.compareDecoy(password)
		return nil, errs.Unauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.compareDecoy(password)
		return nil, errs.Unauthorized(MsgInvalidCredentials)
	}

	ok, err := s.hasher.Compare(password, user.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Unauthorized(MsgInvalidCredentials)
	}

	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("user %s signed in but holds no role", user.ID)
	}

	result := &SignInResult{User: NewUserProfile(user)}

	if len(roles) > 1 {
		token, expiresAt, err := s.exchange.Issue(ctx, user.ID, s.exchangeTTL)
		if err != nil {
			return nil, err
		}
		result.AvailableRoles = NewRoleProfiles(roles)
		result.ExchangeToken = token
		result.ExchangeExpiresAt = expiresAt
		result.RequireRoleSelection = true
		s.emit(EventUserSignedIn, user, nil)
		return result, nil
	}

	role := roles[0]
	pair, err := s.generateTokens(ctx, user, &role)
	if err != nil {
		return nil, err
	}
	profile := NewRoleProfile(&role)
	result.Role = &profile
	result.Tokens = pair
	s.emit(EventUserSignedIn, user, &role)
	return result, nil
}

func (s *Service) SelectRole(ctx context.Context, exchangeToken, roleID string) (*SelectRoleResult, error) {
	res, err := s.selectRole(ctx, exchangeToken, roleID)
	if err != nil {
		return nil, fail("select role", err)
	}
	return res, nil
}

func (s *Service) selectRole(ctx context.Context, exchangeToken, roleID string) (*SelectRoleResult, error) {
	userID, ok, err := s.exchange.Verify(ctx, exchangeToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.InvalidInput(MsgInvalidExchangeToken)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("exchange token is valid but user %s could not be loaded: %w", userID, err)
	}
	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("user %s selected a role but holds no role", user.ID)
	}

	var selected *models.Role
	for i := range roles {
		if roles[i].ID == roleID {
			selected = &roles[i]
			break
		}
	}
	if selected == nil {
		return nil, errs.InvalidInput(MsgInvalidRoleID)
	}

	won, err := s.exchange.Consume(ctx, exchangeToken)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, errs.InvalidInput(MsgInvalidExchangeToken)
	}
	// the rest of the family goes with it
	if err := s.exchange.Revoke(ctx, user.ID); err != nil {
		return nil, err
	}

	pair, err := s.generateTokens(ctx, user, selected)
	if err != nil {
		return nil, err
	}

	s.emit(EventRoleSelected, user, selected)
	return &SelectRoleResult{
		User:   NewUserProfile(user),
		Role:   NewRoleProfile(selected),
		Tokens: *pair,
	}, nil
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair, err := s.refreshTokens(ctx, refreshToken)
	if err != nil {
		return nil, fail("refresh tokens", err)
	}
	return pair, nil
}

func (s *Service) refreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, errs.Unauthorized(MsgInvalidRefreshToken)
	}

	consumed, err := s.store.Consume(ctx, claims.Subject, claims.RefreshTokenID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		log.Warn("Refresh token reuse for user %s", claims.Subject)
		s.events.Emit(EventRefreshReuseDetected, Event{UserID: claims.Subject, At: time.Now().UTC()})
		return nil, errs.Unauthorized(MsgInvalidRefreshToken)
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.Unauthorized(MsgInvalidRefreshToken)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.Unauthorized(MsgInvalidRefreshToken)
	}

	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("user %s refreshed tokens but holds no role", user.ID)
	}

	pair, err := s.generateTokens(ctx, user, &roles[0])
	if err != nil {
		return nil, err
	}
	s.emit(EventTokensRefreshed, user, &roles[0])
	return pair, nil
}

// SignOut drops the user's refresh session. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	if err := s.store.Invalidate(ctx, userID); err != nil {
		return fail("sign out", err)
	}
	s.events.Emit(EventSignedOut, Event{UserID: userID, At: time.Now().UTC()})
	return nil
}

// generateTokens signs both tokens concurrently and records the refresh
// identifier only once both signatures exist.
func (s *Service) generateTokens(ctx context.Context, user *models.User, role *models.Role) (*TokenPair, error) {
	tokenID := s.newTokenID()

	var pair TokenPair
	g := new(errgroup.Group)
	g.Go(func() error {
		signed, err := s.signer.SignAccess(
			UserClaim{ID: user.ID, Email: user.Email},
			RoleClaim{ID: role.ID, Code: role.Code},
		)
		pair.AccessToken = signed
		return err
	})
	g.Go(func() error {
		signed, err := s.signer.SignRefresh(user.ID, tokenID)
		pair.RefreshToken = signed
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, user.ID, tokenID); err != nil {
		return nil, err
	}
	return &pair, nil
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
