package auth

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"iam/internal/config"
	"iam/internal/models"
	"iam/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// fakeDB implements every repository interface the engine consumes.
type fakeDB struct {
	mu            sync.Mutex
	users         map[string]*models.User
	roles         map[string]*models.Role
	userRoles     map[string][]string
	grants        map[string][]models.Permission
	verifications map[string]*models.Verification
	failFind      error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:         make(map[string]*models.User),
		roles:         make(map[string]*models.Role),
		userRoles:     make(map[string][]string),
		grants:        make(map[string][]models.Permission),
		verifications: make(map[string]*models.Verification),
	}
}

func (f *fakeDB) addRole(code string, active bool) *models.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &models.Role{Base: models.Base{ID: uuid.NewString(), CreatedAt: time.Now()}, Code: code, Name: code, IsActive: active}
	f.roles[r.ID] = r
	return r
}

func (f *fakeDB) addUser(t *testing.T, email, password string, roles ...*models.Role) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{Base: models.Base{ID: uuid.NewString()}, Name: "user", Email: email, Password: string(hashed), IsActive: true}
	f.users[u.ID] = u
	for _, r := range roles {
		f.userRoles[u.ID] = append(f.userRoles[u.ID], r.ID)
	}
	return u
}

func (f *fakeDB) grant(role *models.Role, code string, typ models.PermissionType, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[role.ID] = append(f.grants[role.ID], models.Permission{
		Base:     models.Base{ID: uuid.NewString()},
		Code:     code,
		Type:     typ,
		IsActive: active,
	})
}

func (f *fakeDB) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *fakeDB) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFind != nil {
		return nil, f.failFind
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDB) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CreateWithRoles(_ context.Context, user *models.User, roles []models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	for _, r := range roles {
		f.userRoles[user.ID] = append(f.userRoles[user.ID], r.ID)
	}
	return nil
}

func (f *fakeDB) RolesOf(_ context.Context, userID string) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Role
	for _, id := range f.userRoles[userID] {
		if r, ok := f.roles[id]; ok && r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeDB) FindActiveByCodes(_ context.Context, codes []string) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []models.Role
	for _, r := range f.roles {
		if want[r.Code] && r.IsActive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeDB) FindActiveByRole(_ context.Context, roleID string) ([]models.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Permission
	for _, p := range f.grants[roleID] {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDB) Create(_ context.Context, v *models.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.verifications[v.Value]; dup {
		return repository.ErrDuplicate
	}
	v.ID = uuid.NewString()
	cp := *v
	f.verifications[v.Value] = &cp
	return nil
}

func (f *fakeDB) FindValid(_ context.Context, value string, scope models.VerificationScope, now time.Time) (*models.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.verifications[value]
	if !ok || v.Scope != scope || !v.ExpiredAt.After(now) {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeDB) DeleteValid(_ context.Context, value string, scope models.VerificationScope, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.verifications[value]
	if !ok || v.Scope != scope || !v.ExpiredAt.After(now) {
		return 0, nil
	}
	delete(f.verifications, value)
	return 1, nil
}

func (f *fakeDB) DeleteByUser(_ context.Context, userID string, scope models.VerificationScope) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, v := range f.verifications {
		if v.UserID == userID && v.Scope == scope {
			delete(f.verifications, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, v := range f.verifications {
		if !v.ExpiredAt.After(now) {
			delete(f.verifications, k)
			n++
		}
	}
	return n, nil
}

type recordedEvent struct {
	name string
	data interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingEmitter) Emit(name string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: name, data: data})
}

func (r *recordingEmitter) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

type failingStore struct {
	RefreshTokenStorage
	insertErr error
}

func (s *failingStore) Insert(ctx context.Context, userID, tokenID string) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.RefreshTokenStorage.Insert(ctx, userID, tokenID)
}

var errBoom = errors.New("boom")

type testEnv struct {
	svc    *Service
	db     *fakeDB
	store  RefreshTokenStorage
	signer *Signer
	events *recordingEmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, nil)
}

func newTestEnvWithStore(t *testing.T, store RefreshTokenStorage) *testEnv {
	t.Helper()
	cfg := config.LoadTestConfig()
	db := newFakeDB()
	if store == nil {
		store = NewMemoryRefreshTokenStorage(cfg.JWT.RefreshTokenTTL)
	}
	signer := NewSigner(cfg.JWT)
	emitter := &recordingEmitter{}

	svc := NewService(Dependencies{
		Users:       db,
		Roles:       db,
		Hasher:      NewBcryptHasher(bcrypt.MinCost),
		Signer:      signer,
		Store:       store,
		Exchange:    NewExchangeIssuer(db),
		Events:      emitter,
		ExchangeTTL: cfg.JWT.ExchangeTokenTTL,
	})
	return &testEnv{svc: svc, db: db, store: store, signer: signer, events: emitter}
}
