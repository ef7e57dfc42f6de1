package repository_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"iam/internal/db/dbtest"
	"iam/internal/models"
	"iam/internal/repository"
	"iam/internal/utils/logger"

	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func seeded(t *testing.T) *gorm.DB {
	t.Helper()
	conn := dbtest.Open(t)
	fixture, err := models.LoadSeedFixture("")
	if err != nil {
		t.Fatalf("LoadSeedFixture: %v", err)
	}
	plain := func(s string) (string, error) { return "hashed:" + s, nil }
	if err := models.Seed(context.Background(), conn, fixture, plain); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return conn
}

func TestUserLookupsTranslateNotFound(t *testing.T) {
	users := repository.NewUserRepository(seeded(t))
	ctx := context.Background()

	if _, err := users.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	u, err := users.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.Password != "hashed:@Password123" {
		t.Fatalf("seed did not hash through the given func: %q", u.Password)
	}
	exists, err := users.EmailExists(ctx, "admin@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists = %v, %v", exists, err)
	}
}

func TestCreateWithRolesKeepsOrder(t *testing.T) {
	conn := seeded(t)
	users := repository.NewUserRepository(conn)
	roles := repository.NewRoleRepository(conn)
	ctx := context.Background()

	staff, _ := roles.FindByCode(ctx, "staff")
	auditor, _ := roles.FindByCode(ctx, "auditor")

	user := &models.User{Name: "Carol", Email: "carol@example.com", Password: "x", IsActive: true}
	if err := users.CreateWithRoles(ctx, user, []models.Role{*auditor, *staff}); err != nil {
		t.Fatalf("CreateWithRoles: %v", err)
	}

	got, err := users.RolesOf(ctx, user.ID)
	if err != nil {
		t.Fatalf("RolesOf: %v", err)
	}
	if len(got) != 2 || got[0].Code != "auditor" || got[1].Code != "staff" {
		t.Fatalf("unexpected role order %+v", got)
	}

	dup := &models.User{Name: "Carol", Email: "carol@example.com", Password: "x", IsActive: true}
	if err := users.CreateWithRoles(ctx, dup, []models.Role{*staff}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRolesOfSkipsInactiveRoles(t *testing.T) {
	conn := seeded(t)
	users := repository.NewUserRepository(conn)
	ctx := context.Background()

	multi, _ := users.FindByEmail(ctx, "multirole@example.com")
	if err := conn.Model(&models.Role{}).Where("code = ?", "manager").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := users.RolesOf(ctx, multi.ID)
	if err != nil {
		t.Fatalf("RolesOf: %v", err)
	}
	if len(got) != 1 || got[0].Code != "staff" {
		t.Fatalf("expected only staff, got %+v", got)
	}
}

func TestGrantAndIsGranted(t *testing.T) {
	conn := seeded(t)
	perms := repository.NewPermissionRepository(conn)
	roles := repository.NewRoleRepository(conn)
	ctx := context.Background()

	auditor, _ := roles.FindByCode(ctx, "auditor")
	perm := &models.Permission{Code: "report:export", Name: "Export", Type: models.PermissionTypeResource}
	if err := perms.Create(ctx, perm); err != nil {
		t.Fatalf("Create: %v", err)
	}

	granted, err := perms.IsGranted(ctx, perm.ID, auditor.ID)
	if err != nil || granted {
		t.Fatalf("IsGranted before grant = %v, %v", granted, err)
	}
	if err := perms.Grant(ctx, perm.ID, auditor.ID); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	granted, err = perms.IsGranted(ctx, perm.ID, auditor.ID)
	if err != nil || !granted {
		t.Fatalf("IsGranted after grant = %v, %v", granted, err)
	}

	active, err := perms.FindActiveByRole(ctx, auditor.ID)
	if err != nil {
		t.Fatalf("FindActiveByRole: %v", err)
	}
	found := false
	for _, p := range active {
		if p.Code == "report:export" {
			found = true
		}
	}
	if !found {
		t.Fatal("granted permission missing from FindActiveByRole")
	}
}

func TestFindActiveByRoleIgnoresDeactivatedRole(t *testing.T) {
	conn := seeded(t)
	perms := repository.NewPermissionRepository(conn)
	roles := repository.NewRoleRepository(conn)
	ctx := context.Background()

	admin, _ := roles.FindByCode(ctx, "admin")
	before, err := perms.FindActiveByRole(ctx, admin.ID)
	if err != nil || len(before) == 0 {
		t.Fatalf("expected seeded admin permissions, got %d, %v", len(before), err)
	}

	if err := conn.Model(&models.Role{}).Where("id = ?", admin.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	after, err := perms.FindActiveByRole(ctx, admin.ID)
	if err != nil {
		t.Fatalf("FindActiveByRole: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("deactivated role still grants %d permissions", len(after))
	}
}

func TestListPaginates(t *testing.T) {
	users := repository.NewUserRepository(seeded(t))

	page, total, err := users.ListWithRoles(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("ListWithRoles: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 user on page 2, got %d", len(page))
	}
	if len(page[0].Roles) == 0 {
		t.Fatal("expected roles preloaded")
	}
}

func TestVerificationLifecycle(t *testing.T) {
	conn := seeded(t)
	users := repository.NewUserRepository(conn)
	repo := repository.NewVerificationRepository(conn)
	ctx := context.Background()
	now := time.Now()

	admin, _ := users.FindByEmail(ctx, "admin@example.com")
	live := &models.Verification{Value: "live", Scope: models.VerificationScopeSelectRole, UserID: admin.ID, ExpiredAt: now.Add(time.Hour)}
	stale := &models.Verification{Value: "stale", Scope: models.VerificationScopeSelectRole, UserID: admin.ID, ExpiredAt: now.Add(-time.Minute)}
	for _, v := range []*models.Verification{live, stale} {
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if _, err := repo.FindValid(ctx, "stale", models.VerificationScopeSelectRole, now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected expired record to be invisible, got %v", err)
	}
	if _, err := repo.FindValid(ctx, "live", models.VerificationScopeSelectRole, now); err != nil {
		t.Fatalf("FindValid: %v", err)
	}

	if n, err := repo.DeleteValid(ctx, "stale", models.VerificationScopeSelectRole, now); err != nil || n != 0 {
		t.Fatalf("DeleteValid on expired record = %d, %v", n, err)
	}
	spent := &models.Verification{Value: "spent", Scope: models.VerificationScopeSelectRole, UserID: admin.ID, ExpiredAt: now.Add(time.Hour)}
	if err := repo.Create(ctx, spent); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n, err := repo.DeleteValid(ctx, "spent", models.VerificationScopeSelectRole, now); err != nil || n != 1 {
		t.Fatalf("DeleteValid = %d, %v", n, err)
	}
	if n, err := repo.DeleteValid(ctx, "spent", models.VerificationScopeSelectRole, now); err != nil || n != 0 {
		t.Fatalf("second DeleteValid = %d, %v", n, err)
	}

	purged, err := repo.DeleteExpired(ctx, now)
	if err != nil || purged != 1 {
		t.Fatalf("DeleteExpired = %d, %v", purged, err)
	}
	removed, err := repo.DeleteByUser(ctx, admin.ID, models.VerificationScopeSelectRole)
	if err != nil || removed != 1 {
		t.Fatalf("DeleteByUser = %d, %v", removed, err)
	}
}

func TestMenusListActiveInCreationOrder(t *testing.T) {
	menus := repository.NewMenuRepository(seeded(t))
	ctx := context.Background()

	list, err := menus.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(list) == 0 || list[0].Slug != "menu-1" {
		t.Fatalf("unexpected menus %+v", list)
	}
	ok, err := menus.SlugExists(ctx, "menu-2")
	if err != nil || !ok {
		t.Fatalf("SlugExists = %v, %v", ok, err)
	}
	ok, err = menus.Exists(ctx, "00000000-0000-4000-8000-000000000000")
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
}
