package models_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"iam/internal/db/dbtest"
	"iam/internal/models"
	"iam/internal/utils/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func plain(s string) (string, error) { return s, nil }

func TestSeedIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	fixture, err := models.LoadSeedFixture("")
	if err != nil {
		t.Fatalf("LoadSeedFixture: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := models.Seed(context.Background(), conn, fixture, plain); err != nil {
			t.Fatalf("Seed run %d: %v", i+1, err)
		}
	}

	var users, roles, links int64
	conn.Model(&models.User{}).Count(&users)
	conn.Model(&models.Role{}).Count(&roles)
	conn.Model(&models.UserRole{}).Count(&links)
	if users != 4 || roles != 4 || links != 5 {
		t.Fatalf("unexpected counts users=%d roles=%d links=%d", users, roles, links)
	}

	var multi models.User
	if err := conn.Where("email = ?", "multirole@example.com").First(&multi).Error; err != nil {
		t.Fatalf("find multirole: %v", err)
	}
	var codes []string
	conn.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", multi.ID).
		Order("user_roles.created_at ASC").
		Pluck("roles.code", &codes)
	if strings.Join(codes, ",") != "manager,staff" {
		t.Fatalf("unexpected role order %v", codes)
	}
}

func TestSeedGrantsWriteRoutesToAdminOnly(t *testing.T) {
	conn := dbtest.Open(t)
	fixture, _ := models.LoadSeedFixture("")
	if err := models.Seed(context.Background(), conn, fixture, plain); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var holders []string
	conn.Table("roles").
		Joins("JOIN role_permissions ON role_permissions.role_id = roles.id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("permissions.code = ?", "role:create").
		Pluck("roles.code", &holders)
	if len(holders) != 1 || holders[0] != "admin" {
		t.Fatalf("role:create holders = %v", holders)
	}

	var readers int64
	conn.Table("role_permissions").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("permissions.code = ?", "menu:read").
		Count(&readers)
	if readers != 4 {
		t.Fatalf("expected every role to read menus, got %d", readers)
	}
}

func TestChildMenusInheritResourcePermissions(t *testing.T) {
	conn := dbtest.Open(t)
	fixture, _ := models.LoadSeedFixture("")
	if err := models.Seed(context.Background(), conn, fixture, plain); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var leaf models.Menu
	if err := conn.Where("slug = ?", "menu-2-2-2-1").First(&leaf).Error; err != nil {
		t.Fatalf("find leaf: %v", err)
	}
	if !leaf.VisibleTo([]string{"staff:read"}) {
		t.Fatalf("leaf should inherit staff:read, has %v", leaf.ResourcePermissions)
	}
	if leaf.ParentID == nil {
		t.Fatal("leaf should have a parent")
	}
}

func TestLoadSeedFixtureRejectsUnknownRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	body := "roles:\n  - {code: admin, name: Admin}\nusers:\n  - {name: x, email: x@example.com, password: p, roles: [ghost]}\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := models.LoadSeedFixture(path)
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}

func TestSplitPermissionCode(t *testing.T) {
	scope, action, ok := models.SplitPermissionCode("staff:read")
	if !ok || scope != "staff" || action != "read" {
		t.Fatalf("got %q %q %v", scope, action, ok)
	}
	if _, _, ok := models.SplitPermissionCode("staff"); ok {
		t.Fatal("expected missing colon to fail")
	}
	if !models.IsCRUDAction("delete") || models.IsCRUDAction("approve") {
		t.Fatal("unexpected IsCRUDAction result")
	}
}
