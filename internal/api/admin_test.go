package api

import (
	"net/http"
	"strings"
	"testing"

	"iam/internal/config"
)

const adminUsersPath = "/admin/admin/a/IAM/users"

func newAdminPanelServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.LoadTestConfig()
	cfg.Server.AdminPanel = true
	return newTestServerWithConfig(t, cfg)
}

func TestAdminPanelServesIAMModels(t *testing.T) {
	s := newAdminPanelServer(t)

	registered := map[string]bool{}
	for _, r := range s.srv.echo.Routes() {
		if r.Method == http.MethodGet {
			registered[r.Path] = true
		}
	}
	for _, model := range []string{"users", "roles", "permissions", "menus"} {
		if !registered["/admin/admin/a/IAM/"+model] {
			t.Errorf("admin list route for %s not registered", model)
		}
	}

	token := s.signIn("admin@example.com")["accessToken"].(string)
	rec := s.raw(http.MethodGet, adminUsersPath, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin users list: status %d body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "admin@example.com") {
		t.Fatal("expected seeded users in the listing")
	}
	if strings.Contains(body, "$2a$") {
		t.Fatal("password hashes must not be rendered")
	}
}

func TestAdminPanelIsReadOnly(t *testing.T) {
	s := newAdminPanelServer(t)
	token := s.signIn("admin@example.com")["accessToken"].(string)

	for _, path := range []string{adminUsersPath + "/add", "/admin/admin/a/IAM/roles/add"} {
		if rec := s.raw(http.MethodGet, path, token); rec.Code != http.StatusForbidden {
			t.Fatalf("GET %s: expected 403, got %d", path, rec.Code)
		}
	}
}

func TestAdminPanelRequiresUserUpdate(t *testing.T) {
	s := newAdminPanelServer(t)

	if rec := s.raw(http.MethodGet, adminUsersPath, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	token := s.signIn("staff1@example.com")["accessToken"].(string)
	if rec := s.raw(http.MethodGet, adminUsersPath, token); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", rec.Code)
	}
}
