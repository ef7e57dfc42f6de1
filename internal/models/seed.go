package models

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	console "iam/internal/utils/logger"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var log = console.New("SEEDER")

//go:embed seed.yaml
var defaultFixture []byte

type SeedFixture struct {
	Roles       []SeedRole      `yaml:"roles"`
	Permissions SeedPermissions `yaml:"permissions"`
	Users       []SeedUser      `yaml:"users"`
	Menus       []SeedMenu      `yaml:"menus"`
}

type SeedRole struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SeedPermissions generates route codes <route>:<action> and resource codes
// <rolecode>:<action> for every role.
type SeedPermissions struct {
	Routes        []string `yaml:"routes"`
	Actions       []string `yaml:"actions"`
	SharedActions []string `yaml:"shared_actions"`
	AdminRole     string   `yaml:"admin_role"`
}

type SeedUser struct {
	Name     string   `yaml:"name"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type SeedMenu struct {
	Slug                string     `yaml:"slug"`
	Name                string     `yaml:"name"`
	Icon                string     `yaml:"icon"`
	Href                string     `yaml:"href"`
	ResourcePermissions []string   `yaml:"resource_permissions"`
	Children            []SeedMenu `yaml:"children"`
}

// HashFunc turns a plaintext password into its stored form.
type HashFunc func(plain string) (string, error)

// LoadSeedFixture reads the fixture at path, or the embedded default when path is empty.
func LoadSeedFixture(path string) (*SeedFixture, error) {
	data := defaultFixture
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
		}
		data = raw
	}

	var fixture SeedFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse seed fixture: %w", err)
	}
	if err := fixture.validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

func (f *SeedFixture) validate() error {
	known := make(map[string]bool, len(f.Roles))
	for _, r := range f.Roles {
		if r.Code == "" || r.Code != strings.ToLower(r.Code) {
			return fmt.Errorf("seed role code %q must be non-empty lowercase", r.Code)
		}
		known[r.Code] = true
	}
	if f.Permissions.AdminRole != "" && !known[f.Permissions.AdminRole] {
		return fmt.Errorf("seed admin_role %q is not a seeded role", f.Permissions.AdminRole)
	}
	for _, u := range f.Users {
		if len(u.Roles) == 0 {
			return fmt.Errorf("seed user %s has no roles", u.Email)
		}
		for _, code := range u.Roles {
			if !known[code] {
				return fmt.Errorf("seed user %s references unknown role %q", u.Email, code)
			}
		}
	}
	return nil
}

// Seed applies the fixture in one transaction. Existing rows, matched by
// code, email or slug, are left untouched, so Seed can run on every boot.
func Seed(ctx context.Context, db *gorm.DB, fixture *SeedFixture, hash HashFunc) error {
	if fixture == nil {
		return errors.New("seed fixture is nil")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles, err := seedRoles(tx, fixture.Roles)
		if err != nil {
			return err
		}
		if err := seedPermissions(tx, fixture.Permissions, roles); err != nil {
			return err
		}
		if err := seedUsers(tx, fixture.Users, roles, hash); err != nil {
			return err
		}
		for _, menu := range fixture.Menus {
			if err := seedMenu(tx, menu, nil, nil); err != nil {
				return err
			}
		}
		log.Success("Seeded %d roles, %d users, %d root menus", len(roles), len(fixture.Users), len(fixture.Menus))
		return nil
	})
}

func seedRoles(tx *gorm.DB, defs []SeedRole) (map[string]*Role, error) {
	roles := make(map[string]*Role, len(defs))
	for _, def := range defs {
		role := Role{Code: def.Code, Name: def.Name}
		if def.Description != "" {
			desc := def.Description
			role.Description = &desc
		}
		if err := tx.Where(Role{Code: def.Code}).FirstOrCreate(&role).Error; err != nil {
			return nil, fmt.Errorf("failed to create role %s: %w", def.Code, err)
		}
		roles[def.Code] = &role
	}
	return roles, nil
}

func seedPermissions(tx *gorm.DB, def SeedPermissions, roles map[string]*Role) error {
	shared := make(map[string]bool, len(def.SharedActions))
	for _, a := range def.SharedActions {
		shared[a] = true
	}

	everyone := make([]*Role, 0, len(roles))
	for _, r := range roles {
		everyone = append(everyone, r)
	}

	for _, route := range def.Routes {
		for _, action := range def.Actions {
			grantees := everyone
			if !shared[action] {
				admin, ok := roles[def.AdminRole]
				if !ok {
					continue
				}
				grantees = []*Role{admin}
			}
			perm := Permission{
				Code:        PermissionCode(route, action),
				Name:        strings.ToUpper(action) + " " + strings.ToUpper(route),
				Description: stringPtr(fmt.Sprintf("Allow %s operation on %s route", action, route)),
				Type:        PermissionTypeRoute,
			}
			if err := upsertPermission(tx, &perm, grantees); err != nil {
				return err
			}
		}
	}

	for code, role := range roles {
		for _, action := range def.Actions {
			perm := Permission{
				Code:        PermissionCode(code, action),
				Name:        strings.ToUpper(action) + " " + code,
				Description: stringPtr(fmt.Sprintf("Allow %s to %s its own resources", code, action)),
				Type:        PermissionTypeResource,
			}
			if err := upsertPermission(tx, &perm, []*Role{role}); err != nil {
				return err
			}
		}
	}
	return nil
}

func upsertPermission(tx *gorm.DB, perm *Permission, grantees []*Role) error {
	if err := tx.Where(Permission{Code: perm.Code}).FirstOrCreate(perm).Error; err != nil {
		return fmt.Errorf("failed to create permission %s: %w", perm.Code, err)
	}
	if len(grantees) == 0 {
		return nil
	}
	if err := tx.Model(perm).Association("Roles").Append(grantees); err != nil {
		return fmt.Errorf("failed to grant permission %s: %w", perm.Code, err)
	}
	return nil
}

func seedUsers(tx *gorm.DB, defs []SeedUser, roles map[string]*Role, hash HashFunc) error {
	for _, def := range defs {
		var existing int64
		if err := tx.Model(&User{}).Where("email = ?", def.Email).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to look up user %s: %w", def.Email, err)
		}
		if existing > 0 {
			continue
		}

		hashed, err := hash(def.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", def.Email, err)
		}

		user := User{Name: def.Name, Email: def.Email, Password: hashed, IsActive: true}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", def.Email, err)
		}
		// one row per role keeps assignment order observable
		now := time.Now()
		for i, code := range def.Roles {
			link := UserRole{UserID: user.ID, RoleID: roles[code].ID, CreatedAt: now.Add(time.Duration(i) * time.Millisecond)}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to assign role %s to %s: %w", code, def.Email, err)
			}
		}
	}
	return nil
}

func seedMenu(tx *gorm.DB, def SeedMenu, parentID *string, inherited []string) error {
	perms := def.ResourcePermissions
	if perms == nil {
		perms = inherited
	}

	menu := Menu{
		Slug:                def.Slug,
		Name:                def.Name,
		ParentID:            parentID,
		ResourcePermissions: append([]string{}, perms...),
	}
	if def.Icon != "" {
		menu.Icon = stringPtr(def.Icon)
	}
	if def.Href != "" {
		menu.Href = stringPtr(def.Href)
	}

	if err := tx.Where(Menu{Slug: def.Slug}).FirstOrCreate(&menu).Error; err != nil {
		return fmt.Errorf("failed to create menu %s: %w", def.Slug, err)
	}
	for _, child := range def.Children {
		if err := seedMenu(tx, child, &menu.ID, perms); err != nil {
			return err
		}
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
