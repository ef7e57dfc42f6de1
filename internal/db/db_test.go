package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"iam/internal/models"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := conn.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestMigrateCreatesTables(t *testing.T) {
	conn := openMemory(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, table := range []string{"users", "roles", "permissions", "verifications", "menus", "user_roles", "role_permissions"} {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
	if !conn.Migrator().HasColumn(&models.UserRole{}, "created_at") {
		t.Error("user_roles must record assignment time")
	}
}

func TestMigrateTwice(t *testing.T) {
	conn := openMemory(t)
	for i := 0; i < 2; i++ {
		if err := Migrate(conn); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	DB = nil
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
