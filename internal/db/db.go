package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"iam/internal/config"
	"iam/internal/models"
	console "iam/internal/utils/logger"
)

var DB *gorm.DB
var log = console.New("DB")

const (
	maxRetries = 5
	retryDelay = 5 * time.Second
)

func Connect(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	logLevel := logger.Warn
	if cfg.Database.LogQueries {
		logLevel = logger.Info
	}

	log.Info("Connecting to database %s@%s:%d/%s...", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                                   logger.Default.LogMode(logLevel),
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
			AllowGlobalUpdate:                        false,
			TranslateError:                           true,
		})
		if err == nil {
			log.Success("Connected to database")

			sqlDB, err := DB.DB()
			if err != nil {
				return log.Error("Failed to get underlying *sql.DB instance", err)
			}

			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
			sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
			sqlDB.SetConnMaxIdleTime(time.Minute * 30)

			if err := Migrate(DB); err != nil {
				return log.Error("Failed to run migrations", err)
			}

			log.Success("Migrations completed")

			return nil
		}
		log.Warn("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	return log.Error("failed to connect to database after %d attempts", err, maxRetries)
}

// Migrate registers the custom join tables and migrates every model inside a
// single transaction. Tests call it against sqlite.
func Migrate(conn *gorm.DB) error {
	log.Info("Running migrations...")

	if err := conn.SetupJoinTable(&models.User{}, "Roles", &models.UserRole{}); err != nil {
		return fmt.Errorf("failed to set up user_roles: %w", err)
	}
	if err := conn.SetupJoinTable(&models.Role{}, "Users", &models.UserRole{}); err != nil {
		return fmt.Errorf("failed to set up user_roles: %w", err)
	}

	tx := conn.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.AutoMigrate(models.All()...); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
