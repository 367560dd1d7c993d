package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations, which also install the row-level policies; sqlite has no
// policies and uses gorm auto-migration.
func Migrate(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error {
	if db.Dialector.Name() == DriverSQLite {
		log.Info("using gorm auto-migration for sqlite")
		return db.WithContext(ctx).AutoMigrate(
			&models.List{},
			&models.ListMember{},
			&models.GroceryItem{},
		)
	}
	return RunGoose(ctx, db, "up")
}

// RunGoose runs a goose command (up, down, status, version, ...) against
// the embedded postgres migrations.
func RunGoose(ctx context.Context, db *gorm.DB, command string, args ...string) error {
	if db.Dialector.Name() != DriverPostgres {
		return fmt.Errorf("goose migrations require postgres, got %s", db.Dialector.Name())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, sqlDB, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
