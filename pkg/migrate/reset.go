package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// legacyTables were created by earlier releases and are dropped on reset.
var legacyTables = []string{"cart"}

// MaybeReset rebuilds the schema at startup when the app is configured to do so.
func MaybeReset(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) (bool, error) {
	if !cfg.App.ResetSchemaOnStart {
		return false, nil
	}
	if cfg.App.IsProd() && !cfg.App.AllowDestructiveReset {
		return false, fmt.Errorf("schema reset refused in %s without %s", cfg.App.Env, config.EnvAllowDestructiveReset)
	}
	if err := ResetSchema(ctx, client, logg); err != nil {
		return false, err
	}
	return true, nil
}

// ResetSchema drops every storefront table, including legacy ones, and
// recreates the current schema. All existing data is lost.
func ResetSchema(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	if logg != nil {
		ctx = logg.WithField(ctx, "driver", client.Driver())
		logg.Warn(ctx, "resetting database schema")
	}

	var err error
	if client.Driver() == config.DriverSQLite {
		err = resetSQLite(ctx, client)
	} else {
		err = resetPostgres(ctx, client)
	}
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(ctx, "database schema reset completed")
	}
	return nil
}

func resetPostgres(ctx context.Context, client *db.Client) error {
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	dir, err := prepare(EmbeddedDir)
	if err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose reset: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func resetSQLite(ctx context.Context, client *db.Client) error {
	conn := client.DB().WithContext(ctx)
	migrator := conn.Migrator()

	all := models.All()
	for _, table := range legacyTables {
		if err := migrator.DropTable(table); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	for i := len(all) - 1; i >= 0; i-- {
		if err := migrator.DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table %T: %w", all[i], err)
		}
	}
	if err := conn.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
