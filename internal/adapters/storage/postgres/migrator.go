package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrate aplica las migraciones pendientes con goose.
func Migrate(ctx context.Context, db *sql.DB, dir string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	log.Info("applying database migrations", zap.String("dir", dir))

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	log.Info("migrations applied", zap.Int64("version", version))
	return nil
}
