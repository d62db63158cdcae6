package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/migrations"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Диалекты хранилища
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Migrator обёртка над goose со встроенными миграциями
type Migrator struct {
	db     *sql.DB
	dir    string
	logger *zap.Logger
}

// NewMigrator создаёт мигратор для диалекта
func NewMigrator(db *sql.DB, dialect string, logger *zap.Logger) (*Migrator, error) {
	var dir string
	switch dialect {
	case DialectPostgres:
		dir = migrations.PostgresDir
	case DialectSQLite:
		dir = migrations.SQLiteDir
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	return &Migrator{
		db:     db,
		dir:    dir,
		logger: logger,
	}, nil
}

// Run применяет все pending миграции
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("Applying database migrations", zap.String("dir", mg.dir))

	if err := goose.UpContext(ctx, mg.db, mg.dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}
	mg.logger.Info("Migrations applied", zap.Int64("version", version))
	return nil
}

// Version показывает текущую версию миграций
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}
