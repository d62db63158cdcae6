package main

import (
	"context"
	"database/sql"

	"github.com/Freeeeeet/exam_booking_bot/internal/app"
	"go.uber.org/zap"
)

func migrate(ctx context.Context, db *sql.DB, dialect string, logger *zap.Logger) error {
	migrator, err := app.NewMigrator(db, dialect, logger)
	if err != nil {
		return err
	}
	return migrator.Run(ctx)
}
