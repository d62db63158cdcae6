package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Freeeeeet/exam_booking_bot/internal/app"
	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/config"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller"
	"github.com/Freeeeeet/exam_booking_bot/internal/httpapi"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting exam booking bot",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.StorageDriver),
		zap.String("timezone", cfg.Timezone),
		zap.Int("operators", len(cfg.OperatorIDs)))

	if err := run(cfg, logger); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	examService, err := service.NewExamService(ctx,
		repository.NewSnapshotRepository(store),
		logger,
		cfg.BackupKeep,
		booking.WithLocation(cfg.Location()),
	)
	if err != nil {
		return fmt.Errorf("create exam service: %w", err)
	}

	b, err := bot.New(cfg.TelegramToken, bot.WithErrorsHandler(func(err error) {
		logger.Error("Telegram API error", zap.Error(err))
	}))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ctrl := controller.NewBotController(b, examService, cfg.IsOperator, cfg.OperatorIDs, logger)
	if err := ctrl.RegisterHandlers(ctx); err != nil {
		// Меню команд не критично
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	scheduler := app.NewScheduler(examService, ctrl.Notifier(), cfg.ReminderInterval, cfg.ReminderHorizonDays, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var wg sync.WaitGroup
	if cfg.HTTPAddr != "" {
		server := httpapi.NewServer(examService, httpapi.Options{
			Addr:          cfg.HTTPAddr,
			User:          cfg.APIUser,
			PasswordHash:  cfg.APIPasswordHash,
			RatePerMinute: cfg.APIRatePerMinute,
			Production:    cfg.Environment == "production",
		}, logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Run(ctx); err != nil {
				logger.Error("HTTP API failed", zap.Error(err))
				stop()
			}
		}()
	}

	// Блокируется до сигнала
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("run bot: %w", err)
	}
	wg.Wait()
	return nil
}

// openStore открывает хранилище и применяет миграции
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SlotStore, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err := repository.NewPostgresStore(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db := store.DB()
		if err := migrate(ctx, db, app.DialectPostgres, logger); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("✅ Connected to PostgreSQL")
		return store, nil

	default:
		store, err := repository.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := migrate(ctx, store.DB(), app.DialectSQLite, logger); err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("✅ Opened SQLite database", zap.String("path", cfg.SQLitePath))
		return store, nil
	}
}
