package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"go.uber.org/zap"
)

// backupCheckInterval как часто проверять, сделана ли копия за сегодня
const backupCheckInterval = time.Hour

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	examService *service.ExamService
	notifier    service.Notifier
	interval    time.Duration
	horizonDays int
	logger      *zap.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(examService *service.ExamService, notifier service.Notifier, interval time.Duration, horizonDays int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		examService: examService,
		notifier:    notifier,
		interval:    interval,
		horizonDays: horizonDays,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("horizon_days", s.horizonDays),
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.sendReminders(ctx)
	s.dailyBackup(ctx)

	reminders := time.NewTicker(s.interval)
	defer reminders.Stop()
	backups := time.NewTicker(backupCheckInterval)
	defer backups.Stop()

	for {
		select {
		case <-reminders.C:
			s.sendReminders(ctx)
		case <-backups.C:
			s.dailyBackup(ctx)
		case <-s.stopChan:
			s.logger.Info("Background tasks stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Background tasks cancelled")
			return
		}
	}
}

// sendReminders напоминания о ближайших экзаменах
func (s *Scheduler) sendReminders(ctx context.Context) {
	if _, err := s.examService.SendReminders(ctx, s.notifier, s.horizonDays); err != nil {
		s.logger.Error("Failed to send reminders", zap.Error(err))
	}
}

// dailyBackup копия за сегодня, если её ещё нет
func (s *Scheduler) dailyBackup(ctx context.Context) {
	if _, err := s.examService.DailyBackup(ctx); err != nil {
		s.logger.Error("Failed to save daily backup", zap.Error(err))
	}
}
