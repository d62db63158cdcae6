package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/backup"
	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"go.uber.org/zap"
)

// Export выгрузка текущего состояния в формате последней версии
func (s *ExamService) Export(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := backup.Encode(s.engine.Snapshot(), s.engine.Now())
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Import заменяет состояние содержимым выгрузки.
// Части, которых нет в файле (старые версии), остаются прежними.
// Движок подменяется только после успешного сохранения.
func (s *ExamService) Import(ctx context.Context, data []byte) (backup.Decoded, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decoded, err := backup.Decode(data, s.engine.Location())
	if err != nil {
		s.logger.Warn("Rejected backup import", zap.Error(err))
		return backup.Decoded{}, err
	}

	current := s.engine.Snapshot()
	next := decoded.Snapshot
	if !decoded.HasWaitingList {
		next.WaitingList = current.WaitingList
	}
	if !decoded.HasExaminers {
		next.Examiners = current.Examiners
	}
	if !decoded.HasMonthlyLimits {
		next.MonthlyLimits = current.MonthlyLimits
	}

	engine := booking.New(next, s.opts...)
	if err := s.repo.Save(ctx, engine.Snapshot()); err != nil {
		s.logger.Error("Failed to persist imported snapshot", zap.Error(err))
		return backup.Decoded{}, fmt.Errorf("save imported snapshot: %w", err)
	}
	s.engine = engine

	s.logger.Info("Backup imported",
		zap.Int("version", decoded.Version),
		zap.Int("sessions", len(next.Sessions)),
		zap.Int("waiting", len(next.WaitingList)),
		zap.Int("examiners", len(next.Examiners)),
	)
	return decoded, nil
}

// ListBackups ежедневные копии от новой к старой
func (s *ExamService) ListBackups(ctx context.Context) ([]repository.BackupInfo, error) {
	return s.repo.ListBackups(ctx)
}

// RestoreBackup импортирует ежедневную копию
func (s *ExamService) RestoreBackup(ctx context.Context, day string) (backup.Decoded, error) {
	payload, err := s.repo.LoadBackup(ctx, day)
	if err != nil {
		return backup.Decoded{}, err
	}
	if payload == nil {
		return backup.Decoded{}, fmt.Errorf("%w: backup %s", booking.ErrNotFound, day)
	}
	return s.Import(ctx, payload)
}

// DailyBackup сохраняет копию за сегодня, если есть данные и копии ещё нет
func (s *ExamService) DailyBackup(ctx context.Context) (bool, error) {
	s.mu.RLock()
	snap := s.engine.Snapshot()
	now := s.engine.Now()
	s.mu.RUnlock()

	if len(snap.Sessions) == 0 {
		return false, nil
	}

	today := calendar.DateKey(now)
	existing, err := s.repo.ListBackups(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 && existing[0].Day == today {
		return false, nil
	}

	payload, err := backup.Encode(snap, now)
	if err != nil {
		return false, err
	}
	if err := s.repo.SaveBackup(ctx, today, payload, s.backups); err != nil {
		return false, err
	}

	s.logger.Info("Daily backup saved", zap.String("day", today), zap.Int("sessions", len(snap.Sessions)))
	return true, nil
}
