package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"go.uber.org/zap"
)

// ErrNotPersisted изменение применено в памяти, но не записано в хранилище
var ErrNotPersisted = errors.New("change applied but not persisted")

// SnapshotRepository хранилище снимка и служебных ячеек
type SnapshotRepository interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
	SaveBackup(ctx context.Context, day string, payload []byte, keep int) error
	ListBackups(ctx context.Context) ([]repository.BackupInfo, error)
	LoadBackup(ctx context.Context, day string) ([]byte, error)
	NotifiedExams(ctx context.Context) (map[string]time.Time, error)
	SaveNotifiedExams(ctx context.Context, notified map[string]time.Time) error
}

// ExamService сериализует операции движка записи и сохраняет снимок после каждого изменения
type ExamService struct {
	mu      sync.RWMutex
	engine  *booking.Engine
	repo    SnapshotRepository
	opts    []booking.Option
	logger  *zap.Logger
	backups int // Сколько ежедневных копий хранить
}

// NewExamService загружает снимок из хранилища и создаёт движок
func NewExamService(ctx context.Context, repo SnapshotRepository, logger *zap.Logger, backupKeep int, opts ...booking.Option) (*ExamService, error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	s := &ExamService{
		engine:  booking.New(snap, opts...),
		repo:    repo,
		opts:    opts,
		logger:  logger,
		backups: backupKeep,
	}

	logger.Info("Exam data loaded",
		zap.Int("sessions", len(snap.Sessions)),
		zap.Int("waiting", len(snap.WaitingList)),
		zap.Int("examiners", len(snap.Examiners)),
	)
	return s, nil
}

// mutate выполняет изменение под блокировкой и сохраняет снимок.
// fn возвращает поля для строки лога об успешной операции.
func (s *ExamService) mutate(ctx context.Context, op string, fn func(e *booking.Engine) ([]zap.Field, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, err := fn(s.engine)
	if err != nil {
		s.logger.Debug("Operation refused", zap.String("op", op), zap.Error(err))
		return err
	}

	if err := s.repo.Save(ctx, s.engine.Snapshot()); err != nil {
		s.logger.Error("Failed to persist snapshot", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	s.logger.Info(op, fields...)
	return nil
}

func (s *ExamService) read(fn func(e *booking.Engine)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.engine)
}

// Book записывает ученика
func (s *ExamService) Book(ctx context.Context, req booking.BookRequest) (model.StudentBooking, error) {
	var b model.StudentBooking
	err := s.mutate(ctx, "Student booked", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		b, err = e.Book(req)
		return []zap.Field{
			zap.String("booking_id", b.ID),
			zap.String("date", calendar.DateKey(req.Date)),
			zap.Int("fail_count", b.FailCount),
		}, err
	})
	return b, err
}

// Reschedule переносит запись с новым счётчиком неудач
func (s *ExamService) Reschedule(ctx context.Context, bookingID string, newDate time.Time, failCount int) (model.StudentBooking, error) {
	var b model.StudentBooking
	err := s.mutate(ctx, "Booking rescheduled", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		b, err = e.Reschedule(bookingID, newDate, failCount)
		return []zap.Field{
			zap.String("old_id", bookingID),
			zap.String("new_id", b.ID),
			zap.String("date", calendar.DateKey(newDate)),
		}, err
	})
	return b, err
}

// MoveStudent переносит запись без изменения статуса и счётчика
func (s *ExamService) MoveStudent(ctx context.Context, bookingID string, newDate time.Time) (model.StudentBooking, error) {
	var b model.StudentBooking
	err := s.mutate(ctx, "Student moved", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		b, err = e.MoveStudent(bookingID, newDate)
		return []zap.Field{
			zap.String("old_id", bookingID),
			zap.String("new_id", b.ID),
			zap.String("date", calendar.DateKey(newDate)),
		}, err
	})
	return b, err
}

// MoveEntireSession переносит день целиком
func (s *ExamService) MoveEntireSession(ctx context.Context, from, to time.Time) error {
	return s.mutate(ctx, "Session moved", func(e *booking.Engine) ([]zap.Field, error) {
		return []zap.Field{
			zap.String("from", calendar.DateKey(from)),
			zap.String("to", calendar.DateKey(to)),
		}, e.MoveEntireSession(from, to)
	})
}

// DeleteSession удаляет день
func (s *ExamService) DeleteSession(ctx context.Context, date time.Time) (model.ExamSession, error) {
	var removed model.ExamSession
	err := s.mutate(ctx, "Session deleted", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		removed, err = e.DeleteSession(date)
		return []zap.Field{
			zap.String("date", calendar.DateKey(date)),
			zap.Int("students", len(removed.Students)),
		}, err
	})
	return removed, err
}

// RemoveStudent удаляет запись
func (s *ExamService) RemoveStudent(ctx context.Context, bookingID string) (model.StudentBooking, error) {
	var removed model.StudentBooking
	err := s.mutate(ctx, "Student removed", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		removed, err = e.RemoveStudent(bookingID)
		return []zap.Field{zap.String("booking_id", bookingID)}, err
	})
	return removed, err
}

// SetFailCount ручная правка счётчика неудач
func (s *ExamService) SetFailCount(ctx context.Context, bookingID string, failCount int) error {
	return s.mutate(ctx, "Fail count updated", func(e *booking.Engine) ([]zap.Field, error) {
		return []zap.Field{
			zap.String("booking_id", bookingID),
			zap.Int("fail_count", failCount),
		}, e.SetFailCount(bookingID, failCount)
	})
}

// SetTurn выбирает смену дня
func (s *ExamService) SetTurn(ctx context.Context, date time.Time, turn model.Turn) error {
	return s.mutate(ctx, "Turn updated", func(e *booking.Engine) ([]zap.Field, error) {
		return []zap.Field{
			zap.String("date", calendar.DateKey(date)),
			zap.String("turn", string(turn)),
		}, e.SetTurn(date, turn)
	})
}

// SetExaminer назначает экзаменатора на день
func (s *ExamService) SetExaminer(ctx context.Context, date time.Time, examinerID *string) error {
	return s.mutate(ctx, "Examiner assigned", func(e *booking.Engine) ([]zap.Field, error) {
		fields := []zap.Field{zap.String("date", calendar.DateKey(date))}
		if examinerID != nil {
			fields = append(fields, zap.String("examiner_id", *examinerID))
		}
		return fields, e.SetExaminer(date, examinerID)
	})
}

// RecordOutcome фиксирует результат экзамена
func (s *ExamService) RecordOutcome(ctx context.Context, bookingID string, outcome model.BookingStatus, target *time.Time) (booking.OutcomeResult, error) {
	var res booking.OutcomeResult
	err := s.mutate(ctx, "Outcome recorded", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		res, err = e.RecordOutcome(bookingID, outcome, target)
		if err != nil {
			return nil, err
		}
		if outcome == model.BookingStatusFailed && res.Action == booking.OutcomeRemoved {
			// Не сдал и оператор не выбрал дату: ученик выбывает из записи
			s.logger.Warn("Failed student dropped without a new date",
				zap.String("booking_id", bookingID),
				zap.String("name", res.Booking.Name),
			)
		}
		fields := []zap.Field{
			zap.String("booking_id", bookingID),
			zap.String("outcome", string(outcome)),
			zap.String("action", string(res.Action)),
		}
		if res.Rescheduled != nil {
			fields = append(fields, zap.String("new_id", res.Rescheduled.ID))
		}
		return fields, nil
	})
	return res, err
}

// SetMonthlyLimit задаёт лимит дней в месяце
func (s *ExamService) SetMonthlyLimit(ctx context.Context, monthKey string, limit int) error {
	return s.mutate(ctx, "Monthly limit updated", func(e *booking.Engine) ([]zap.Field, error) {
		return []zap.Field{
			zap.String("month", monthKey),
			zap.Int("limit", limit),
		}, e.SetMonthlyLimit(monthKey, limit)
	})
}

// AddToWaitingList добавляет ученика в лист ожидания
func (s *ExamService) AddToWaitingList(ctx context.Context, name, phone string) (model.WaitingListEntry, error) {
	var entry model.WaitingListEntry
	err := s.mutate(ctx, "Added to waiting list", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		entry, err = e.AddToWaitingList(name, phone, nil)
		return []zap.Field{zap.String("entry_id", entry.ID)}, err
	})
	return entry, err
}

// RemoveFromWaitingList удаляет ученика из листа ожидания
func (s *ExamService) RemoveFromWaitingList(ctx context.Context, entryID string) (model.WaitingListEntry, error) {
	var entry model.WaitingListEntry
	err := s.mutate(ctx, "Removed from waiting list", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		entry, err = e.RemoveFromWaitingList(entryID)
		return []zap.Field{zap.String("entry_id", entryID)}, err
	})
	return entry, err
}

// BookFromWaitingList записывает ученика из листа ожидания
func (s *ExamService) BookFromWaitingList(ctx context.Context, entryID string, date time.Time, confirmed bool) (model.StudentBooking, error) {
	var b model.StudentBooking
	err := s.mutate(ctx, "Booked from waiting list", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		b, err = e.BookFromWaitingList(entryID, date, confirmed)
		return []zap.Field{
			zap.String("entry_id", entryID),
			zap.String("booking_id", b.ID),
			zap.String("date", calendar.DateKey(date)),
		}, err
	})
	return b, err
}

// AddExaminer добавляет экзаменатора
func (s *ExamService) AddExaminer(ctx context.Context, name string) (model.Examiner, error) {
	var ex model.Examiner
	err := s.mutate(ctx, "Examiner added", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		ex, err = e.AddExaminer(name)
		return []zap.Field{zap.String("examiner_id", ex.ID)}, err
	})
	return ex, err
}

// RemoveExaminer удаляет экзаменатора
func (s *ExamService) RemoveExaminer(ctx context.Context, examinerID string) (model.Examiner, error) {
	var ex model.Examiner
	err := s.mutate(ctx, "Examiner removed", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		ex, err = e.RemoveExaminer(examinerID)
		return []zap.Field{zap.String("examiner_id", examinerID)}, err
	})
	return ex, err
}

// AddExaminerNote добавляет заметку
func (s *ExamService) AddExaminerNote(ctx context.Context, examinerID, text string) (model.ExaminerNote, error) {
	var note model.ExaminerNote
	err := s.mutate(ctx, "Examiner note added", func(e *booking.Engine) ([]zap.Field, error) {
		var err error
		note, err = e.AddExaminerNote(examinerID, text)
		return []zap.Field{zap.String("examiner_id", examinerID), zap.String("note_id", note.ID)}, err
	})
	return note, err
}

// DeleteExaminerNote удаляет заметку
func (s *ExamService) DeleteExaminerNote(ctx context.Context, examinerID, noteID string) error {
	return s.mutate(ctx, "Examiner note deleted", func(e *booking.Engine) ([]zap.Field, error) {
		return []zap.Field{zap.String("examiner_id", examinerID), zap.String("note_id", noteID)},
			e.DeleteExaminerNote(examinerID, noteID)
	})
}
