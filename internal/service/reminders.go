package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"go.uber.org/zap"
)

// notifiedRetentionDays сколько дней после экзамена помним, что о нём напомнили
const notifiedRetentionDays = 30

// Reminder напоминание о ближайшем дне экзаменов
type Reminder struct {
	DateKey   string
	Date      time.Time
	DaysUntil int
	Turn      model.Turn
	Students  []model.StudentBooking
	Examiner  *model.Examiner
}

// Notifier доставляет напоминания оператору
type Notifier interface {
	NotifyExam(ctx context.Context, reminder Reminder) error
}

// SendReminders отправляет по одному напоминанию о каждом дне в пределах horizonDays.
// Возвращает количество отправленных напоминаний.
func (s *ExamService) SendReminders(ctx context.Context, notifier Notifier, horizonDays int) (int, error) {
	var (
		upcoming []booking.UpcomingSession
		today    time.Time
		now      time.Time
		examiner = make(map[string]model.Examiner)
	)
	s.read(func(e *booking.Engine) {
		today = e.Today()
		now = e.Now()
		upcoming = e.UpcomingSessions(today, horizonDays)
		for _, ex := range e.Examiners() {
			examiner[ex.ID] = ex
		}
	})

	notified, err := s.repo.NotifiedExams(ctx)
	if err != nil {
		return 0, fmt.Errorf("load notified exams: %w", err)
	}

	sent := 0
	changed := false
	for _, u := range upcoming {
		if _, ok := notified[u.DateKey]; ok {
			continue
		}

		reminder := Reminder{
			DateKey:   u.DateKey,
			Date:      u.Date,
			DaysUntil: u.DaysUntil,
			Turn:      u.Session.Turn,
			Students:  u.Session.Students,
		}
		if u.Session.ExaminerID != nil {
			if ex, ok := examiner[*u.Session.ExaminerID]; ok {
				reminder.Examiner = &ex
			}
		}

		if err := notifier.NotifyExam(ctx, reminder); err != nil {
			s.logger.Error("Failed to send exam reminder", zap.String("date", u.DateKey), zap.Error(err))
			continue
		}
		notified[u.DateKey] = now
		sent++
		changed = true
	}

	cutoff := calendar.AddDays(today, -notifiedRetentionDays)
	for key := range notified {
		date, err := calendar.ParseDateKey(key, today.Location())
		if err != nil || date.Before(cutoff) {
			delete(notified, key)
			changed = true
		}
	}

	if changed {
		if err := s.repo.SaveNotifiedExams(ctx, notified); err != nil {
			return sent, fmt.Errorf("save notified exams: %w", err)
		}
	}

	if sent > 0 {
		s.logger.Info("Exam reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}
