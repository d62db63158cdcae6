package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

type OutcomeAction string

const (
	OutcomeRemoved     OutcomeAction = "removed"     // Запись удалена (сдал или выбыл)
	OutcomeRescheduled OutcomeAction = "rescheduled" // Перенесён на новую дату
	OutcomeWaitlisted  OutcomeAction = "waitlisted"  // Третья неудача, ушёл в лист ожидания
	OutcomeUnchanged   OutcomeAction = "unchanged"   // Неявка без новой даты
)

const (
	failedRetryMonths = 1  // Пересдача по умолчанию через месяц
	absentRetryDays   = 15 // После неявки по умолчанию через 15 дней
	cooldownMonths    = 1  // Заморозка после третьей неудачи
)

// OutcomeResult что произошло с записью после фиксации результата
type OutcomeResult struct {
	Action       OutcomeAction
	ExamDate     time.Time
	Booking      model.StudentBooking // Исходная запись
	Rescheduled  *model.StudentBooking
	WaitingEntry *model.WaitingListEntry
}

// RecordOutcome фиксирует результат экзамена.
//
// target - выбранная оператором новая дата, nil если оператор отказался выбирать.
// PASSED удаляет запись. FAILED увеличивает счётчик: на третий раз ученик уходит
// в лист ожидания с заморозкой на месяц, иначе переносится на target или выбывает.
// ABSENT не трогает счётчик: перенос на target или запись остаётся на месте.
func (e *Engine) RecordOutcome(bookingID string, outcome model.BookingStatus, target *time.Time) (OutcomeResult, error) {
	key, idx, err := e.locate(bookingID)
	if err != nil {
		return OutcomeResult{}, err
	}

	original := e.sessions[key].Students[idx]
	result := OutcomeResult{
		ExamDate: e.dateOf(key),
		Booking:  original,
	}

	switch outcome {
	case model.BookingStatusPassed:
		e.removeAt(key, idx)
		result.Action = OutcomeRemoved

	case model.BookingStatusFailed:
		failCount := original.FailCount + 1
		switch {
		case failCount >= model.MaxFailCount:
			until := calendar.AddMonths(result.ExamDate, cooldownMonths)
			entry := model.WaitingListEntry{
				ID:               e.newID(),
				Name:             original.Name,
				Phone:            original.Phone,
				AddedAt:          e.Now(),
				CanBookAfter:     &until,
				FailedThreeTimes: true,
			}
			e.removeAt(key, idx)
			e.waiting = append(e.waiting, entry)
			result.Action = OutcomeWaitlisted
			result.WaitingEntry = &entry

		case target == nil:
			e.removeAt(key, idx)
			result.Action = OutcomeRemoved

		default:
			moved, err := e.rescheduleAfterOutcome(key, idx, *target, failCount)
			if err != nil {
				return OutcomeResult{}, err
			}
			result.Action = OutcomeRescheduled
			result.Rescheduled = &moved
		}

	case model.BookingStatusAbsent:
		if target == nil {
			result.Action = OutcomeUnchanged
			return result, nil
		}
		moved, err := e.rescheduleAfterOutcome(key, idx, *target, original.FailCount)
		if err != nil {
			return OutcomeResult{}, err
		}
		result.Action = OutcomeRescheduled
		result.Rescheduled = &moved

	default:
		return OutcomeResult{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	return result, nil
}

func (e *Engine) rescheduleAfterOutcome(key string, idx int, target time.Time, failCount int) (model.StudentBooking, error) {
	if calendar.DaysBetween(e.Today(), target) < 0 {
		return model.StudentBooking{}, fmt.Errorf("%w: %s", ErrPastDate, calendar.DateKey(target))
	}
	return e.relocate(key, idx, target, model.BookingStatusScheduled, failCount)
}

// SuggestedDate дата пересдачи по умолчанию: через месяц после неудачи,
// через 15 дней после неявки, но не раньше сегодняшнего дня.
func (e *Engine) SuggestedDate(bookingID string, outcome model.BookingStatus) (time.Time, error) {
	key, _, err := e.locate(bookingID)
	if err != nil {
		return time.Time{}, err
	}
	examDate := e.dateOf(key)

	var suggested time.Time
	switch outcome {
	case model.BookingStatusFailed:
		suggested = calendar.AddMonths(examDate, failedRetryMonths)
	case model.BookingStatusAbsent:
		suggested = calendar.AddDays(examDate, absentRetryDays)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	if today := e.Today(); suggested.Before(today) {
		return today, nil
	}
	return suggested, nil
}
