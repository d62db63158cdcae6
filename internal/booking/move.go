package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// relocate переносит запись на другую дату: удаление из исходного дня и
// новая запись (новый ID) в конце списка целевого дня. Либо оба шага, либо ни одного.
func (e *Engine) relocate(fromKey string, idx int, newDate time.Time, status model.BookingStatus, failCount int) (model.StudentBooking, error) {
	toKey := calendar.DateKey(newDate)
	if toKey == fromKey {
		return model.StudentBooking{}, fmt.Errorf("%w: %s", ErrSameDate, toKey)
	}

	origin := e.sessions[fromKey]
	freed := origin.Turn == model.TurnUnset && len(origin.Students) == 1 &&
		calendar.MonthKeyOf(fromKey) == calendar.MonthKeyOf(toKey)
	if err := e.checkSeat(toKey, 1, freed); err != nil {
		return model.StudentBooking{}, err
	}

	old := origin.Students[idx]
	moved := model.StudentBooking{
		ID:        e.newID(),
		Name:      old.Name,
		Phone:     old.Phone,
		Status:    status,
		FailCount: failCount,
	}

	e.removeAt(fromKey, idx)
	e.insert(toKey, moved)

	return moved, nil
}

// Reschedule переносит запись с новым счётчиком неудач, статус SCHEDULED
func (e *Engine) Reschedule(bookingID string, newDate time.Time, newFailCount int) (model.StudentBooking, error) {
	if err := validateFailCount(newFailCount); err != nil {
		return model.StudentBooking{}, err
	}
	key, idx, err := e.locate(bookingID)
	if err != nil {
		return model.StudentBooking{}, err
	}
	return e.relocate(key, idx, newDate, model.BookingStatusScheduled, newFailCount)
}

// MoveStudent ручной перенос, статус и счётчик сохраняются как есть
func (e *Engine) MoveStudent(bookingID string, newDate time.Time) (model.StudentBooking, error) {
	key, idx, err := e.locate(bookingID)
	if err != nil {
		return model.StudentBooking{}, err
	}
	old := e.sessions[key].Students[idx]
	return e.relocate(key, idx, newDate, old.Status, old.FailCount)
}

// MoveEntireSession переносит весь день на другую дату и объединяет с уже существующим.
// ID записей не меняются: это склейка списков, а не пересоздание записей.
func (e *Engine) MoveEntireSession(from, to time.Time) error {
	fromKey := calendar.DateKey(from)
	toKey := calendar.DateKey(to)
	if fromKey == toKey {
		return fmt.Errorf("%w: %s", ErrSameDate, fromKey)
	}

	origin, ok := e.sessions[fromKey]
	if !ok {
		return fmt.Errorf("%w: session %s", ErrNotFound, fromKey)
	}

	freed := calendar.MonthKeyOf(fromKey) == calendar.MonthKeyOf(toKey)
	if err := e.checkSeat(toKey, len(origin.Students), freed); err != nil {
		return err
	}

	merged := e.sessions[toKey].Clone()
	if merged == nil {
		merged = &model.ExamSession{}
	}
	if merged.Turn == model.TurnUnset {
		merged.Turn = origin.Turn
	}
	if merged.ExaminerID == nil && origin.ExaminerID != nil {
		id := *origin.ExaminerID
		merged.ExaminerID = &id
	}
	merged.Students = append(merged.Students, origin.Students...)

	delete(e.sessions, fromKey)
	e.sessions[toKey] = merged
	e.cleanup(toKey)

	return nil
}

// DeleteSession удаляет день целиком. Подтверждение остаётся на стороне интерфейса.
func (e *Engine) DeleteSession(date time.Time) (model.ExamSession, error) {
	key := calendar.DateKey(date)
	session, ok := e.sessions[key]
	if !ok {
		return model.ExamSession{}, fmt.Errorf("%w: session %s", ErrNotFound, key)
	}
	delete(e.sessions, key)
	return *session, nil
}

// RemoveStudent удаляет запись без каких-либо последствий
func (e *Engine) RemoveStudent(bookingID string) (model.StudentBooking, error) {
	key, idx, err := e.locate(bookingID)
	if err != nil {
		return model.StudentBooking{}, err
	}
	return e.removeAt(key, idx), nil
}

// SetFailCount ручная правка счётчика неудач оператором
func (e *Engine) SetFailCount(bookingID string, failCount int) error {
	if err := validateFailCount(failCount); err != nil {
		return err
	}
	key, idx, err := e.locate(bookingID)
	if err != nil {
		return err
	}
	e.sessions[key].Students[idx].FailCount = failCount
	return nil
}

// SetTurn выбирает смену дня. TurnUnset на пустом дне удаляет день.
func (e *Engine) SetTurn(date time.Time, turn model.Turn) error {
	if !turn.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTurn, turn)
	}
	key := calendar.DateKey(date)
	session, ok := e.sessions[key]
	if !ok {
		if turn == model.TurnUnset {
			return nil
		}
		if err := e.checkActivation(key, false); err != nil {
			return err
		}
		session = &model.ExamSession{}
		e.sessions[key] = session
	}
	session.Turn = turn
	e.cleanup(key)
	return nil
}

// SetExaminer назначает экзаменатора на активный день. nil снимает назначение.
// Существование экзаменатора не проверяется.
func (e *Engine) SetExaminer(date time.Time, examinerID *string) error {
	key := calendar.DateKey(date)
	session, ok := e.sessions[key]
	if !ok {
		return fmt.Errorf("%w: session %s", ErrNotFound, key)
	}
	if examinerID == nil || *examinerID == "" {
		session.ExaminerID = nil
		return nil
	}
	id := *examinerID
	session.ExaminerID = &id
	return nil
}
