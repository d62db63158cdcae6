// Package booking содержит движок записи на экзамены по вождению.
//
// Engine владеет всеми хранилищами (экзаменационные дни, лимиты по месяцам,
// лист ожидания, экзаменаторы) и меняет их только через свои операции.
// Каждая операция сначала проверяет все условия и только потом применяет
// изменения: при отказе состояние остаётся прежним.
//
// Engine не потокобезопасен, вызовы сериализует сервисный слой.
package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/google/uuid"
)

type Engine struct {
	sessions  model.SessionMap
	limits    model.MonthlyLimits
	waiting   []model.WaitingListEntry
	examiners []model.Examiner

	now   func() time.Time
	newID func() string
	loc   *time.Location
}

type Option func(*Engine)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithLocation задаёт локацию, в которой считаются календарные дни
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New создаёт движок из снимка. Снимок копируется.
func New(snapshot model.Snapshot, opts ...Option) *Engine {
	snap := snapshot.Clone()

	e := &Engine{
		sessions:  snap.Sessions,
		limits:    snap.MonthlyLimits,
		waiting:   snap.WaitingList,
		examiners: snap.Examiners,
		now:       time.Now,
		newID:     uuid.NewString,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}

	// Пустые дни в хранилище не держим
	for key, session := range e.sessions {
		if !session.IsActive() {
			delete(e.sessions, key)
		}
	}
	for month, limit := range e.limits {
		if limit <= 0 {
			delete(e.limits, month)
		}
	}

	return e
}

// Snapshot возвращает копию текущего состояния
func (e *Engine) Snapshot() model.Snapshot {
	return model.Snapshot{
		Sessions:      e.sessions,
		MonthlyLimits: e.limits,
		WaitingList:   e.waiting,
		Examiners:     e.examiners,
	}.Clone()
}

// Location локация календаря движка
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now текущий момент в локации движка
func (e *Engine) Now() time.Time {
	return e.now().In(e.loc)
}

// Today полночь сегодняшнего дня
func (e *Engine) Today() time.Time {
	return calendar.Day(e.Now())
}

// dateOf полночь календарного дня по ключу
func (e *Engine) dateOf(key string) time.Time {
	t, err := calendar.ParseDateKey(key, e.loc)
	if err != nil {
		// Ключи в хранилище всегда валидны: их пишет только движок и проверенный импорт
		panic(fmt.Sprintf("corrupt session key %q", key))
	}
	return t
}

// locate находит запись по ID
func (e *Engine) locate(bookingID string) (string, int, error) {
	for key, session := range e.sessions {
		if idx := session.IndexOf(bookingID); idx >= 0 {
			return key, idx, nil
		}
	}
	return "", -1, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
}

// checkSeat проверяет что на дату можно добавить учеников.
// freed=true если операция одновременно освобождает активный день того же месяца.
func (e *Engine) checkSeat(key string, incoming int, freed bool) error {
	session := e.sessions[key]
	current := 0
	if session != nil {
		current = len(session.Students)
	}
	if current+incoming > model.MaxStudentsPerSession {
		return fmt.Errorf("%w: %s has %d of %d students", ErrCapacityExceeded, key, current, model.MaxStudentsPerSession)
	}
	if !session.IsActive() {
		return e.checkActivation(key, freed)
	}
	return nil
}

// checkActivation проверяет месячный лимит перед активацией нового дня
func (e *Engine) checkActivation(key string, freed bool) error {
	month := calendar.MonthKeyOf(key)
	limit, ok := e.limits[month]
	if !ok {
		return nil
	}
	active := e.activeInMonth(month)
	if freed {
		active--
	}
	if active >= limit {
		return fmt.Errorf("%w: %s has %d of %d active days", ErrMonthlyLimitReached, month, active, limit)
	}
	return nil
}

// insert добавляет запись в конец списка, создавая день при необходимости
func (e *Engine) insert(key string, booking model.StudentBooking) {
	session, ok := e.sessions[key]
	if !ok {
		session = &model.ExamSession{}
		e.sessions[key] = session
	}
	session.Students = append(session.Students, booking)
}

// removeAt удаляет запись и убирает опустевший день
func (e *Engine) removeAt(key string, idx int) model.StudentBooking {
	session := e.sessions[key]
	removed := session.Students[idx]
	students := make([]model.StudentBooking, 0, len(session.Students)-1)
	students = append(students, session.Students[:idx]...)
	students = append(students, session.Students[idx+1:]...)
	session.Students = students
	e.cleanup(key)
	return removed
}

// cleanup удаляет неактивный день
func (e *Engine) cleanup(key string) {
	if session, ok := e.sessions[key]; ok && !session.IsActive() {
		delete(e.sessions, key)
	}
}

func validateFailCount(n int) error {
	if n < 0 || n > model.MaxFailCount {
		return fmt.Errorf("%w: %d", ErrInvalidFailCount, n)
	}
	return nil
}
