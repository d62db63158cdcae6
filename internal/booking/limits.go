package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
)

// SetMonthlyLimit задаёт максимум активных дней в месяце. 0 снимает ограничение.
// Уже активные дни сверх лимита остаются, лимит мешает только новым.
func (e *Engine) SetMonthlyLimit(monthKey string, limit int) error {
	if _, err := calendar.ParseMonthKey(monthKey, e.loc); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, monthKey)
	}
	if limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		delete(e.limits, monthKey)
		return nil
	}
	e.limits[monthKey] = limit
	return nil
}

// MonthlyLimit лимит месяца, ok=false если лимита нет
func (e *Engine) MonthlyLimit(monthKey string) (int, bool) {
	limit, ok := e.limits[monthKey]
	return limit, ok
}

// ActiveSessionsInMonth количество активных дней в месяце
func (e *Engine) ActiveSessionsInMonth(monthKey string) int {
	return e.activeInMonth(monthKey)
}

func (e *Engine) activeInMonth(monthKey string) int {
	count := 0
	for key, session := range e.sessions {
		if calendar.MonthKeyOf(key) == monthKey && session.IsActive() {
			count++
		}
	}
	return count
}

// IsDateSelectable можно ли использовать дату: она уже активна,
// у месяца нет лимита или лимит ещё не исчерпан.
func (e *Engine) IsDateSelectable(date time.Time) bool {
	key := calendar.DateKey(date)
	if e.sessions[key].IsActive() {
		return true
	}
	limit, ok := e.limits[calendar.MonthKeyOf(key)]
	if !ok {
		return true
	}
	return e.activeInMonth(calendar.MonthKeyOf(key)) < limit
}
