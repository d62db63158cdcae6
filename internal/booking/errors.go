package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Отказы движка. Состояние при отказе не меняется.
var (
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrMonthlyLimitReached = fmt.Errorf("%w: monthly session limit reached", ErrCapacityExceeded)
	ErrSameDate            = errors.New("source and destination date are the same")
	ErrCooldown            = errors.New("waiting list entry is still in cooldown")
	ErrPossibleDuplicate   = errors.New("possible duplicate student")
	ErrNotFound            = errors.New("not found")
)

// Ошибки валидации входных данных
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyName        = fmt.Errorf("%w: name is empty", ErrInvalidInput)
	ErrInvalidFailCount = fmt.Errorf("%w: fail count out of range", ErrInvalidInput)
	ErrInvalidLimit     = fmt.Errorf("%w: monthly limit must not be negative", ErrInvalidInput)
	ErrInvalidMonth     = fmt.Errorf("%w: bad month key", ErrInvalidInput)
	ErrPastDate         = fmt.Errorf("%w: date is in the past", ErrInvalidInput)
	ErrInvalidOutcome   = fmt.Errorf("%w: unsupported outcome", ErrInvalidInput)
	ErrInvalidTurn      = fmt.Errorf("%w: unknown turn", ErrInvalidInput)
)

// DuplicateMatch существующая запись с тем же именем
type DuplicateMatch struct {
	DateKey   string
	BookingID string
	Name      string
	Phone     string
}

// DuplicateError предупреждение о возможном дубликате.
// Оператор может повторить запись с подтверждением.
type DuplicateError struct {
	Name    string
	Matches []DuplicateMatch
}

func (e *DuplicateError) Error() string {
	dates := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		dates = append(dates, m.DateKey)
	}
	return fmt.Sprintf("%s: %q already booked on %s", ErrPossibleDuplicate, e.Name, strings.Join(dates, ", "))
}

func (e *DuplicateError) Unwrap() error {
	return ErrPossibleDuplicate
}

// CooldownError ученик из листа ожидания ещё не может быть записан
type CooldownError struct {
	EntryID string
	Until   time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: entry %s bookable after %s", ErrCooldown, e.EntryID, e.Until.Format(time.RFC3339))
}

func (e *CooldownError) Unwrap() error {
	return ErrCooldown
}
