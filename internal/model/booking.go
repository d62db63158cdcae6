package model

import (
	"encoding/json"
	"fmt"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "SCHEDULED" // Записан на экзамен
	BookingStatusPassed    BookingStatus = "PASSED"    // Сдал
	BookingStatusFailed    BookingStatus = "FAILED"    // Не сдал
	BookingStatusAbsent    BookingStatus = "ABSENT"    // Не явился
)

// MaxFailCount после третьей неудачи ученик уходит в лист ожидания
const MaxFailCount = 3

// Valid проверяет что статус известен
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusScheduled, BookingStatusPassed, BookingStatusFailed, BookingStatusAbsent:
		return true
	}
	return false
}

// IsOutcome true для статусов, которые фиксируют результат экзамена
func (s BookingStatus) IsOutcome() bool {
	return s == BookingStatusPassed || s == BookingStatusFailed || s == BookingStatusAbsent
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode booking status: %w", err)
	}
	// Старые выгрузки могут не содержать статус
	if raw == "" {
		*s = BookingStatusScheduled
		return nil
	}
	status := BookingStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown booking status %q", raw)
	}
	*s = status
	return nil
}

// StudentBooking запись ученика на конкретную дату.
// При переносе создаётся новая запись с новым ID.
type StudentBooking struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone,omitempty"`
	Status    BookingStatus `json:"status"`
	FailCount int           `json:"failCount"` // Сколько раз уже не сдал (0-3)
}
