package formatting

import (
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// StatusDisplay emoji и текст для отображения
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetBookingStatusDisplay возвращает emoji и текст для статуса записи
func GetBookingStatusDisplay(status model.BookingStatus) StatusDisplay {
	displays := map[model.BookingStatus]StatusDisplay{
		model.BookingStatusScheduled: {"📝", "Prenotato"},
		model.BookingStatusPassed:    {"✅", "Promosso"},
		model.BookingStatusFailed:    {"❌", "Bocciato"},
		model.BookingStatusAbsent:    {"🚫", "Assente"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Sconosciuto"}
}

// GetTurnDisplay emoji и название смены
func GetTurnDisplay(turn model.Turn) StatusDisplay {
	switch turn {
	case model.TurnMorning:
		return StatusDisplay{"🌅", "Mattina"}
	case model.TurnAfternoon:
		return StatusDisplay{"🌇", "Pomeriggio"}
	default:
		return StatusDisplay{"❔", "turno da definire"}
	}
}

// FormatFailCount счётчик неудач: 2/3
func FormatFailCount(n int) string {
	return fmt.Sprintf("%d/%d", n, model.MaxFailCount)
}

// FormatStudent строка ученика в списке дня
func FormatStudent(i int, s model.StudentBooking) string {
	line := fmt.Sprintf("%d. %s", i+1, s.Name)
	if s.Phone != "" {
		line += " 📞 " + s.Phone
	}
	if s.FailCount > 0 {
		line += " ⚠️ " + FormatFailCount(s.FailCount)
	}
	return line
}
