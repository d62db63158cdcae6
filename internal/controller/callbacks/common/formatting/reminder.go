package formatting

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/exam_booking_bot/internal/service"
)

// ReminderTitle заголовок напоминания в зависимости от того, сколько дней осталось
func ReminderTitle(daysUntil int) string {
	switch {
	case daysUntil == 0:
		return "ESAME OGGI!"
	case daysUntil == 1:
		return "Esame Domani"
	case daysUntil <= 3:
		return fmt.Sprintf("Esame tra %d giorni", daysUntil)
	case daysUntil <= 7:
		return "Esame questa settimana"
	default:
		return fmt.Sprintf("Esame tra %d giorni", daysUntil)
	}
}

// ReminderBody текст напоминания. В день экзамена перечисляются ученики.
func ReminderBody(r service.Reminder) string {
	turn := GetTurnDisplay(r.Turn).Text
	count := len(r.Students)

	if r.DaysUntil == 0 {
		names := make([]string, 0, count)
		for _, s := range r.Students {
			names = append(names, s.Name)
		}
		list := strings.Join(names, ", ")
		if list == "" {
			list = "Nessun allievo"
		}
		return fmt.Sprintf("%s - %d allievi:\n%s", turn, count, list)
	}

	return fmt.Sprintf("%s (%s)\n%d allievi prenotati", FormatDate(r.Date), turn, count)
}

// ReminderText полное сообщение для Telegram
func ReminderText(r service.Reminder) string {
	var sb strings.Builder
	sb.WriteString("🔔 <b>")
	sb.WriteString(ReminderTitle(r.DaysUntil))
	sb.WriteString("</b>\n\n")
	sb.WriteString(EscapeHTML(ReminderBody(r)))
	if r.Examiner != nil {
		sb.WriteString("\n👤 Esaminatore: ")
		sb.WriteString(EscapeHTML(r.Examiner.Name))
	}
	return sb.String()
}
