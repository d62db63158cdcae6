package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
)

// FormatStats годовая сводка для /stats
func FormatStats(stats booking.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Statistiche %d</b>\n\n", stats.Year)
	fmt.Fprintf(&sb, "📅 %d %s\n", stats.Sessions, PluralizeSessions(stats.Sessions))
	fmt.Fprintf(&sb, "👥 %s prenotati\n", CountStudents(stats.Students))

	if stats.Sessions > 0 {
		sb.WriteString("\n<b>Per mese</b>\n")
		for i, n := range stats.SessionsByMonth {
			if n == 0 {
				continue
			}
			fmt.Fprintf(&sb, "%s: %d\n", MonthName(time.Month(i+1)), n)
		}
	}

	if len(stats.Examiners) > 0 {
		sb.WriteString("\n<b>Esaminatori</b>\n")
		for _, ex := range stats.Examiners {
			fmt.Fprintf(&sb, "%s: %d %s\n", EscapeHTML(ex.Name), ex.Sessions, PluralizeSessions(ex.Sessions))
		}
	}

	fmt.Fprintf(&sb, "\n⏳ Lista d'attesa: %d", stats.WaitingList)
	if stats.Frozen > 0 {
		fmt.Fprintf(&sb, " (🔒 %d in attesa di sblocco)", stats.Frozen)
	}
	return sb.String()
}
