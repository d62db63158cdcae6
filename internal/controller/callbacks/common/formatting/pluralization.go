package formatting

import (
	"fmt"
	"html"
)

// PluralizeStudents "allievo" или "allievi"
func PluralizeStudents(count int) string {
	if count == 1 {
		return "allievo"
	}
	return "allievi"
}

// PluralizeSessions "sessione" или "sessioni"
func PluralizeSessions(count int) string {
	if count == 1 {
		return "sessione"
	}
	return "sessioni"
}

// PluralizeDays "giorno" или "giorni"
func PluralizeDays(count int) string {
	if count == 1 {
		return "giorno"
	}
	return "giorni"
}

// CountStudents число с правильной формой: 1 allievo, 3 allievi
func CountStudents(count int) string {
	return fmt.Sprintf("%d %s", count, PluralizeStudents(count))
}

// EscapeHTML экранирует пользовательский текст для ParseModeHTML
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
