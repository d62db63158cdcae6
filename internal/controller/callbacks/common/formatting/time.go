package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = [...]string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

var weekdayNames = [...]string{
	"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato",
}

var weekdayShort = [...]string{"Do", "Lu", "Ma", "Me", "Gi", "Ve", "Sa"}

// FormatDate дата как в итальянской локали: 10/06/2025
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatDateLong дата с днём недели: lunedì 10 giugno 2025
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", weekdayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
}

// FormatDateTime дата и время
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// FormatDateKey переводит YYYY-MM-DD в итальянский формат, при ошибке возвращает ключ как есть
func FormatDateKey(key string, loc *time.Location) string {
	t, err := calendar.ParseDateKey(key, loc)
	if err != nil {
		return key
	}
	return FormatDate(t)
}

// MonthName название месяца с заглавной буквы
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return "?"
	}
	// Caser хранит состояние, поэтому создаётся на каждый вызов
	return cases.Title(language.Italian).String(monthNames[month-1])
}

// FormatMonth месяц и год: Giugno 2025
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
}

// WeekdayShort двухбуквенное сокращение дня недели
func WeekdayShort(weekday time.Weekday) string {
	return weekdayShort[weekday]
}
