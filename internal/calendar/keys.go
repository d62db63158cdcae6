// Package calendar переводит календарные даты в ключи хранилища и обратно.
// Ключ строится из полей даты в её собственной локации, без перевода часовых поясов.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateKeyLayout  = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

var ErrInvalidKey = errors.New("invalid calendar key")

// DateKey возвращает ключ YYYY-MM-DD
func DateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// MonthKey возвращает ключ YYYY-MM
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthKeyOf месяц по ключу даты (без разбора)
func MonthKeyOf(dateKey string) string {
	if len(dateKey) < len(MonthKeyLayout) {
		return dateKey
	}
	return dateKey[:len(MonthKeyLayout)]
}

// ParseDateKey разбирает YYYY-MM-DD в полночь указанной локации
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, location(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidKey, key)
	}
	return t, nil
}

// ParseMonthKey разбирает YYYY-MM в первое число месяца
func ParseMonthKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthKeyLayout, key, location(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrInvalidKey, key)
	}
	return t, nil
}

// userDateLayouts форматы, которые оператор может ввести руками
var userDateLayouts = []string{
	DateKeyLayout,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// ParseUserDate разбирает дату в ISO или итальянском формате
func ParseUserDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range userDateLayouts {
		if t, err := time.ParseInLocation(layout, s, location(loc)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidKey, s)
}

// Day полночь календарного дня t в его локации
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddMonths сдвигает дату на n календарных месяцев.
// Переполнение нормализуется как в time.AddDate: 31 января + 1 месяц = 3 марта.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// AddDays сдвигает дату на n календарных дней
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween количество календарных дней от from до to
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DaysIn количество дней в месяце
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
