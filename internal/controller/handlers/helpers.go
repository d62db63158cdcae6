package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
)

// skipValue ответ оператора, когда необязательное поле не заполняется
const skipValue = "-"

// ParseCommand отделяет команду от аргументов: "/day@exam_bot 10/06/2025" -> ("day", "10/06/2025")
func ParseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	cmd, args, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// parseMonthArg месяц из аргумента команды: пусто - текущий, иначе YYYY-MM или MM/YYYY
func parseMonthArg(arg string, now time.Time) (time.Time, error) {
	loc := now.Location()
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), nil
	}
	if t, err := calendar.ParseMonthKey(arg, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("01/2006", arg, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: month %q", common.ErrInvalidFormat, arg)
}

// parseDayArg дата из аргумента команды, пусто - сегодня
func parseDayArg(arg string, today time.Time) (time.Time, error) {
	if strings.TrimSpace(arg) == "" {
		return today, nil
	}
	return calendar.ParseUserDate(arg, today.Location())
}

// parseLimitArgs "/limit 2025-06 4": месяц и необязательный лимит (-1 если не указан)
func parseLimitArgs(args string, now time.Time) (time.Time, int, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 0:
		month, err := parseMonthArg("", now)
		return month, -1, err
	case 1:
		// Одно число - лимит на текущий месяц
		if n, err := strconv.Atoi(fields[0]); err == nil {
			month, _ := parseMonthArg("", now)
			return month, n, nil
		}
		month, err := parseMonthArg(fields[0], now)
		return month, -1, err
	case 2:
		month, err := parseMonthArg(fields[0], now)
		if err != nil {
			return time.Time{}, 0, err
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("%w: limit %q", common.ErrInvalidFormat, fields[1])
		}
		return month, n, nil
	}
	return time.Time{}, 0, fmt.Errorf("%w: too many arguments", common.ErrInvalidFormat)
}

// parseYearArg год для /stats, пусто - текущий
func parseYearArg(arg string, now time.Time) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return now.Year(), nil
	}
	year, err := strconv.Atoi(arg)
	if err != nil || year < 2000 || year > 2100 {
		return 0, fmt.Errorf("%w: year %q", common.ErrInvalidFormat, arg)
	}
	return year, nil
}

// optionalValue "-" превращается в пустую строку
func optionalValue(text string) string {
	text = strings.TrimSpace(text)
	if text == skipValue {
		return ""
	}
	return text
}
