package keyboard

import (
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/go-telegram/bot/models"
)

// MonthPagination ряд ◀️ Mese ▶️ для перехода между месяцами
func MonthPagination(month time.Time) []models.InlineKeyboardButton {
	prev := calendar.MonthKey(calendar.AddMonths(month, -1))
	next := calendar.MonthKey(calendar.AddMonths(month, 1))
	return []models.InlineKeyboardButton{
		Button("◀️", callbacktypes.Data(callbacktypes.ViewMonth, prev)),
		Button("📅 "+formatting.FormatMonth(month), callbacktypes.Noop),
		Button("▶️", callbacktypes.Data(callbacktypes.ViewMonth, next)),
	}
}

// AddMonthPagination добавляет навигацию по месяцам к builder
func (b *Builder) AddMonthPagination(month time.Time) *Builder {
	return b.Row(MonthPagination(month)...)
}
