package keyboard

import (
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/go-telegram/bot/models"
)

// BackButton создаёт кнопку "Indietro"
func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Indietro", callbackData)
}

// BackToDayButton возвращает к карточке дня
func BackToDayButton(dateKey string) models.InlineKeyboardButton {
	return BackButton(callbacktypes.Data(callbacktypes.ViewDay, dateKey))
}

// BackToMonthButton возвращает к списку дней месяца
func BackToMonthButton(monthKey string) models.InlineKeyboardButton {
	return Button("📅 Mese", callbacktypes.Data(callbacktypes.ViewMonth, monthKey))
}

func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button("✖️ Annulla", callbackData)
}

func ConfirmButton(callbackData string) models.InlineKeyboardButton {
	return Button("✅ Conferma", callbackData)
}

// ConfirmCancelRow ряд Conferma / Annulla
func ConfirmCancelRow(confirmCallback, cancelCallback string) []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{
		ConfirmButton(confirmCallback),
		CancelButton(cancelCallback),
	}
}

func DeleteButton(callbackData string) models.InlineKeyboardButton {
	return Button("🗑 Elimina", callbackData)
}

// AddBackButton добавляет кнопку "Indietro" к builder
func (b *Builder) AddBackButton(callbackData string) *Builder {
	return b.Row(BackButton(callbackData))
}
