package common

import (
	"context"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// Arg аргумент callback data по номеру
func Arg(args []string, i int) (string, error) {
	if i >= len(args) || args[i] == "" {
		return "", ErrInvalidFormat
	}
	return args[i], nil
}

// DateArg аргумент-дата в формате YYYY-MM-DD
func DateArg(args []string, i int, loc *time.Location) (time.Time, string, error) {
	key, err := Arg(args, i)
	if err != nil {
		return time.Time{}, "", err
	}
	date, err := calendar.ParseDateKey(key, loc)
	if err != nil {
		return time.Time{}, "", ErrInvalidFormat
	}
	return date, key, nil
}

// OutcomeFromCode переводит код кнопки в статус
func OutcomeFromCode(code string) (model.BookingStatus, error) {
	switch code {
	case callbacktypes.OutcomePassed:
		return model.BookingStatusPassed, nil
	case callbacktypes.OutcomeFailed:
		return model.BookingStatusFailed, nil
	case callbacktypes.OutcomeAbsent:
		return model.BookingStatusAbsent, nil
	}
	return "", ErrInvalidFormat
}

// OutcomeCode обратное преобразование для кнопок
func OutcomeCode(status model.BookingStatus) string {
	switch status {
	case model.BookingStatusPassed:
		return callbacktypes.OutcomePassed
	case model.BookingStatusFailed:
		return callbacktypes.OutcomeFailed
	case model.BookingStatusAbsent:
		return callbacktypes.OutcomeAbsent
	}
	return ""
}

// TurnFromCode переводит код кнопки в смену
func TurnFromCode(code string) (model.Turn, error) {
	switch code {
	case callbacktypes.TurnMorning:
		return model.TurnMorning, nil
	case callbacktypes.TurnAfternoon:
		return model.TurnAfternoon, nil
	case callbacktypes.TurnUnset:
		return model.TurnUnset, nil
	}
	return "", ErrInvalidFormat
}
