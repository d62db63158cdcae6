package common

import (
	"context"
	"errors"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// WithOperator создаёт HandlerContext и проверяет что пользователь - оператор.
// При ошибке автоматически отвечает пользователю.
func WithOperator(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := hc.RequireOperator(); err != nil {
		h.Logger.Warn("Operator check failed",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// IsRefusal true для отказов движка, которые не являются сбоями
func IsRefusal(err error) bool {
	return errors.Is(err, booking.ErrCapacityExceeded) ||
		errors.Is(err, booking.ErrSameDate) ||
		errors.Is(err, booking.ErrCooldown) ||
		errors.Is(err, booking.ErrPossibleDuplicate) ||
		errors.Is(err, booking.ErrNotFound) ||
		errors.Is(err, booking.ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFormat)
}

// HandleError логирует ошибку и показывает её пользователю
func HandleError(hc *HandlerContext, err error, operation string) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Error(err),
	}
	if IsRefusal(err) {
		hc.Handler.Logger.Info("Operation refused", fields...)
	} else {
		hc.Handler.Logger.Error("Operation failed", fields...)
	}
	hc.AnswerAlert(ErrorMessage(err))
}
