package handlers

import (
	"context"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireOperator проверяет что сообщение пришло от оператора
func (h *Handlers) requireOperator(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}

	telegramID := update.Message.From.ID
	if h.isOperator != nil && !h.isOperator(telegramID) {
		h.logger.Warn("Message from non-operator",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", update.Message.From.Username))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrNotOperator))
		return false
	}

	return true
}

// reportError логирует ошибку операции и показывает её пользователю
func (h *Handlers) reportError(ctx context.Context, b *bot.Bot, chatID int64, err error, operation string) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	}
	if common.IsRefusal(err) {
		h.logger.Info("Operation refused", fields...)
	} else {
		h.logger.Error("Operation failed", fields...)
	}
	h.sendError(ctx, b, chatID, common.ErrorMessage(err))
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет HTML сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendScreen(ctx, b, chatID, common.Screen{Text: text})
}

// sendScreen отправляет экран новым сообщением
func (h *Handlers) sendScreen(ctx context.Context, b *bot.Bot, chatID int64, screen common.Screen) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      screen.Text,
		ParseMode: models.ParseModeHTML,
	}
	if screen.Keyboard != nil {
		params.ReplyMarkup = screen.Keyboard
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
