package common

import (
	"bytes"
	"context"
	"strings"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandlerContext содержит общие данные для обработки callback
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	Args       []string // Аргументы callback data после действия
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	var chatID int64
	if msg != nil {
		chatID = msg.Chat.ID
	}
	_, args := callbacktypes.ParseData(callback.Data)

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		Args:       args,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// Service сокращение для h.ExamService
func (hc *HandlerContext) Service() *service.ExamService {
	return hc.Handler.ExamService
}

// RequireOperator проверяет что пользователь может управлять записью
func (hc *HandlerContext) RequireOperator() error {
	if hc.Handler.IsOperator != nil && !hc.Handler.IsOperator(hc.TelegramID) {
		return ErrNotOperator
	}
	return nil
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// IsMessageNotModifiedError Telegram отказывается редактировать сообщение без изменений
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, &bot.EditMessageTextParams{
		ChatID:      hc.ChatID,
		MessageID:   hc.Message.ID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
	})

	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// ShowScreen показывает экран на месте текущего сообщения
func (hc *HandlerContext) ShowScreen(screen Screen) error {
	return hc.EditMessage(screen.Text, screen.Keyboard)
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    hc.ChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.SendMessage(hc.Ctx, params)
	return err
}

// SendDocument отправляет файл
func (hc *HandlerContext) SendDocument(filename string, data []byte, caption string) error {
	_, err := hc.Bot.SendDocument(hc.Ctx, &bot.SendDocumentParams{
		ChatID:   hc.ChatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:  caption,
	})
	return err
}

// ClearState очищает состояние пользователя
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.TelegramID)
}

// StartDialog начинает диалог с чистыми данными
func (hc *HandlerContext) StartDialog(state callbacktypes.UserState, data map[string]interface{}) {
	hc.Handler.StateManager.ClearState(hc.TelegramID)
	hc.Handler.StateManager.SetState(hc.TelegramID, state)
	for k, v := range data {
		hc.Handler.StateManager.SetData(hc.TelegramID, k, v)
	}
}

// SetState устанавливает состояние пользователя
func (hc *HandlerContext) SetState(state callbacktypes.UserState) {
	hc.Handler.StateManager.SetState(hc.TelegramID, state)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key string, value interface{}) {
	hc.Handler.StateManager.SetData(hc.TelegramID, key, value)
}

// GetData получает данные из state
func (hc *HandlerContext) GetData(key string) (interface{}, bool) {
	return hc.Handler.StateManager.GetData(hc.TelegramID, key)
}

// GetString строковые данные из state
func (hc *HandlerContext) GetString(key string) (string, bool) {
	value, ok := hc.GetData(key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}
