package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/sessions"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// maxSearchResults сколько найденных записей показывать кнопками
const maxSearchResults = 20

func askPhoneText(name string) string {
	return fmt.Sprintf("👤 <b>%s</b>\n\nScrivi il numero di telefono, oppure %s se non c'è.",
		formatting.EscapeHTML(name), skipValue)
}

const askDateText = "📅 Scrivi la data dell'esame (GG/MM/AAAA)."

// ===== Запись ученика =====

func (h *Handlers) handleBookNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	name := strings.TrimSpace(update.Message.Text)
	if name == "" {
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(booking.ErrEmptyName))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyName, name)
	h.stateManager.SetState(telegramID, state.StateBookPhone)
	h.sendMessage(ctx, b, update.Message.Chat.ID, askPhoneText(name))
}

func (h *Handlers) handleBookPhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	h.stateManager.SetData(telegramID, state.KeyPhone, optionalValue(update.Message.Text))

	// Дата уже выбрана, если запись начата из карточки дня
	if dateKey, ok := h.stateManager.GetString(telegramID, state.KeyDate); ok {
		h.askFailCount(ctx, b, update.Message.Chat.ID, telegramID, dateKey)
		return
	}

	h.stateManager.SetState(telegramID, state.StateBookDate)
	h.sendMessage(ctx, b, update.Message.Chat.ID, askDateText)
}

func (h *Handlers) handleBookDateStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	date, err := calendar.ParseUserDate(update.Message.Text, h.examService.Location())
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\n"+askDateText)
		return
	}

	// Ранняя проверка мест, чтобы не спрашивать лишнего. Окончательно решает движок.
	if session, ok := h.examService.Session(date); ok && session.IsFull() {
		h.sendError(ctx, b, chatID, common.ErrorMessage(booking.ErrCapacityExceeded)+"\n\n"+askDateText)
		return
	}
	if !h.examService.IsDateSelectable(date) {
		h.sendError(ctx, b, chatID, common.ErrorMessage(booking.ErrMonthlyLimitReached)+"\n\n"+askDateText)
		return
	}

	dateKey := calendar.DateKey(date)
	h.stateManager.SetData(telegramID, state.KeyDate, dateKey)
	h.askFailCount(ctx, b, chatID, telegramID, dateKey)
}

func (h *Handlers) askFailCount(ctx context.Context, b *bot.Bot, chatID, telegramID int64, dateKey string) {
	h.stateManager.SetState(telegramID, state.StateBookFailCount)

	buttons := make([]models.InlineKeyboardButton, 0, model.MaxFailCount+1)
	for n := 0; n <= model.MaxFailCount; n++ {
		buttons = append(buttons, keyboard.Button(fmt.Sprintf("%d", n),
			callbacktypes.Data(callbacktypes.BookFailCount, fmt.Sprintf("%d", n))))
	}
	kb := keyboard.NewBuilder().
		Row(buttons...).
		Row(keyboard.CancelButton(callbacktypes.Data(callbacktypes.ViewDay, dateKey)))

	text := fmt.Sprintf("⚠️ Quante bocciature ha già l'allievo?\n\n📅 Esame: %s",
		formatting.FormatDateKey(dateKey, h.examService.Location()))
	h.sendScreen(ctx, b, chatID, common.Screen{Text: text, Keyboard: kb.Build()})
}

// ===== Лист ожидания =====

func (h *Handlers) handleWaitingNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	name := strings.TrimSpace(update.Message.Text)
	if name == "" {
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(booking.ErrEmptyName))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyName, name)
	h.stateManager.SetState(telegramID, state.StateWaitingPhone)
	h.sendMessage(ctx, b, update.Message.Chat.ID, askPhoneText(name))
}

func (h *Handlers) handleWaitingPhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	name, _ := h.stateManager.GetString(telegramID, state.KeyName)

	entry, err := h.examService.AddToWaitingList(ctx, name, optionalValue(update.Message.Text))
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.reportError(ctx, b, chatID, err, "add_waiting")
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ %s aggiunto alla lista d'attesa", formatting.EscapeHTML(entry.Name)))
	h.sendScreen(ctx, b, chatID, common.BuildWaitingListScreen(h.examService))
}

// ===== Ввод новой даты =====

// readDate разбирает дату из сообщения, при ошибке просит ввести снова
func (h *Handlers) readDate(ctx context.Context, b *bot.Bot, update *models.Update) (time.Time, bool) {
	date, err := calendar.ParseUserDate(update.Message.Text, h.examService.Location())
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err)+"\n\n"+askDateText)
		return time.Time{}, false
	}
	return date, true
}

func (h *Handlers) handleMoveStudentDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	bookingID, ok := h.stateManager.GetString(telegramID, state.KeyBookingID)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}
	date, ok := h.readDate(ctx, b, update)
	if !ok {
		return
	}

	moved, err := h.examService.MoveStudent(ctx, bookingID, date)
	if err != nil {
		// Диалог продолжается: можно ввести другую дату
		h.reportError(ctx, b, chatID, err, "move_student")
		return
	}
	h.stateManager.ClearState(telegramID)

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ %s spostato al %s",
		formatting.EscapeHTML(moved.Name), formatting.FormatDate(date)))
	h.sendScreen(ctx, b, chatID, common.BuildDayScreen(h.examService, date))
}

func (h *Handlers) handleMoveSessionDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	fromKey, ok := h.stateManager.GetString(telegramID, state.KeyDate)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}
	from, err := calendar.ParseDateKey(fromKey, h.examService.Location())
	if err != nil {
		h.stateManager.ClearState(telegramID)
		h.reportError(ctx, b, chatID, err, "move_session")
		return
	}
	to, ok := h.readDate(ctx, b, update)
	if !ok {
		return
	}

	if err := h.examService.MoveEntireSession(ctx, from, to); err != nil {
		h.reportError(ctx, b, chatID, err, "move_session")
		return
	}
	h.stateManager.ClearState(telegramID)

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Sessione del %s spostata al %s",
		formatting.FormatDate(from), formatting.FormatDate(to)))
	h.sendScreen(ctx, b, chatID, common.BuildDayScreen(h.examService, to))
}

func (h *Handlers) handleOutcomeDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	bookingID, ok1 := h.stateManager.GetString(telegramID, state.KeyBookingID)
	outcome, ok2 := h.stateManager.GetString(telegramID, state.KeyOutcome)
	if !ok1 || !ok2 {
		h.stateManager.ClearState(telegramID)
		return
	}
	date, ok := h.readDate(ctx, b, update)
	if !ok {
		return
	}

	result, err := h.examService.RecordOutcome(ctx, bookingID, model.BookingStatus(outcome), &date)
	if err != nil {
		h.reportError(ctx, b, chatID, err, "record_outcome")
		return
	}
	h.stateManager.ClearState(telegramID)

	h.sendMessage(ctx, b, chatID, formatting.EscapeHTML(sessions.OutcomeSummary(result, formatting.FormatDate(date))))
	h.sendScreen(ctx, b, chatID, common.BuildDayScreen(h.examService, date))
}

// ===== Экзаменаторы =====

func (h *Handlers) handleExaminerNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.stateManager.ClearState(update.Message.From.ID)
	h.addExaminer(ctx, b, update.Message.Chat.ID, update.Message.Text)
}

func (h *Handlers) addExaminer(ctx context.Context, b *bot.Bot, chatID int64, name string) {
	examiner, err := h.examService.AddExaminer(ctx, name)
	if err != nil {
		h.reportError(ctx, b, chatID, err, "add_examiner")
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Esaminatore %s aggiunto", formatting.EscapeHTML(examiner.Name)))
	h.sendScreen(ctx, b, chatID, common.BuildExaminersScreen(h.examService))
}

func (h *Handlers) handleExaminerNoteStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	examinerID, ok := h.stateManager.GetString(telegramID, state.KeyExaminerID)
	h.stateManager.ClearState(telegramID)
	if !ok {
		return
	}

	if _, err := h.examService.AddExaminerNote(ctx, examinerID, update.Message.Text); err != nil {
		h.reportError(ctx, b, chatID, err, "add_examiner_note")
		return
	}

	screen, err := common.BuildExaminerScreen(h.examService, examinerID)
	if err != nil {
		h.reportError(ctx, b, chatID, err, "add_examiner_note")
		return
	}
	h.sendScreen(ctx, b, chatID, screen)
}

// ===== Поиск =====

func (h *Handlers) sendSearchResults(ctx context.Context, b *bot.Bot, chatID int64, query string) {
	results := h.examService.Search(query)

	h.logger.Debug("Search",
		zap.String("query", query),
		zap.Int("results", len(results)))

	if len(results) == 0 {
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("🔍 Nessun allievo trovato per «%s»", formatting.EscapeHTML(query)))
		return
	}

	text := fmt.Sprintf("🔍 Risultati per «%s»: %d", formatting.EscapeHTML(query), len(results))
	if len(results) > maxSearchResults {
		text += fmt.Sprintf("\nMostro i primi %d, affina la ricerca.", maxSearchResults)
		results = results[:maxSearchResults]
	}

	kb := keyboard.NewBuilder()
	for _, r := range results {
		label := fmt.Sprintf("%s · %s", r.Booking.Name, formatting.FormatDateKey(r.DateKey, h.examService.Location()))
		kb.Row(keyboard.Button(label, callbacktypes.Data(callbacktypes.ViewStudent, r.Booking.ID)))
	}
	h.sendScreen(ctx, b, chatID, common.Screen{Text: text, Keyboard: kb.Build()})
}
