package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 <b>Comandi</b>\n\n" +
	"/month [AAAA-MM] - calendario del mese\n" +
	"/day [GG/MM/AAAA] - sessione di un giorno\n" +
	"/book - prenota un allievo\n" +
	"/search &lt;nome&gt; - cerca un allievo\n" +
	"/waiting - lista d'attesa\n" +
	"/waitadd - aggiungi alla lista d'attesa\n" +
	"/limit [AAAA-MM] [n] - limite di sessioni nel mese\n" +
	"/examiners - esaminatori e note\n" +
	"/examineradd &lt;nome&gt; - nuovo esaminatore\n" +
	"/stats [anno] - statistiche\n" +
	"/backup - scarica i dati\n" +
	"/restore - ripristina da file\n" +
	"/cancel - annulla l'operazione in corso"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}

	chatID := update.Message.Chat.ID
	if h.onStart != nil {
		h.onStart(chatID)
	}

	h.logger.Info("Operator started the bot",
		zap.Int64("telegram_id", update.Message.From.ID),
		zap.Int64("chat_id", chatID))

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"👋 Ciao, %s!\n\nQui gestisci le prenotazioni degli esami di guida. "+
			"In questa chat riceverai anche i promemoria degli esami.\n\n%s",
		formatting.EscapeHTML(update.Message.From.FirstName), helpText))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Nessuna operazione da annullare.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Operazione annullata.")
}

// HandleMonth обрабатывает /month [AAAA-MM]: картинка месяца и список дней
func (h *Handlers) HandleMonth(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID
	_, args := ParseCommand(update.Message.Text)

	month, err := parseMonthArg(args, h.examService.Now())
	if err != nil {
		h.reportError(ctx, b, chatID, err, "month")
		return
	}

	monthKey := calendar.MonthKey(month)
	img, err := common.GenerateMonthImage(common.MonthImageData{
		Month:    month,
		Today:    h.examService.Today(),
		Sessions: h.examService.SessionsInMonth(monthKey),
		Limit:    h.examService.Month(monthKey).Limit,
	})
	if err != nil {
		// Без картинки месяц всё равно виден списком
		h.logger.Error("Failed to render month image", zap.String("month", monthKey), zap.Error(err))
	} else {
		_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   &models.InputFileUpload{Filename: "mese-" + monthKey + ".png", Data: bytes.NewReader(img)},
			Caption: "📅 " + formatting.FormatMonth(month),
		})
		if err != nil {
			h.logger.Error("Failed to send month image", zap.String("month", monthKey), zap.Error(err))
		}
	}

	h.sendScreen(ctx, b, chatID, common.BuildMonthScreen(h.examService, month))
}

// HandleDay обрабатывает /day [GG/MM/AAAA]
func (h *Handlers) HandleDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID
	_, args := ParseCommand(update.Message.Text)

	date, err := parseDayArg(args, h.examService.Today())
	if err != nil {
		h.reportError(ctx, b, chatID, err, "day")
		return
	}
	h.sendScreen(ctx, b, chatID, common.BuildDayScreen(h.examService, date))
}

// HandleBook обрабатывает /book [nome]: начинает запись ученика
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	_, name := ParseCommand(update.Message.Text)

	if name != "" {
		h.stateManager.Start(telegramID, state.StateBookPhone, map[string]interface{}{state.KeyName: name})
		h.sendMessage(ctx, b, chatID, askPhoneText(name))
		return
	}

	h.stateManager.Start(telegramID, state.StateBookName, nil)
	h.sendMessage(ctx, b, chatID, "➕ <b>Nuova prenotazione</b>\n\nScrivi nome e cognome dell'allievo.\nPer annullare usa /cancel")
}

// HandleSearch обрабатывает /search <nome>
func (h *Handlers) HandleSearch(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	_, query := ParseCommand(update.Message.Text)

	if query == "" {
		h.stateManager.Start(update.Message.From.ID, state.StateSearch, nil)
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🔍 Scrivi il nome (o parte del nome) da cercare.")
		return
	}
	h.sendSearchResults(ctx, b, update.Message.Chat.ID, query)
}

// HandleWaiting обрабатывает /waiting
func (h *Handlers) HandleWaiting(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	h.sendScreen(ctx, b, update.Message.Chat.ID, common.BuildWaitingListScreen(h.examService))
}

// HandleWaitAdd обрабатывает /waitadd [nome]
func (h *Handlers) HandleWaitAdd(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	_, name := ParseCommand(update.Message.Text)

	if name != "" {
		h.stateManager.Start(telegramID, state.StateWaitingPhone, map[string]interface{}{state.KeyName: name})
		h.sendMessage(ctx, b, chatID, askPhoneText(name))
		return
	}

	h.stateManager.Start(telegramID, state.StateWaitingName, nil)
	h.sendMessage(ctx, b, chatID, "⏳ <b>Lista d'attesa</b>\n\nScrivi nome e cognome dell'allievo.\nPer annullare usa /cancel")
}

// HandleLimit обрабатывает /limit [AAAA-MM] [n]. Без числа показывает текущий лимит.
func (h *Handlers) HandleLimit(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID
	_, args := ParseCommand(update.Message.Text)

	month, limit, err := parseLimitArgs(args, h.examService.Now())
	if err != nil {
		h.reportError(ctx, b, chatID, err, "limit")
		return
	}
	monthKey := calendar.MonthKey(month)

	if limit >= 0 {
		if err := h.examService.SetMonthlyLimit(ctx, monthKey, limit); err != nil {
			h.reportError(ctx, b, chatID, err, "limit")
			return
		}
	}

	info := h.examService.Month(monthKey)
	text := fmt.Sprintf("🔢 <b>%s</b>\n\n", formatting.FormatMonth(month))
	if info.Limit > 0 {
		text += fmt.Sprintf("Limite: %d %s\nAttive: %d", info.Limit, formatting.PluralizeSessions(info.Limit), info.Active)
	} else {
		text += fmt.Sprintf("Nessun limite\nAttive: %d", info.Active)
	}
	if limit < 0 {
		text += "\n\nPer cambiarlo: /limit " + monthKey + " &lt;n&gt; (0 = nessun limite)"
	} else if info.Limit > 0 && info.Active > info.Limit {
		text += "\n\n⚠️ Il mese ha già più sessioni del limite: le sessioni esistenti restano, ma non se ne possono aprire di nuove."
	}
	h.sendMessage(ctx, b, chatID, text)
}

// HandleStats обрабатывает /stats [anno]
func (h *Handlers) HandleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID
	_, args := ParseCommand(update.Message.Text)

	year, err := parseYearArg(args, h.examService.Now())
	if err != nil {
		h.reportError(ctx, b, chatID, err, "stats")
		return
	}
	h.sendMessage(ctx, b, chatID, formatting.FormatStats(h.examService.Stats(year)))
}

// HandleExaminers обрабатывает /examiners
func (h *Handlers) HandleExaminers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	h.sendScreen(ctx, b, update.Message.Chat.ID, common.BuildExaminersScreen(h.examService))
}

// HandleExaminerAdd обрабатывает /examineradd [nome]
func (h *Handlers) HandleExaminerAdd(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	_, name := ParseCommand(update.Message.Text)

	if name == "" {
		h.stateManager.Start(update.Message.From.ID, state.StateExaminerName, nil)
		h.sendMessage(ctx, b, update.Message.Chat.ID, "👤 Scrivi il nome del nuovo esaminatore.\nPer annullare usa /cancel")
		return
	}
	h.addExaminer(ctx, b, update.Message.Chat.ID, name)
}

// HandleBackup обрабатывает /backup: JSON файл с текущими данными и список ежедневных копий
func (h *Handlers) HandleBackup(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	payload, err := h.examService.Export(ctx)
	if err != nil {
		h.reportError(ctx, b, chatID, err, "backup")
		return
	}

	filename := fmt.Sprintf("esami-guida-%s.json", calendar.DateKey(h.examService.Today()))
	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(payload)},
		Caption:  "💾 Backup del " + formatting.FormatDateTime(h.examService.Now()),
	})
	if err != nil {
		h.logger.Error("Failed to send backup", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	backups, err := h.examService.ListBackups(ctx)
	if err != nil {
		h.logger.Error("Failed to list backups", zap.Error(err))
		return
	}
	h.sendScreen(ctx, b, chatID, common.BuildBackupsScreen(backups, h.examService.Location()))
}

// HandleRestore обрабатывает /restore: ждём JSON файл
func (h *Handlers) HandleRestore(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	h.stateManager.Start(update.Message.From.ID, state.StateRestoreFile, nil)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"♻️ Invia il file JSON del backup.\n\n⚠️ I dati attuali verranno sostituiti.\nPer annullare usa /cancel")
}

// HandleUnknownCommand отвечает на команды, которых бот не знает
func (h *Handlers) HandleUnknownCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireOperator(ctx, b, update) {
		return
	}
	cmd, _ := ParseCommand(update.Message.Text)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("❓ Comando /%s sconosciuto. Usa /help", formatting.EscapeHTML(cmd)))
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	if !h.requireOperator(ctx, b, update) {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	h.logger.Debug("Text message",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateNone:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Usa /help per vedere i comandi.")
	case state.StateBookName:
		h.handleBookNameStep(ctx, b, update)
	case state.StateBookPhone:
		h.handleBookPhoneStep(ctx, b, update)
	case state.StateBookDate:
		h.handleBookDateStep(ctx, b, update)
	case state.StateBookFailCount, state.StateBookDuplicate:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "👆 Usa i pulsanti qui sopra oppure /cancel")
	case state.StateWaitingName:
		h.handleWaitingNameStep(ctx, b, update)
	case state.StateWaitingPhone:
		h.handleWaitingPhoneStep(ctx, b, update)
	case state.StateMoveStudentDate:
		h.handleMoveStudentDate(ctx, b, update)
	case state.StateMoveSessionDate:
		h.handleMoveSessionDate(ctx, b, update)
	case state.StateOutcomeDate:
		h.handleOutcomeDate(ctx, b, update)
	case state.StateExaminerName:
		h.handleExaminerNameStep(ctx, b, update)
	case state.StateExaminerNote:
		h.handleExaminerNoteStep(ctx, b, update)
	case state.StateSearch:
		h.stateManager.ClearState(telegramID)
		h.sendSearchResults(ctx, b, update.Message.Chat.ID, update.Message.Text)
	case state.StateRestoreFile:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📎 Invia il backup come file JSON, oppure /cancel")
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}
