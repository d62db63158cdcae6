package callbacks

import (
	"context"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/backups"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/examiners"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/sessions"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/waiting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerFunc обработчик одного действия
type HandlerFunc func(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler)

// routes действие из callback data -> обработчик
var routes = map[string]HandlerFunc{
	// ===== Календарь =====
	callbacktypes.ViewMonth:        sessions.HandleViewMonth,
	callbacktypes.ViewDay:          sessions.HandleViewDay,
	callbacktypes.SetTurn:          sessions.HandleSetTurn,
	callbacktypes.ChooseExaminer:   sessions.HandleChooseExaminer,
	callbacktypes.SetExaminer:      sessions.HandleSetExaminer,
	callbacktypes.MoveDay:          sessions.HandleMoveDay,
	callbacktypes.DeleteDay:        sessions.HandleDeleteDay,
	callbacktypes.ConfirmDeleteDay: sessions.HandleConfirmDeleteDay,
	callbacktypes.BookOnDay:        sessions.HandleBookOnDay,

	// ===== Записи =====
	callbacktypes.ViewStudent:          sessions.HandleViewStudent,
	callbacktypes.Outcome:              sessions.HandleOutcome,
	callbacktypes.OutcomeSuggested:     sessions.HandleOutcomeSuggested,
	callbacktypes.OutcomeOtherDate:     sessions.HandleOutcomeOtherDate,
	callbacktypes.OutcomeNoDate:        sessions.HandleOutcomeNoDate,
	callbacktypes.MoveStudent:          sessions.HandleMoveStudent,
	callbacktypes.RemoveStudent:        sessions.HandleRemoveStudent,
	callbacktypes.ConfirmRemoveStudent: sessions.HandleConfirmRemoveStudent,
	callbacktypes.SetFailCount:         sessions.HandleSetFailCount,
	callbacktypes.BookFailCount:        sessions.HandleBookFailCount,
	callbacktypes.ConfirmDuplicate:     sessions.HandleConfirmDuplicate,
	callbacktypes.CancelDuplicate:      sessions.HandleCancelDuplicate,

	// ===== Лист ожидания =====
	callbacktypes.ViewWaiting:             waiting.HandleViewWaitingList,
	callbacktypes.ViewWaitingEntry:        waiting.HandleViewEntry,
	callbacktypes.BookWaiting:             waiting.HandleBook,
	callbacktypes.ConfirmWaitingDuplicate: waiting.HandleConfirmDuplicate,
	callbacktypes.RemoveWaiting:           waiting.HandleRemove,

	// ===== Экзаменаторы =====
	callbacktypes.ViewExaminers:         examiners.HandleViewList,
	callbacktypes.ViewExaminer:          examiners.HandleView,
	callbacktypes.AddExaminerNote:       examiners.HandleAddNote,
	callbacktypes.DeleteExaminerNote:    examiners.HandleDeleteNote,
	callbacktypes.RemoveExaminer:        examiners.HandleRemove,
	callbacktypes.ConfirmRemoveExaminer: examiners.HandleConfirmRemove,

	// ===== Резервные копии =====
	callbacktypes.RestoreBackup:        backups.HandleRestore,
	callbacktypes.ConfirmRestoreBackup: backups.HandleConfirmRestore,
	callbacktypes.CancelRestoreBackup:  backups.HandleCancelRestore,
}

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	action, _ := callbacktypes.ParseData(callback.Data)

	if action == callbacktypes.Noop {
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	handler, ok := routes[action]
	if !ok {
		h.Logger.Warn("Unknown callback",
			zap.String("data", callback.Data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallbackAlert(ctx, b, callback.ID, "❌ Azione sconosciuta")
		return
	}

	handler(ctx, b, callback, h)
}
