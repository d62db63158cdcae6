package examiners

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleViewList список экзаменаторов: exlist
func HandleViewList(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		if err := hc.ShowScreen(common.BuildExaminersScreen(hc.Service())); err != nil {
			h.Logger.Error("Failed to show examiners", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleView карточка экзаменатора: exam:<examiner_id>
func HandleView(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "view_examiner")
			return
		}
		hc.ClearState()
		showExaminer(hc, id)
		hc.Answer("")
	})
}

// HandleAddNote просит текст заметки: exnote:<examiner_id>
func HandleAddNote(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "add_examiner_note")
			return
		}
		ex, ok := hc.Service().Examiner(id)
		if !ok {
			common.HandleError(hc, fmt.Errorf("examiner %s: %w", id, booking.ErrNotFound), "add_examiner_note")
			return
		}

		hc.StartDialog(callbacktypes.UserState(state.StateExaminerNote), map[string]interface{}{
			state.KeyExaminerID: id,
		})

		text := fmt.Sprintf("📝 Nuova nota per <b>%s</b>\n\nScrivi il testo della nota.\nPer annullare usa /cancel",
			formatting.EscapeHTML(ex.Name))
		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(callbacktypes.Data(callbacktypes.ViewExaminer, id)))
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to ask note text", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleDeleteNote удаляет заметку: exnrm:<note_id>.
// В callback data помещается только id заметки, экзаменатор находится перебором.
func HandleDeleteNote(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		noteID, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "delete_examiner_note")
			return
		}

		examinerID, ok := ownerOfNote(hc.Service().Examiners(), noteID)
		if !ok {
			common.HandleError(hc, fmt.Errorf("note %s: %w", noteID, booking.ErrNotFound), "delete_examiner_note")
			return
		}

		if err := hc.Service().DeleteExaminerNote(hc.Ctx, examinerID, noteID); err != nil {
			common.HandleError(hc, err, "delete_examiner_note")
			return
		}

		showExaminer(hc, examinerID)
		hc.Answer("🗑 Nota eliminata")
	})
}

// HandleRemove подтверждение удаления экзаменатора: exrm:<examiner_id>
func HandleRemove(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "remove_examiner")
			return
		}
		ex, ok := hc.Service().Examiner(id)
		if !ok {
			common.HandleError(hc, fmt.Errorf("examiner %s: %w", id, booking.ErrNotFound), "remove_examiner")
			return
		}

		text := fmt.Sprintf("🗑 Eliminare <b>%s</b>?\n\nLe sessioni assegnate resteranno senza esaminatore.",
			formatting.EscapeHTML(ex.Name))
		kb := keyboard.NewBuilder().Row(keyboard.ConfirmCancelRow(
			callbacktypes.Data(callbacktypes.ConfirmRemoveExaminer, id),
			callbacktypes.Data(callbacktypes.ViewExaminer, id),
		)...)
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to show remove confirmation", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleConfirmRemove удаляет экзаменатора: exrm_ok:<examiner_id>
func HandleConfirmRemove(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "remove_examiner")
			return
		}

		removed, err := hc.Service().RemoveExaminer(hc.Ctx, id)
		if err != nil {
			common.HandleError(hc, err, "remove_examiner")
			return
		}

		if err := hc.ShowScreen(common.BuildExaminersScreen(hc.Service())); err != nil {
			h.Logger.Error("Failed to show examiners", zap.Error(err))
		}
		hc.Answer("🗑 " + removed.Name + " eliminato")
	})
}

func ownerOfNote(examiners []model.Examiner, noteID string) (string, bool) {
	for _, ex := range examiners {
		for _, note := range ex.Notes {
			if note.ID == noteID {
				return ex.ID, true
			}
		}
	}
	return "", false
}

func showExaminer(hc *common.HandlerContext, id string) {
	screen, err := common.BuildExaminerScreen(hc.Service(), id)
	if err != nil {
		common.HandleError(hc, err, "view_examiner")
		return
	}
	if err := hc.ShowScreen(screen); err != nil {
		hc.Handler.Logger.Error("Failed to show examiner", zap.String("examiner_id", id), zap.Error(err))
	}
}
