package sessions

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
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

// HandleViewMonth показывает месяц: month:2025-06
func HandleViewMonth(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		key, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "view_month")
			return
		}
		month, err := calendar.ParseMonthKey(key, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "view_month")
			return
		}

		if err := hc.ShowScreen(common.BuildMonthScreen(hc.Service(), month)); err != nil {
			h.Logger.Error("Failed to show month", zap.String("month", key), zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleViewDay показывает день: day:2025-06-10
func HandleViewDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, key, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "view_day")
			return
		}

		// Возврат к дню обрывает незаконченный диалог
		hc.ClearState()

		if err := hc.ShowScreen(common.BuildDayScreen(hc.Service(), date)); err != nil {
			h.Logger.Error("Failed to show day", zap.String("date", key), zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleSetTurn задаёт смену: turn:2025-06-10:M
func HandleSetTurn(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, _, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "set_turn")
			return
		}
		code, err := common.Arg(hc.Args, 1)
		if err != nil {
			common.HandleError(hc, err, "set_turn")
			return
		}
		turn, err := common.TurnFromCode(code)
		if err != nil {
			common.HandleError(hc, err, "set_turn")
			return
		}

		if err := hc.Service().SetTurn(hc.Ctx, date, turn); err != nil {
			common.HandleError(hc, err, "set_turn")
			return
		}

		if err := hc.ShowScreen(common.BuildDayScreen(hc.Service(), date)); err != nil {
			h.Logger.Error("Failed to refresh day", zap.Error(err))
		}
		hc.Answer("✅ " + formatting.GetTurnDisplay(turn).Text)
	})
}

// HandleChooseExaminer показывает выбор экзаменатора: exsel:2025-06-10
func HandleChooseExaminer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, _, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "choose_examiner")
			return
		}
		if err := hc.ShowScreen(common.BuildExaminerPickerScreen(hc.Service(), date)); err != nil {
			h.Logger.Error("Failed to show examiner picker", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleSetExaminer назначает экзаменатора: exset:2025-06-10:<id> или "-" для сброса
func HandleSetExaminer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, _, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "set_examiner")
			return
		}
		id, err := common.Arg(hc.Args, 1)
		if err != nil {
			common.HandleError(hc, err, "set_examiner")
			return
		}

		var examinerID *string
		if id != "-" {
			examinerID = &id
		}
		if err := hc.Service().SetExaminer(hc.Ctx, date, examinerID); err != nil {
			common.HandleError(hc, err, "set_examiner")
			return
		}

		if err := hc.ShowScreen(common.BuildDayScreen(hc.Service(), date)); err != nil {
			h.Logger.Error("Failed to refresh day", zap.Error(err))
		}
		hc.Answer("✅ Esaminatore aggiornato")
	})
}

// HandleMoveDay просит новую дату для всего дня: mvday:2025-06-10
func HandleMoveDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, key, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "move_day")
			return
		}

		hc.StartDialog(callbacktypes.UserState(state.StateMoveSessionDate), map[string]interface{}{
			state.KeyDate: key,
		})

		text := fmt.Sprintf("📦 Spostamento della sessione del <b>%s</b>\n\n"+
			"Scrivi la nuova data (GG/MM/AAAA).\nPer annullare usa /cancel", formatting.FormatDate(date))
		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(callbacktypes.Data(callbacktypes.ViewDay, key)))
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to ask new date", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleDeleteDay подтверждение удаления дня: delday:2025-06-10
func HandleDeleteDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, _, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "delete_day")
			return
		}
		session, _ := hc.Service().Session(date)
		if err := hc.ShowScreen(common.BuildDeleteDayScreen(date, len(session.Students))); err != nil {
			h.Logger.Error("Failed to show delete confirmation", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleConfirmDeleteDay удаляет день со всеми записями: delday_ok:2025-06-10
func HandleConfirmDeleteDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, _, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "delete_day")
			return
		}

		removed, err := hc.Service().DeleteSession(hc.Ctx, date)
		if err != nil {
			common.HandleError(hc, err, "delete_day")
			return
		}

		if err := hc.ShowScreen(common.BuildMonthScreen(hc.Service(), date)); err != nil {
			h.Logger.Error("Failed to show month", zap.Error(err))
		}
		hc.Answer(fmt.Sprintf("🗑 Sessione eliminata (%s)", formatting.CountStudents(len(removed.Students))))
	})
}

// HandleBookOnDay начинает запись на выбранный день: bookday:2025-06-10
func HandleBookOnDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, key, err := common.DateArg(hc.Args, 0, hc.Service().Location())
		if err != nil {
			common.HandleError(hc, err, "book_on_day")
			return
		}

		if session, ok := hc.Service().Session(date); ok && session.IsFull() {
			hc.AnswerAlert(fmt.Sprintf("❌ Sessione piena (%d/%d)", len(session.Students), model.MaxStudentsPerSession))
			return
		}

		hc.StartDialog(callbacktypes.UserState(state.StateBookName), map[string]interface{}{
			state.KeyDate: key,
		})

		text := fmt.Sprintf("➕ Prenotazione per il <b>%s</b>\n\nScrivi nome e cognome dell'allievo.\nPer annullare usa /cancel",
			formatting.FormatDate(date))
		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(callbacktypes.Data(callbacktypes.ViewDay, key)))
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to ask student name", zap.Error(err))
		}
		hc.Answer("")
	})
}
