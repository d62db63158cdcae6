package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleBookFailCount последний шаг записи: bookfc:2
func HandleBookFailCount(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if h.StateManager.GetState(hc.TelegramID) != callbacktypes.UserState(state.StateBookFailCount) {
			hc.AnswerAlert("⌛ Prenotazione scaduta, ricomincia con /book")
			return
		}

		raw, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "book_fail_count")
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "book_fail_count")
			return
		}
		hc.SetData(state.KeyFailCount, n)

		finishBooking(hc, false)
	})
}

// HandleConfirmDuplicate записывает несмотря на совпадение имени
func HandleConfirmDuplicate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if h.StateManager.GetState(hc.TelegramID) != callbacktypes.UserState(state.StateBookDuplicate) {
			hc.AnswerAlert("⌛ Prenotazione scaduta, ricomincia con /book")
			return
		}
		finishBooking(hc, true)
	})
}

// HandleCancelDuplicate отменяет запись после предупреждения о дубликате
func HandleCancelDuplicate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		dateKey, _ := hc.GetString(state.KeyDate)
		hc.ClearState()

		if dateKey != "" {
			showDay(hc, dateKey)
		} else if err := hc.EditMessage("❌ Prenotazione annullata.", nil); err != nil {
			h.Logger.Error("Failed to edit message", zap.Error(err))
		}
		hc.Answer("Prenotazione annullata")
	})
}

// finishBooking собирает запрос из данных диалога и записывает ученика
func finishBooking(hc *common.HandlerContext, confirmed bool) {
	req, err := bookRequestFromState(hc)
	if err != nil {
		hc.ClearState()
		common.HandleError(hc, err, "book")
		return
	}
	req.Confirmed = confirmed

	created, err := hc.Service().Book(hc.Ctx, req)

	var dup *booking.DuplicateError
	if errors.As(err, &dup) {
		hc.SetState(callbacktypes.UserState(state.StateBookDuplicate))
		screen := common.BuildDuplicateScreen(hc.Service().Location(), dup,
			callbacktypes.ConfirmDuplicate, callbacktypes.CancelDuplicate)
		if err := hc.ShowScreen(screen); err != nil {
			hc.Handler.Logger.Error("Failed to show duplicate warning", zap.Error(err))
		}
		hc.Answer("")
		return
	}
	if err != nil {
		// Диалог остаётся: оператор может вернуться к дню или отменить через /cancel
		common.HandleError(hc, err, "book")
		return
	}

	hc.ClearState()
	showDay(hc, calendar.DateKey(req.Date))
	hc.Answer(fmt.Sprintf("✅ %s prenotato", created.Name))
}

func bookRequestFromState(hc *common.HandlerContext) (booking.BookRequest, error) {
	name, _ := hc.GetString(state.KeyName)
	phone, _ := hc.GetString(state.KeyPhone)
	dateKey, ok := hc.GetString(state.KeyDate)
	if !ok {
		return booking.BookRequest{}, common.ErrInvalidFormat
	}
	date, err := calendar.ParseDateKey(dateKey, hc.Service().Location())
	if err != nil {
		return booking.BookRequest{}, err
	}

	failCount := 0
	if v, ok := hc.GetData(state.KeyFailCount); ok {
		if n, ok := v.(int); ok {
			failCount = n
		}
	}

	return booking.BookRequest{
		Name:      name,
		Phone:     phone,
		Date:      date,
		FailCount: failCount,
	}, nil
}
