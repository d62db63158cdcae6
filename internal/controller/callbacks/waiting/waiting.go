package waiting

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleViewWaitingList показывает лист ожидания: wl
func HandleViewWaitingList(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := hc.ShowScreen(common.BuildWaitingListScreen(hc.Service())); err != nil {
			h.Logger.Error("Failed to show waiting list", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleViewEntry карточка ученика из листа: wle:<entry_id>
func HandleViewEntry(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "view_waiting_entry")
			return
		}
		showEntry(hc, id)
		hc.Answer("")
	})
}

// HandleBook записывает ученика из листа на дату: wlbook:<entry_id>:2025-06-10
func HandleBook(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		bookEntry(hc, false)
	})
}

// HandleConfirmDuplicate записывает из листа несмотря на совпадение имени: wldup:<entry_id>:2025-06-10
func HandleConfirmDuplicate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		bookEntry(hc, true)
	})
}

// HandleRemove удаляет ученика из листа: wlrm:<entry_id>
func HandleRemove(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "remove_waiting")
			return
		}

		removed, err := hc.Service().RemoveFromWaitingList(hc.Ctx, id)
		if err != nil {
			common.HandleError(hc, err, "remove_waiting")
			return
		}

		if err := hc.ShowScreen(common.BuildWaitingListScreen(hc.Service())); err != nil {
			h.Logger.Error("Failed to show waiting list", zap.Error(err))
		}
		hc.Answer("🗑 " + removed.Name + " rimosso dalla lista")
	})
}

func bookEntry(hc *common.HandlerContext, confirmed bool) {
	id, err := common.Arg(hc.Args, 0)
	if err != nil {
		common.HandleError(hc, err, "book_waiting")
		return
	}
	date, dateKey, err := common.DateArg(hc.Args, 1, hc.Service().Location())
	if err != nil {
		common.HandleError(hc, err, "book_waiting")
		return
	}

	created, err := hc.Service().BookFromWaitingList(hc.Ctx, id, date, confirmed)

	var dup *booking.DuplicateError
	if errors.As(err, &dup) {
		screen := common.BuildDuplicateScreen(hc.Service().Location(), dup,
			callbacktypes.Data(callbacktypes.ConfirmWaitingDuplicate, id, dateKey),
			callbacktypes.Data(callbacktypes.ViewWaitingEntry, id))
		if err := hc.ShowScreen(screen); err != nil {
			hc.Handler.Logger.Error("Failed to show duplicate warning", zap.Error(err))
		}
		hc.Answer("")
		return
	}
	if err != nil {
		common.HandleError(hc, err, "book_waiting")
		// Свободные даты могли измениться
		showEntry(hc, id)
		return
	}

	if err := hc.ShowScreen(common.BuildDayScreen(hc.Service(), date)); err != nil {
		hc.Handler.Logger.Error("Failed to show day", zap.Error(err))
	}
	hc.Answer(fmt.Sprintf("✅ %s prenotato il %s", created.Name, formatting.FormatDate(date)))
}

func showEntry(hc *common.HandlerContext, id string) {
	screen, err := common.BuildWaitingEntryScreen(hc.Service(), id)
	if err != nil {
		common.HandleError(hc, err, "view_waiting_entry")
		return
	}
	if err := hc.ShowScreen(screen); err != nil {
		hc.Handler.Logger.Error("Failed to show waiting entry", zap.String("entry_id", id), zap.Error(err))
	}
}
