package sessions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleViewStudent карточка записи: stu:<booking_id>
func HandleViewStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "view_student")
			return
		}

		hc.ClearState()

		screen, err := common.BuildStudentScreen(hc.Service(), id)
		if err != nil {
			common.HandleError(hc, err, "view_student")
			return
		}
		if err := hc.ShowScreen(screen); err != nil {
			h.Logger.Error("Failed to show student", zap.String("booking_id", id), zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleSetFailCount правит счётчик неудач: fc:<booking_id>:2
func HandleSetFailCount(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "set_fail_count")
			return
		}
		raw, err := common.Arg(hc.Args, 1)
		if err != nil {
			common.HandleError(hc, err, "set_fail_count")
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "set_fail_count")
			return
		}

		if err := hc.Service().SetFailCount(hc.Ctx, id, n); err != nil {
			common.HandleError(hc, err, "set_fail_count")
			return
		}

		screen, err := common.BuildStudentScreen(hc.Service(), id)
		if err != nil {
			common.HandleError(hc, err, "set_fail_count")
			return
		}
		if err := hc.ShowScreen(screen); err != nil {
			h.Logger.Error("Failed to refresh student", zap.Error(err))
		}
		hc.Answer("✅ Bocciature: " + formatting.FormatFailCount(n))
	})
}

// HandleMoveStudent просит новую дату для ученика: mvstu:<booking_id>
func HandleMoveStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "move_student")
			return
		}
		_, student, ok := hc.Service().FindBooking(id)
		if !ok {
			common.HandleError(hc, fmt.Errorf("booking %s: %w", id, booking.ErrNotFound), "move_student")
			return
		}

		hc.StartDialog(callbacktypes.UserState(state.StateMoveStudentDate), map[string]interface{}{
			state.KeyBookingID: id,
		})

		text := fmt.Sprintf("📦 Spostamento di <b>%s</b>\n\nScrivi la nuova data (GG/MM/AAAA).\nPer annullare usa /cancel",
			formatting.EscapeHTML(student.Name))
		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(callbacktypes.Data(callbacktypes.ViewStudent, id)))
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to ask new date", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleRemoveStudent подтверждение удаления записи: rmstu:<booking_id>
func HandleRemoveStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "remove_student")
			return
		}
		screen, err := common.BuildRemoveStudentScreen(hc.Service(), id)
		if err != nil {
			common.HandleError(hc, err, "remove_student")
			return
		}
		if err := hc.ShowScreen(screen); err != nil {
			h.Logger.Error("Failed to show remove confirmation", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleConfirmRemoveStudent удаляет запись: rmstu_ok:<booking_id>
func HandleConfirmRemoveStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "remove_student")
			return
		}
		dateKey, _, ok := hc.Service().FindBooking(id)
		if !ok {
			common.HandleError(hc, fmt.Errorf("booking %s: %w", id, booking.ErrNotFound), "remove_student")
			return
		}

		removed, err := hc.Service().RemoveStudent(hc.Ctx, id)
		if err != nil {
			common.HandleError(hc, err, "remove_student")
			return
		}

		showDay(hc, dateKey)
		hc.Answer("🗑 " + removed.Name + " rimosso")
	})
}
