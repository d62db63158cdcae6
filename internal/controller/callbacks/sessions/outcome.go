package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
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

// outcomeArgs booking_id и результат из callback data
func outcomeArgs(hc *common.HandlerContext) (string, model.BookingStatus, error) {
	id, err := common.Arg(hc.Args, 0)
	if err != nil {
		return "", "", err
	}
	code, err := common.Arg(hc.Args, 1)
	if err != nil {
		return "", "", err
	}
	outcome, err := common.OutcomeFromCode(code)
	if err != nil {
		return "", "", err
	}
	return id, outcome, nil
}

// HandleOutcome фиксирует результат: out:<booking_id>:P.
// PASSED применяется сразу, для FAILED и ABSENT сначала выбирается новая дата.
func HandleOutcome(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, outcome, err := outcomeArgs(hc)
		if err != nil {
			common.HandleError(hc, err, "outcome")
			return
		}

		if outcome == model.BookingStatusPassed {
			applyOutcome(hc, id, outcome, nil)
			return
		}

		screen, err := common.BuildOutcomeDateScreen(hc.Service(), id, outcome)
		if err != nil {
			common.HandleError(hc, err, "outcome")
			return
		}
		if err := hc.ShowScreen(screen); err != nil {
			h.Logger.Error("Failed to show outcome dates", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleOutcomeSuggested переносит на предложенную дату: outs:<booking_id>:F
func HandleOutcomeSuggested(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, outcome, err := outcomeArgs(hc)
		if err != nil {
			common.HandleError(hc, err, "outcome_suggested")
			return
		}
		// Дата пересчитывается заново: между показом кнопки и нажатием могло пройти время
		date, err := hc.Service().SuggestedDate(id, outcome)
		if err != nil {
			common.HandleError(hc, err, "outcome_suggested")
			return
		}
		applyOutcome(hc, id, outcome, &date)
	})
}

// HandleOutcomeOtherDate просит ввести дату вручную: outo:<booking_id>:F
func HandleOutcomeOtherDate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, outcome, err := outcomeArgs(hc)
		if err != nil {
			common.HandleError(hc, err, "outcome_other_date")
			return
		}
		_, student, ok := hc.Service().FindBooking(id)
		if !ok {
			common.HandleError(hc, fmt.Errorf("booking %s: %w", id, booking.ErrNotFound), "outcome_other_date")
			return
		}

		hc.StartDialog(callbacktypes.UserState(state.StateOutcomeDate), map[string]interface{}{
			state.KeyBookingID: id,
			state.KeyOutcome:   string(outcome),
		})

		text := fmt.Sprintf("🗓 Nuova data d'esame per <b>%s</b>\n\nScrivi la data (GG/MM/AAAA).\nPer annullare usa /cancel",
			formatting.EscapeHTML(student.Name))
		kb := keyboard.NewBuilder().Row(keyboard.CancelButton(callbacktypes.Data(callbacktypes.ViewStudent, id)))
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to ask outcome date", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleOutcomeNoDate фиксирует результат без новой даты: outn:<booking_id>:F
func HandleOutcomeNoDate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, outcome, err := outcomeArgs(hc)
		if err != nil {
			common.HandleError(hc, err, "outcome_no_date")
			return
		}
		applyOutcome(hc, id, outcome, nil)
	})
}

// applyOutcome записывает результат и показывает день, где теперь находится ученик
func applyOutcome(hc *common.HandlerContext, id string, outcome model.BookingStatus, target *time.Time) {
	result, err := hc.Service().RecordOutcome(hc.Ctx, id, outcome, target)
	if err != nil {
		common.HandleError(hc, err, "record_outcome")
		return
	}
	hc.ClearState()

	dayKey := calendar.DateKey(result.ExamDate)
	newKey := ""
	if result.Rescheduled != nil {
		if key, _, ok := hc.Service().FindBooking(result.Rescheduled.ID); ok {
			newKey = key
			dayKey = key
		}
	}

	showDay(hc, dayKey)
	hc.Answer(OutcomeSummary(result, formatting.FormatDateKey(newKey, hc.Service().Location())))
}

// OutcomeSummary короткий итог для всплывающего ответа
func OutcomeSummary(result booking.OutcomeResult, newDate string) string {
	name := result.Booking.Name
	switch result.Action {
	case booking.OutcomeRescheduled:
		return fmt.Sprintf("📅 %s spostato al %s", name, newDate)
	case booking.OutcomeWaitlisted:
		return fmt.Sprintf("⏳ %s in lista d'attesa", name)
	case booking.OutcomeUnchanged:
		return fmt.Sprintf("🚫 %s assente, prenotazione invariata", name)
	default:
		return fmt.Sprintf("✅ %s rimosso dalla sessione", name)
	}
}
