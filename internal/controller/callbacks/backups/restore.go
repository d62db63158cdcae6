package backups

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/backup"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/keyboard"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleRestore подтверждение восстановления ежедневной копии: rst:2025-06-10
func HandleRestore(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		day, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "restore_backup")
			return
		}

		text := fmt.Sprintf("♻️ Ripristinare il backup del <b>%s</b>?\n\n"+
			"I dati attuali verranno sostituiti.", formatting.FormatDateKey(day, hc.Service().Location()))
		kb := keyboard.NewBuilder().Row(keyboard.ConfirmCancelRow(
			callbacktypes.Data(callbacktypes.ConfirmRestoreBackup, day),
			callbacktypes.CancelRestoreBackup,
		)...)
		if err := hc.ShowScreen(common.Screen{Text: text, Keyboard: kb.Build()}); err != nil {
			h.Logger.Error("Failed to show restore confirmation", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleConfirmRestore восстанавливает копию: rst_ok:2025-06-10
func HandleConfirmRestore(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		day, err := common.Arg(hc.Args, 0)
		if err != nil {
			common.HandleError(hc, err, "restore_backup")
			return
		}

		decoded, err := hc.Service().RestoreBackup(hc.Ctx, day)
		if err != nil {
			common.HandleError(hc, err, "restore_backup")
			return
		}

		if err := hc.EditMessage(RestoreSummary(decoded), nil); err != nil {
			h.Logger.Error("Failed to show restore result", zap.Error(err))
		}
		hc.Answer("✅ Ripristinato")
	})
}

// HandleCancelRestore отменяет восстановление: rst_no
func HandleCancelRestore(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithOperator(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := hc.EditMessage("❌ Ripristino annullato.", nil); err != nil {
			h.Logger.Error("Failed to edit message", zap.Error(err))
		}
		hc.Answer("")
	})
}

// RestoreSummary что попало в хранилище после импорта
func RestoreSummary(decoded backup.Decoded) string {
	snap := decoded.Snapshot
	students := 0
	for _, s := range snap.Sessions {
		students += len(s.Students)
	}

	text := fmt.Sprintf("✅ <b>Dati ripristinati</b> (versione %d)\n\n"+
		"📅 %d %s\n👥 %s",
		decoded.Version, len(snap.Sessions), formatting.PluralizeSessions(len(snap.Sessions)),
		formatting.CountStudents(students))
	if decoded.HasWaitingList {
		text += fmt.Sprintf("\n⏳ Lista d'attesa: %d", len(snap.WaitingList))
	}
	if decoded.HasExaminers {
		text += fmt.Sprintf("\n👤 Esaminatori: %d", len(snap.Examiners))
	}
	if decoded.HasMonthlyLimits {
		text += fmt.Sprintf("\n🔢 Limiti mensili: %d", len(snap.MonthlyLimits))
	}
	return text
}
