package sessions

import (
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"go.uber.org/zap"
)

// showDay перерисовывает сообщение карточкой дня
func showDay(hc *common.HandlerContext, dateKey string) {
	date, err := calendar.ParseDateKey(dateKey, hc.Service().Location())
	if err != nil {
		hc.Handler.Logger.Error("Bad date key", zap.String("date", dateKey), zap.Error(err))
		return
	}
	if err := hc.ShowScreen(common.BuildDayScreen(hc.Service(), date)); err != nil {
		hc.Handler.Logger.Error("Failed to show day", zap.String("date", dateKey), zap.Error(err))
	}
}
