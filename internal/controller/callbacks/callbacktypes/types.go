package callbacktypes

import (
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"go.uber.org/zap"
)

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

// StateManager интерфейс для управления состоянием пользователей
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
	GetAllData(telegramID int64) map[string]interface{}
}

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	ExamService  *service.ExamService
	StateManager StateManager
	Logger       *zap.Logger

	// IsOperator true если пользователь может управлять записью
	IsOperator func(telegramID int64) bool
}
