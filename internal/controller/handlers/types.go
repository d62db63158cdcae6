package handlers

import (
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	examService  *service.ExamService
	stateManager *state.Manager
	isOperator   func(telegramID int64) bool
	onStart      func(chatID int64)
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд.
// onStart вызывается для чата оператора после /start: туда пойдут напоминания.
func NewHandlers(
	examService *service.ExamService,
	stateManager *state.Manager,
	isOperator func(telegramID int64) bool,
	onStart func(chatID int64),
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		examService:  examService,
		stateManager: stateManager,
		isOperator:   isOperator,
		onStart:      onStart,
		logger:       logger,
	}
}
