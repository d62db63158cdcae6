package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ErrNoRecipients напоминание некому отправить, оно будет повторено позже
var ErrNoRecipients = errors.New("no reminder recipients")

// messageSender часть *bot.Bot, нужная для напоминаний
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// ExamNotifier отправляет напоминания операторам и в чаты, где был /start
type ExamNotifier struct {
	sender messageSender
	logger *zap.Logger

	mu    sync.RWMutex
	chats map[int64]struct{}
}

var _ service.Notifier = (*ExamNotifier)(nil)

func NewExamNotifier(sender messageSender, operatorIDs []int64, logger *zap.Logger) *ExamNotifier {
	n := &ExamNotifier{
		sender: sender,
		logger: logger,
		chats:  make(map[int64]struct{}, len(operatorIDs)),
	}
	// Личный чат с пользователем имеет тот же id
	for _, id := range operatorIDs {
		n.chats[id] = struct{}{}
	}
	return n
}

// Subscribe добавляет чат в рассылку
func (n *ExamNotifier) Subscribe(chatID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chats[chatID] = struct{}{}
}

// Recipients чаты рассылки по возрастанию id
func (n *ExamNotifier) Recipients() []int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]int64, 0, len(n.chats))
	for id := range n.chats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NotifyExam рассылает напоминание. Достаточно одной успешной доставки.
func (n *ExamNotifier) NotifyExam(ctx context.Context, reminder service.Reminder) error {
	recipients := n.Recipients()
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	text := formatting.ReminderText(reminder)
	var errs []error
	delivered := 0
	for _, chatID := range recipients {
		_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			n.logger.Warn("Failed to deliver reminder",
				zap.Int64("chat_id", chatID),
				zap.String("date", reminder.DateKey),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}
		delivered++
	}

	if delivered > 0 {
		return nil
	}
	return errors.Join(errs...)
}
