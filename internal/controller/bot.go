package controller

import (
	"context"
	"strings"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/handlers"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	notifier        *ExamNotifier
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	examService *service.ExamService,
	isOperator func(telegramID int64) bool,
	operatorIDs []int64,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager(state.DefaultTTL)

	notifier := NewExamNotifier(botInstance, operatorIDs, logger)

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		examService,
		stateManager,
		isOperator,
		notifier.Subscribe,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		examService,
		state.NewAdapter(stateManager),
		isOperator,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		notifier:        notifier,
		logger:          logger,
	}
}

// Notifier получатель напоминаний для планировщика
func (c *BotController) Notifier() *ExamNotifier {
	return c.notifier
}

// commandName имя команды без "/" и "@bot", пусто если это не команда
func commandName(update *models.Update) string {
	if update.Message == nil {
		return ""
	}
	cmd, _ := handlers.ParseCommand(update.Message.Text)
	return cmd
}

// matchCommand срабатывает на "/name", "/name args" и "/name@bot"
func matchCommand(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		return commandName(update) == name
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"start":       c.handlers.HandleStart,
		"help":        c.handlers.HandleHelp,
		"cancel":      c.handlers.HandleCancel,
		"month":       c.handlers.HandleMonth,
		"day":         c.handlers.HandleDay,
		"book":        c.handlers.HandleBook,
		"search":      c.handlers.HandleSearch,
		"waiting":     c.handlers.HandleWaiting,
		"waitadd":     c.handlers.HandleWaitAdd,
		"limit":       c.handlers.HandleLimit,
		"stats":       c.handlers.HandleStats,
		"examiners":   c.handlers.HandleExaminers,
		"examineradd": c.handlers.HandleExaminerAdd,
		"backup":      c.handlers.HandleBackup,
		"restore":     c.handlers.HandleRestore,
	}
	for name, handler := range commands {
		c.bot.RegisterHandlerMatchFunc(matchCommand(name), handler)
	}

	// Неизвестные команды
	c.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		cmd := commandName(update)
		_, known := commands[cmd]
		return cmd != "" && !known
	}, c.handlers.HandleUnknownCommand)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil && update.Message.Document == nil &&
			update.Message.Text != "" && !strings.HasPrefix(update.Message.Text, "/")
	}, c.handlers.HandleTextMessage)

	// Файлы резервных копий
	c.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil && update.Message.Document != nil
	}, c.handlers.HandleDocument)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "month", Description: "📅 Calendario del mese"},
		{Command: "day", Description: "🗓 Sessione di un giorno"},
		{Command: "book", Description: "➕ Prenota un allievo"},
		{Command: "search", Description: "🔍 Cerca un allievo"},
		{Command: "waiting", Description: "⏳ Lista d'attesa"},
		{Command: "waitadd", Description: "➕ Aggiungi alla lista d'attesa"},
		{Command: "limit", Description: "🔢 Limite sessioni del mese"},
		{Command: "examiners", Description: "👤 Esaminatori"},
		{Command: "stats", Description: "📊 Statistiche"},
		{Command: "backup", Description: "💾 Scarica backup"},
		{Command: "restore", Description: "♻️ Ripristina backup"},
		{Command: "cancel", Description: "❌ Annulla operazione"},
		{Command: "help", Description: "❓ Aiuto"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
