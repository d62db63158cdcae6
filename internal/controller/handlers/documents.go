package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/backups"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// maxBackupSize верхняя граница для загружаемого файла
const maxBackupSize = 10 << 20

// HandleDocument принимает JSON файл резервной копии после /restore
func (h *Handlers) HandleDocument(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Document == nil {
		return
	}
	if !h.requireOperator(ctx, b, update) {
		return
	}

	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	if h.stateManager.GetState(telegramID) != state.StateRestoreFile {
		h.sendMessage(ctx, b, chatID, "📎 Per ripristinare un backup usa prima /restore")
		return
	}

	doc := update.Message.Document
	if doc.FileSize > maxBackupSize {
		h.sendError(ctx, b, chatID, "❌ File troppo grande")
		return
	}

	payload, err := h.downloadDocument(ctx, b, doc.FileID)
	if err != nil {
		h.logger.Error("Failed to download backup", zap.String("file_name", doc.FileName), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Impossibile scaricare il file, riprova")
		return
	}

	decoded, err := h.examService.Import(ctx, payload)
	if err != nil {
		// Состояние остаётся: можно прислать другой файл
		h.reportError(ctx, b, chatID, err, "restore")
		return
	}
	h.stateManager.ClearState(telegramID)

	h.logger.Info("Backup restored from file",
		zap.Int64("telegram_id", telegramID),
		zap.String("file_name", doc.FileName),
		zap.Int("version", decoded.Version))
	h.sendMessage(ctx, b, chatID, backups.RestoreSummary(decoded))
}

// downloadDocument скачивает файл с серверов Telegram
func (h *Handlers) downloadDocument(ctx context.Context, b *bot.Bot, fileID string) ([]byte, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBackupSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxBackupSize {
		return nil, fmt.Errorf("file larger than %d bytes", maxBackupSize)
	}
	return data, nil
}

// stripURL убирает ссылку из ошибки http клиента: в ней токен бота
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
