package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/exam_booking_bot/internal/backup"
	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor HTTP статус для ошибки сервиса
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrCooldown):
		return http.StatusLocked
	case errors.Is(err, booking.ErrCapacityExceeded),
		errors.Is(err, booking.ErrSameDate),
		errors.Is(err, booking.ErrPossibleDuplicate):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, backup.ErrInvalidBackup),
		errors.Is(err, calendar.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotPersisted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ошибку в ответ. Внутренние ошибки не раскрываются клиенту.
func (s *Server) respondError(c *gin.Context, err error, op string) {
	status := statusFor(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("API operation failed", zap.String("op", op), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	s.logger.Debug("API request refused", zap.String("op", op), zap.Error(err))
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
