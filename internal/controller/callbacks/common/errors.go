package common

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/exam_booking_bot/internal/backup"
	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNotOperator   = errors.New("user is not an operator")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	var cooldown *booking.CooldownError

	switch {
	case errors.Is(err, ErrNotOperator):
		return "⛔ Non sei autorizzato a gestire le prenotazioni"
	case errors.Is(err, ErrNoMessage):
		return "❌ Errore nell'elaborazione del messaggio"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Formato dei dati non valido"
	case errors.Is(err, service.ErrNotPersisted):
		return "⚠️ Modifica applicata ma non salvata. Riprova più tardi"
	case errors.Is(err, booking.ErrMonthlyLimitReached):
		return "❌ Limite mensile di sessioni raggiunto"
	case errors.Is(err, booking.ErrCapacityExceeded):
		return "❌ Sessione piena (massimo 7 allievi)"
	case errors.Is(err, booking.ErrSameDate):
		return "❌ La data di destinazione coincide con quella attuale"
	case errors.As(err, &cooldown):
		return fmt.Sprintf("⏳ Prenotabile dal %s", formatting.FormatDate(cooldown.Until))
	case errors.Is(err, booking.ErrPossibleDuplicate):
		return "⚠️ Allievo già prenotato"
	case errors.Is(err, booking.ErrNotFound):
		return "❌ Elemento non trovato"
	case errors.Is(err, booking.ErrEmptyName):
		return "❌ Il nome non può essere vuoto"
	case errors.Is(err, booking.ErrInvalidFailCount):
		return "❌ Numero di bocciature non valido (0-3)"
	case errors.Is(err, booking.ErrInvalidLimit):
		return "❌ Il limite deve essere un numero maggiore o uguale a 0"
	case errors.Is(err, booking.ErrInvalidMonth):
		return "❌ Mese non valido, usa AAAA-MM"
	case errors.Is(err, booking.ErrPastDate):
		return "❌ La data è nel passato"
	case errors.Is(err, calendar.ErrInvalidKey):
		return "❌ Data non valida, usa GG/MM/AAAA"
	case errors.Is(err, backup.ErrInvalidBackup):
		return "❌ File di backup non valido"
	case errors.Is(err, booking.ErrInvalidInput):
		return "❌ Dati non validi"
	default:
		return "❌ Si è verificato un errore"
	}
}
