package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// AddToWaitingList добавляет ученика в конец листа ожидания
func (e *Engine) AddToWaitingList(name, phone string, canBookAfter *time.Time) (model.WaitingListEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.WaitingListEntry{}, ErrEmptyName
	}

	entry := model.WaitingListEntry{
		ID:      e.newID(),
		Name:    name,
		Phone:   strings.TrimSpace(phone),
		AddedAt: e.Now(),
	}
	if canBookAfter != nil {
		until := *canBookAfter
		entry.CanBookAfter = &until
	}
	e.waiting = append(e.waiting, entry)

	return entry, nil
}

// RemoveFromWaitingList удаляет ученика из листа ожидания
func (e *Engine) RemoveFromWaitingList(entryID string) (model.WaitingListEntry, error) {
	idx := e.waitingIndex(entryID)
	if idx < 0 {
		return model.WaitingListEntry{}, fmt.Errorf("%w: waiting entry %s", ErrNotFound, entryID)
	}
	removed := e.waiting[idx]
	e.waiting = append(e.waiting[:idx:idx], e.waiting[idx+1:]...)
	return removed, nil
}

// BookFromWaitingList записывает ученика из листа ожидания на дату.
// Запись из листа удаляется только при успешной записи.
func (e *Engine) BookFromWaitingList(entryID string, date time.Time, confirmed bool) (model.StudentBooking, error) {
	idx := e.waitingIndex(entryID)
	if idx < 0 {
		return model.StudentBooking{}, fmt.Errorf("%w: waiting entry %s", ErrNotFound, entryID)
	}

	entry := e.waiting[idx]
	if !entry.IsBookable(e.Now()) {
		return model.StudentBooking{}, &CooldownError{EntryID: entry.ID, Until: *entry.CanBookAfter}
	}

	booking, err := e.Book(BookRequest{
		Name:      entry.Name,
		Phone:     entry.Phone,
		Date:      date,
		Confirmed: confirmed,
	})
	if err != nil {
		return model.StudentBooking{}, err
	}

	e.waiting = append(e.waiting[:idx:idx], e.waiting[idx+1:]...)
	return booking, nil
}

// WaitingList копия листа ожидания в порядке добавления
func (e *Engine) WaitingList() []model.WaitingListEntry {
	return e.Snapshot().WaitingList
}

// WaitingEntry запись листа ожидания по ID
func (e *Engine) WaitingEntry(entryID string) (model.WaitingListEntry, bool) {
	idx := e.waitingIndex(entryID)
	if idx < 0 {
		return model.WaitingListEntry{}, false
	}
	return e.waiting[idx], true
}

func (e *Engine) waitingIndex(entryID string) int {
	for i := range e.waiting {
		if e.waiting[i].ID == entryID {
			return i
		}
	}
	return -1
}
