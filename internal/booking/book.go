package booking

import (
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// BookRequest запрос на запись ученика
type BookRequest struct {
	Name      string
	Phone     string
	Date      time.Time
	FailCount int
	Confirmed bool // Оператор подтвердил запись несмотря на возможный дубликат
}

// Book записывает ученика на дату.
// Порядок проверок: данные, вместимость и лимит месяца, затем дубликаты.
func (e *Engine) Book(req BookRequest) (model.StudentBooking, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.StudentBooking{}, ErrEmptyName
	}
	if err := validateFailCount(req.FailCount); err != nil {
		return model.StudentBooking{}, err
	}

	key := calendar.DateKey(req.Date)
	if err := e.checkSeat(key, 1, false); err != nil {
		return model.StudentBooking{}, err
	}

	if !req.Confirmed {
		if matches := e.CheckDuplicates(name); len(matches) > 0 {
			return model.StudentBooking{}, &DuplicateError{Name: name, Matches: matches}
		}
	}

	booking := model.StudentBooking{
		ID:        e.newID(),
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		Status:    model.BookingStatusScheduled,
		FailCount: req.FailCount,
	}
	e.insert(key, booking)

	return booking, nil
}

// CheckDuplicates ищет записи с тем же именем во всех днях.
// Результат отсортирован по дате.
func (e *Engine) CheckDuplicates(name string) []DuplicateMatch {
	target := duplicateKey(name)
	if target == "" {
		return nil
	}

	var matches []DuplicateMatch
	for key, session := range e.sessions {
		for _, student := range session.Students {
			if duplicateKey(student.Name) == target {
				matches = append(matches, DuplicateMatch{
					DateKey:   key,
					BookingID: student.ID,
					Name:      student.Name,
					Phone:     student.Phone,
				})
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DateKey != matches[j].DateKey {
			return matches[i].DateKey < matches[j].DateKey
		}
		return matches[i].BookingID < matches[j].BookingID
	})
	return matches
}
