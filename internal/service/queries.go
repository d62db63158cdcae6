package service

import (
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

func (s *ExamService) Location() *time.Location {
	var loc *time.Location
	s.read(func(e *booking.Engine) { loc = e.Location() })
	return loc
}

func (s *ExamService) Now() time.Time {
	var now time.Time
	s.read(func(e *booking.Engine) { now = e.Now() })
	return now
}

func (s *ExamService) Today() time.Time {
	var today time.Time
	s.read(func(e *booking.Engine) { today = e.Today() })
	return today
}

func (s *ExamService) Snapshot() model.Snapshot {
	var snap model.Snapshot
	s.read(func(e *booking.Engine) { snap = e.Snapshot() })
	return snap
}

func (s *ExamService) Session(date time.Time) (model.ExamSession, bool) {
	var (
		session model.ExamSession
		ok      bool
	)
	s.read(func(e *booking.Engine) { session, ok = e.Session(date) })
	return session, ok
}

func (s *ExamService) FindBooking(bookingID string) (string, model.StudentBooking, bool) {
	var (
		key string
		b   model.StudentBooking
		ok  bool
	)
	s.read(func(e *booking.Engine) { key, b, ok = e.FindBooking(bookingID) })
	return key, b, ok
}

func (s *ExamService) CheckDuplicates(name string) []booking.DuplicateMatch {
	var matches []booking.DuplicateMatch
	s.read(func(e *booking.Engine) { matches = e.CheckDuplicates(name) })
	return matches
}

func (s *ExamService) SuggestedDate(bookingID string, outcome model.BookingStatus) (time.Time, error) {
	var (
		date time.Time
		err  error
	)
	s.read(func(e *booking.Engine) { date, err = e.SuggestedDate(bookingID, outcome) })
	return date, err
}

func (s *ExamService) SessionsInMonth(monthKey string) []booking.SessionView {
	var views []booking.SessionView
	s.read(func(e *booking.Engine) { views = e.SessionsInMonth(monthKey) })
	return views
}

// AvailableDates дни с местами начиная с сегодняшнего
func (s *ExamService) AvailableDates() []booking.SessionView {
	var views []booking.SessionView
	s.read(func(e *booking.Engine) { views = e.AvailableDates(e.Today()) })
	return views
}

func (s *ExamService) Search(query string) []booking.SearchResult {
	var results []booking.SearchResult
	s.read(func(e *booking.Engine) { results = e.Search(query) })
	return results
}

func (s *ExamService) WaitingList() []model.WaitingListEntry {
	var list []model.WaitingListEntry
	s.read(func(e *booking.Engine) { list = e.WaitingList() })
	return list
}

func (s *ExamService) WaitingEntry(entryID string) (model.WaitingListEntry, bool) {
	var (
		entry model.WaitingListEntry
		ok    bool
	)
	s.read(func(e *booking.Engine) { entry, ok = e.WaitingEntry(entryID) })
	return entry, ok
}

func (s *ExamService) Examiners() []model.Examiner {
	var list []model.Examiner
	s.read(func(e *booking.Engine) { list = e.Examiners() })
	return list
}

func (s *ExamService) Examiner(examinerID string) (model.Examiner, bool) {
	var (
		ex model.Examiner
		ok bool
	)
	s.read(func(e *booking.Engine) { ex, ok = e.Examiner(examinerID) })
	return ex, ok
}

// MonthInfo лимит и заполненность месяца
type MonthInfo struct {
	MonthKey string
	Limit    int // 0 - без лимита
	Active   int
}

func (s *ExamService) Month(monthKey string) MonthInfo {
	info := MonthInfo{MonthKey: monthKey}
	s.read(func(e *booking.Engine) {
		info.Limit, _ = e.MonthlyLimit(monthKey)
		info.Active = e.ActiveSessionsInMonth(monthKey)
	})
	return info
}

func (s *ExamService) IsDateSelectable(date time.Time) bool {
	var ok bool
	s.read(func(e *booking.Engine) { ok = e.IsDateSelectable(date) })
	return ok
}

func (s *ExamService) Stats(year int) booking.Stats {
	var stats booking.Stats
	s.read(func(e *booking.Engine) { stats = e.Stats(year) })
	return stats
}
