package booking

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// SessionView день вместе с его датой
type SessionView struct {
	DateKey string
	Date    time.Time
	Session model.ExamSession
}

// Session копия дня, ok=false если день не активен
func (e *Engine) Session(date time.Time) (model.ExamSession, bool) {
	session, ok := e.sessions[calendar.DateKey(date)]
	if !ok {
		return model.ExamSession{}, false
	}
	return *session.Clone(), true
}

// FindBooking ищет запись по ID во всех днях
func (e *Engine) FindBooking(bookingID string) (string, model.StudentBooking, bool) {
	key, idx, err := e.locate(bookingID)
	if err != nil {
		return "", model.StudentBooking{}, false
	}
	return key, e.sessions[key].Students[idx], true
}

// SessionsInMonth активные дни месяца по возрастанию даты
func (e *Engine) SessionsInMonth(monthKey string) []SessionView {
	return e.views(func(key string, _ *model.ExamSession) bool {
		return calendar.MonthKeyOf(key) == monthKey
	})
}

// AvailableDates активные дни начиная с from, где ещё есть места
func (e *Engine) AvailableDates(from time.Time) []SessionView {
	fromKey := calendar.DateKey(from)
	return e.views(func(key string, session *model.ExamSession) bool {
		return key >= fromKey && !session.IsFull()
	})
}

func (e *Engine) views(keep func(key string, session *model.ExamSession) bool) []SessionView {
	var out []SessionView
	for key, session := range e.sessions {
		if !keep(key, session) {
			continue
		}
		out = append(out, SessionView{
			DateKey: key,
			Date:    e.dateOf(key),
			Session: *session.Clone(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey < out[j].DateKey })
	return out
}

// SearchResult найденная запись
type SearchResult struct {
	DateKey string
	Booking model.StudentBooking
}

// Search ищет записи по части имени без учёта регистра и диакритики
func (e *Engine) Search(query string) []SearchResult {
	needle := foldName(query)
	if needle == "" {
		return nil
	}

	var results []SearchResult
	for _, view := range e.views(func(string, *model.ExamSession) bool { return true }) {
		for _, student := range view.Session.Students {
			if strings.Contains(foldName(student.Name), needle) {
				results = append(results, SearchResult{DateKey: view.DateKey, Booking: student})
			}
		}
	}
	return results
}

// UpcomingSession день экзамена в ближайшем будущем
type UpcomingSession struct {
	SessionView
	DaysUntil int
}

// UpcomingSessions активные дни от from (включительно) до from+horizonDays
func (e *Engine) UpcomingSessions(from time.Time, horizonDays int) []UpcomingSession {
	var out []UpcomingSession
	for _, view := range e.views(func(string, *model.ExamSession) bool { return true }) {
		days := calendar.DaysBetween(from, view.Date)
		if days < 0 || days > horizonDays {
			continue
		}
		out = append(out, UpcomingSession{SessionView: view, DaysUntil: days})
	}
	return out
}

// ExaminerStat сколько дней провёл экзаменатор
type ExaminerStat struct {
	ExaminerID string
	Name       string
	Sessions   int
}

// Stats сводка за год по текущему содержимому хранилища
type Stats struct {
	Year            int
	Sessions        int
	Students        int
	SessionsByMonth [12]int
	Examiners       []ExaminerStat
	WaitingList     int
	Frozen          int
}

// Stats считает статистику за год
func (e *Engine) Stats(year int) Stats {
	stats := Stats{Year: year}
	prefix := strconv.Itoa(year) + "-"
	counts := make(map[string]int)

	for key, session := range e.sessions {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		stats.Sessions++
		stats.Students += len(session.Students)
		stats.SessionsByMonth[e.dateOf(key).Month()-1]++
		if session.ExaminerID != nil {
			counts[*session.ExaminerID]++
		}
	}

	for _, examiner := range e.examiners {
		if n := counts[examiner.ID]; n > 0 {
			stats.Examiners = append(stats.Examiners, ExaminerStat{
				ExaminerID: examiner.ID,
				Name:       examiner.Name,
				Sessions:   n,
			})
		}
	}
	sort.SliceStable(stats.Examiners, func(i, j int) bool {
		return stats.Examiners[i].Sessions > stats.Examiners[j].Sessions
	})

	now := e.Now()
	for _, entry := range e.waiting {
		stats.WaitingList++
		if !entry.IsBookable(now) {
			stats.Frozen++
		}
	}

	return stats
}
