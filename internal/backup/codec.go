// Package backup кодирует и разбирает выгрузку данных записи.
//
// Поддерживаются все версии формата:
// 1 - просто карта дней, 2 - дни и лист ожидания, 3 - ещё и экзаменаторы.
// Лимиты по месяцам пишутся начиная с версии 3 и при разборе необязательны.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/google/uuid"
)

const CurrentVersion = 3

var ErrInvalidBackup = errors.New("invalid backup")

// MaxIDLength более длинные идентификаторы из старых выгрузок заменяются на UUID,
// чтобы помещаться в callback data кнопок
const MaxIDLength = 36

// document формат выгрузки текущей версии
type document struct {
	Version       int                      `json:"version"`
	ExportedAt    time.Time                `json:"exportedAt"`
	Sessions      model.SessionMap         `json:"sessions"`
	WaitingList   []model.WaitingListEntry `json:"waitingList"`
	Examiners     []model.Examiner         `json:"examiners"`
	MonthlyLimits model.MonthlyLimits      `json:"monthlyLimits"`
}

// Encode сериализует снимок в формате последней версии
func Encode(snapshot model.Snapshot, exportedAt time.Time) ([]byte, error) {
	snap := snapshot.Clone()
	doc := document{
		Version:       CurrentVersion,
		ExportedAt:    exportedAt,
		Sessions:      snap.Sessions,
		WaitingList:   snap.WaitingList,
		Examiners:     snap.Examiners,
		MonthlyLimits: snap.MonthlyLimits,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// Decoded результат разбора выгрузки.
// Флаги Has* говорят, какие части были в файле: отсутствующие части
// вызывающая сторона оставляет как есть.
type Decoded struct {
	Version          int
	Snapshot         model.Snapshot
	HasWaitingList   bool
	HasExaminers     bool
	HasMonthlyLimits bool
}

type wireStudent struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Phone     string              `json:"phone"`
	Status    model.BookingStatus `json:"status"`
	FailCount int                 `json:"failCount"`
}

type wireSession struct {
	Turn       model.Turn    `json:"turn"`
	ExaminerID *string       `json:"examinerId"`
	Students   []wireStudent `json:"students"`
}

type wireWaiting struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	AddedAt          string `json:"addedAt"`
	CanBookAfter     string `json:"canBookAfter"`
	FailedThreeTimes bool   `json:"failedThreeTimes"`
}

type wireNote struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type wireExaminer struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Notes []wireNote `json:"notes"`
}

// Decode разбирает выгрузку любой версии. Либо возвращается полный снимок,
// либо ErrInvalidBackup и ничего.
func Decode(data []byte, loc *time.Location) (Decoded, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Decoded{}, invalid("parse document: %v", err)
	}

	d := decoder{loc: loc, seen: make(map[string]bool), renamed: make(map[string]string)}
	if d.loc == nil {
		d.loc = time.Local
	}
	out := Decoded{Snapshot: model.NewSnapshot()}

	rawVersion, hasVersion := top["version"]
	rawSessions, hasSessions := top["sessions"]
	if !hasVersion || !hasSessions {
		// Версия 1: корень документа и есть карта дней
		out.Version = 1
		sessions, err := d.sessions(data)
		if err != nil {
			return Decoded{}, err
		}
		out.Snapshot.Sessions = sessions
		return out, nil
	}

	if err := json.Unmarshal(rawVersion, &out.Version); err != nil {
		return Decoded{}, invalid("parse version: %v", err)
	}
	if out.Version < 2 || out.Version > CurrentVersion {
		return Decoded{}, invalid("unsupported version %d", out.Version)
	}

	sessions, err := d.sessions(rawSessions)
	if err != nil {
		return Decoded{}, err
	}
	out.Snapshot.Sessions = sessions

	// Начиная со второй версии лист ожидания всегда часть выгрузки, нет поля - пустой лист
	out.HasWaitingList = true
	if raw, ok := top["waitingList"]; ok && !isNull(raw) {
		list, err := d.waitingList(raw)
		if err != nil {
			return Decoded{}, err
		}
		out.Snapshot.WaitingList = list
	}

	if raw, ok := top["examiners"]; ok && out.Version >= 3 && !isNull(raw) {
		examiners, err := d.examiners(raw)
		if err != nil {
			return Decoded{}, err
		}
		out.Snapshot.Examiners = examiners
		out.HasExaminers = true

		for _, session := range out.Snapshot.Sessions {
			if session.ExaminerID == nil {
				continue
			}
			if id, ok := d.renamed[*session.ExaminerID]; ok {
				session.ExaminerID = &id
			}
		}
	}

	if raw, ok := top["monthlyLimits"]; ok && !isNull(raw) {
		limits, err := d.monthlyLimits(raw)
		if err != nil {
			return Decoded{}, err
		}
		out.Snapshot.MonthlyLimits = limits
		out.HasMonthlyLimits = true
	}

	return out, nil
}

type decoder struct {
	loc     *time.Location
	seen    map[string]bool   // ID записей, уже встреченные в файле
	renamed map[string]string // Старый ID экзаменатора -> новый
}

func (d *decoder) sessions(raw json.RawMessage) (model.SessionMap, error) {
	var wire map[string]wireSession
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, invalid("parse sessions: %v", err)
	}

	sessions := make(model.SessionMap, len(wire))
	for key, ws := range wire {
		date, err := calendar.ParseDateKey(key, d.loc)
		if err != nil || calendar.DateKey(date) != key {
			return nil, invalid("bad date key %q", key)
		}
		if len(ws.Students) > model.MaxStudentsPerSession {
			return nil, invalid("%s has %d students, max %d", key, len(ws.Students), model.MaxStudentsPerSession)
		}

		session := &model.ExamSession{
			Turn:     ws.Turn,
			Students: make([]model.StudentBooking, 0, len(ws.Students)),
		}
		if ws.ExaminerID != nil && *ws.ExaminerID != "" {
			id := *ws.ExaminerID
			session.ExaminerID = &id
		}

		for i, s := range ws.Students {
			booking, err := d.student(s)
			if err != nil {
				return nil, invalid("%s student %d: %v", key, i, err)
			}
			session.Students = append(session.Students, booking)
		}

		if session.IsActive() {
			sessions[key] = session
		}
	}
	return sessions, nil
}

func (d *decoder) student(s wireStudent) (model.StudentBooking, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return model.StudentBooking{}, errors.New("empty name")
	}
	if s.FailCount < 0 || s.FailCount > model.MaxFailCount {
		return model.StudentBooking{}, fmt.Errorf("fail count %d out of range", s.FailCount)
	}
	status := s.Status
	if status == "" {
		status = model.BookingStatusScheduled
	}
	if !status.Valid() {
		return model.StudentBooking{}, fmt.Errorf("unknown status %q", status)
	}

	id := s.ID
	if id == "" || len(id) > MaxIDLength {
		id = uuid.NewString()
	}
	if d.seen[id] {
		return model.StudentBooking{}, fmt.Errorf("duplicate booking id %q", id)
	}
	d.seen[id] = true

	return model.StudentBooking{
		ID:        id,
		Name:      name,
		Phone:     strings.TrimSpace(s.Phone),
		Status:    status,
		FailCount: s.FailCount,
	}, nil
}

func (d *decoder) waitingList(raw json.RawMessage) ([]model.WaitingListEntry, error) {
	var wire []wireWaiting
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, invalid("parse waiting list: %v", err)
	}

	ids := make(map[string]bool, len(wire))
	list := make([]model.WaitingListEntry, 0, len(wire))
	for i, w := range wire {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return nil, invalid("waiting entry %d: empty name", i)
		}
		id := w.ID
		if id == "" || len(id) > MaxIDLength || ids[id] {
			id = uuid.NewString()
		}
		ids[id] = true

		addedAt, err := d.timestamp(w.AddedAt)
		if err != nil {
			return nil, invalid("waiting entry %d addedAt: %v", i, err)
		}
		entry := model.WaitingListEntry{
			ID:               id,
			Name:             name,
			Phone:            strings.TrimSpace(w.Phone),
			AddedAt:          addedAt,
			FailedThreeTimes: w.FailedThreeTimes,
		}
		if w.CanBookAfter != "" {
			until, err := d.timestamp(w.CanBookAfter)
			if err != nil {
				return nil, invalid("waiting entry %d canBookAfter: %v", i, err)
			}
			entry.CanBookAfter = &until
		}
		list = append(list, entry)
	}
	return list, nil
}

func (d *decoder) examiners(raw json.RawMessage) ([]model.Examiner, error) {
	var wire []wireExaminer
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, invalid("parse examiners: %v", err)
	}

	examiners := make([]model.Examiner, 0, len(wire))
	for i, w := range wire {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return nil, invalid("examiner %d: empty name", i)
		}
		id := w.ID
		if id == "" || len(id) > MaxIDLength {
			id = uuid.NewString()
			if w.ID != "" {
				d.renamed[w.ID] = id
			}
		}

		notes := make([]model.ExaminerNote, 0, len(w.Notes))
		for _, n := range w.Notes {
			text := strings.TrimSpace(n.Text)
			if text == "" {
				continue
			}
			createdAt, err := d.timestamp(n.CreatedAt)
			if err != nil {
				return nil, invalid("examiner %d note: %v", i, err)
			}
			noteID := n.ID
			if noteID == "" || len(noteID) > MaxIDLength {
				noteID = uuid.NewString()
			}
			notes = append(notes, model.ExaminerNote{ID: noteID, Text: text, CreatedAt: createdAt})
		}

		examiners = append(examiners, model.Examiner{ID: id, Name: name, Notes: notes})
	}
	return examiners, nil
}

func (d *decoder) monthlyLimits(raw json.RawMessage) (model.MonthlyLimits, error) {
	var wire map[string]int
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, invalid("parse monthly limits: %v", err)
	}

	limits := make(model.MonthlyLimits, len(wire))
	for month, limit := range wire {
		if _, err := calendar.ParseMonthKey(month, d.loc); err != nil {
			return nil, invalid("bad month key %q", month)
		}
		if limit < 0 {
			return nil, invalid("negative limit for %s", month)
		}
		if limit > 0 {
			limits[month] = limit
		}
	}
	return limits, nil
}

// timestamp разбирает время в RFC 3339 или просто дату. Пустая строка - нулевое время.
func (d *decoder) timestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(d.loc), nil
	}
	t, err := calendar.ParseDateKey(s, d.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return t, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBackup, fmt.Sprintf(format, args...))
}
