package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Turn string

const (
	TurnUnset     Turn = ""           // Смена не выбрана
	TurnMorning   Turn = "MATTINA"    // Утро
	TurnAfternoon Turn = "POMERIGGIO" // После обеда
)

// MaxStudentsPerSession максимум учеников на одну дату
const MaxStudentsPerSession = 7

// Valid проверяет что смена известна (включая пустую)
func (t Turn) Valid() bool {
	switch t {
	case TurnUnset, TurnMorning, TurnAfternoon:
		return true
	}
	return false
}

// MarshalJSON пишет null для невыбранной смены, как в старых выгрузках
func (t Turn) MarshalJSON() ([]byte, error) {
	if t == TurnUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = TurnUnset
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode turn: %w", err)
	}
	turn := Turn(raw)
	if !turn.Valid() {
		return fmt.Errorf("unknown turn %q", raw)
	}
	*t = turn
	return nil
}

// ExamSession экзаменационный день
type ExamSession struct {
	Turn       Turn             `json:"turn"`
	ExaminerID *string          `json:"examinerId,omitempty"` // указатель - может быть nil
	Students   []StudentBooking `json:"students"`
}

// IsActive день считается активным, если выбрана смена или есть ученики
func (s *ExamSession) IsActive() bool {
	return s != nil && (s.Turn != TurnUnset || len(s.Students) > 0)
}

// IsFull true если мест больше нет
func (s *ExamSession) IsFull() bool {
	return s != nil && len(s.Students) >= MaxStudentsPerSession
}

// FreeSeats сколько ещё учеников можно записать
func (s *ExamSession) FreeSeats() int {
	if s == nil {
		return MaxStudentsPerSession
	}
	return MaxStudentsPerSession - len(s.Students)
}

// IndexOf возвращает позицию записи или -1
func (s *ExamSession) IndexOf(bookingID string) int {
	for i := range s.Students {
		if s.Students[i].ID == bookingID {
			return i
		}
	}
	return -1
}

// Clone глубокая копия сессии
func (s *ExamSession) Clone() *ExamSession {
	if s == nil {
		return nil
	}
	out := &ExamSession{Turn: s.Turn}
	if s.ExaminerID != nil {
		id := *s.ExaminerID
		out.ExaminerID = &id
	}
	out.Students = make([]StudentBooking, len(s.Students))
	copy(out.Students, s.Students)
	return out
}

// SessionMap дата (YYYY-MM-DD) -> экзаменационный день
type SessionMap map[string]*ExamSession

// Clone глубокая копия карты
func (m SessionMap) Clone() SessionMap {
	out := make(SessionMap, len(m))
	for key, session := range m {
		out[key] = session.Clone()
	}
	return out
}
