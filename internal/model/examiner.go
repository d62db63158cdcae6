package model

import "time"

type ExaminerNote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Examiner экзаменатор. Сессия хранит только его ID.
type Examiner struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Notes []ExaminerNote `json:"notes,omitempty"`
}
