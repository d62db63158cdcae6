package booking

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// AddExaminer добавляет экзаменатора в список
func (e *Engine) AddExaminer(name string) (model.Examiner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Examiner{}, ErrEmptyName
	}
	examiner := model.Examiner{ID: e.newID(), Name: name}
	e.examiners = append(e.examiners, examiner)
	return examiner, nil
}

// RemoveExaminer удаляет экзаменатора. Ссылки в днях остаются как есть.
func (e *Engine) RemoveExaminer(examinerID string) (model.Examiner, error) {
	idx := e.examinerIndex(examinerID)
	if idx < 0 {
		return model.Examiner{}, fmt.Errorf("%w: examiner %s", ErrNotFound, examinerID)
	}
	removed := e.examiners[idx]
	e.examiners = append(e.examiners[:idx:idx], e.examiners[idx+1:]...)
	return removed, nil
}

// AddExaminerNote добавляет заметку к экзаменатору
func (e *Engine) AddExaminerNote(examinerID, text string) (model.ExaminerNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ExaminerNote{}, fmt.Errorf("%w: note is empty", ErrInvalidInput)
	}
	idx := e.examinerIndex(examinerID)
	if idx < 0 {
		return model.ExaminerNote{}, fmt.Errorf("%w: examiner %s", ErrNotFound, examinerID)
	}
	note := model.ExaminerNote{ID: e.newID(), Text: text, CreatedAt: e.Now()}
	e.examiners[idx].Notes = append(e.examiners[idx].Notes, note)
	return note, nil
}

// DeleteExaminerNote удаляет заметку
func (e *Engine) DeleteExaminerNote(examinerID, noteID string) error {
	idx := e.examinerIndex(examinerID)
	if idx < 0 {
		return fmt.Errorf("%w: examiner %s", ErrNotFound, examinerID)
	}
	notes := e.examiners[idx].Notes
	for i := range notes {
		if notes[i].ID == noteID {
			e.examiners[idx].Notes = append(notes[:i:i], notes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: note %s", ErrNotFound, noteID)
}

// Examiners копия списка экзаменаторов
func (e *Engine) Examiners() []model.Examiner {
	return e.Snapshot().Examiners
}

// Examiner экзаменатор по ID
func (e *Engine) Examiner(examinerID string) (model.Examiner, bool) {
	idx := e.examinerIndex(examinerID)
	if idx < 0 {
		return model.Examiner{}, false
	}
	return e.examiners[idx], true
}

func (e *Engine) examinerIndex(examinerID string) int {
	for i := range e.examiners {
		if e.examiners[i].ID == examinerID {
			return i
		}
	}
	return -1
}
