package model

// Snapshot всё состояние движка записи в один момент времени
type Snapshot struct {
	Sessions      SessionMap         `json:"sessions"`
	MonthlyLimits MonthlyLimits      `json:"monthlyLimits"`
	WaitingList   []WaitingListEntry `json:"waitingList"`
	Examiners     []Examiner         `json:"examiners"`
}

// NewSnapshot пустое состояние с инициализированными картами
func NewSnapshot() Snapshot {
	return Snapshot{
		Sessions:      SessionMap{},
		MonthlyLimits: MonthlyLimits{},
		WaitingList:   []WaitingListEntry{},
		Examiners:     []Examiner{},
	}
}

// Clone глубокая копия
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Sessions:      s.Sessions.Clone(),
		MonthlyLimits: s.MonthlyLimits.Clone(),
		WaitingList:   make([]WaitingListEntry, len(s.WaitingList)),
		Examiners:     make([]Examiner, len(s.Examiners)),
	}
	for i, entry := range s.WaitingList {
		if entry.CanBookAfter != nil {
			t := *entry.CanBookAfter
			entry.CanBookAfter = &t
		}
		out.WaitingList[i] = entry
	}
	for i, examiner := range s.Examiners {
		notes := make([]ExaminerNote, len(examiner.Notes))
		copy(notes, examiner.Notes)
		examiner.Notes = notes
		out.Examiners[i] = examiner
	}
	return out
}
