package model

import "time"

// WaitingListEntry ученик, который ещё не записан на дату
type WaitingListEntry struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone,omitempty"`
	AddedAt          time.Time  `json:"addedAt"`
	CanBookAfter     *time.Time `json:"canBookAfter,omitempty"`     // До этого момента записать нельзя
	FailedThreeTimes bool       `json:"failedThreeTimes,omitempty"` // Попал в список после третьей неудачи
}

// IsBookable можно ли записать ученика в момент now
func (e WaitingListEntry) IsBookable(now time.Time) bool {
	return e.CanBookAfter == nil || !now.Before(*e.CanBookAfter)
}

// MonthlyLimits месяц (YYYY-MM) -> максимум активных дней
type MonthlyLimits map[string]int

func (m MonthlyLimits) Clone() MonthlyLimits {
	out := make(MonthlyLimits, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
