package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyUsesOwnCalendarFields(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	// 00:30 в Риме по UTC ещё предыдущий день, ключ должен остаться римским
	early := time.Date(2025, time.June, 11, 0, 30, 0, 0, rome)
	assert.Equal(t, "2025-06-11", DateKey(early))
	assert.Equal(t, "2025-06", MonthKey(early))
	assert.Equal(t, "2025-06-10", DateKey(early.UTC()))

	// То же на границе месяца
	firstOfJuly := time.Date(2025, time.July, 1, 0, 30, 0, 0, rome)
	assert.Equal(t, "2025-07", MonthKey(firstOfJuly))
	assert.Equal(t, "2025-06", MonthKey(firstOfJuly.UTC()))
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	loc := time.UTC
	d, err := ParseDateKey("2025-02-03", loc)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", DateKey(d))
	assert.Equal(t, 0, d.Hour())

	_, err = ParseDateKey("2025-2-3", loc)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParseDateKey("2025-13-01", loc)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseMonthKey(t *testing.T) {
	m, err := ParseMonthKey("2025-06", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.June, m.Month())
	assert.Equal(t, 1, m.Day())

	_, err = ParseMonthKey("June", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseUserDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-07-10", "2025-07-10"},
		{"10/07/2025", "2025-07-10"},
		{"1/7/2025", "2025-07-01"},
		{"10-07-2025", "2025-07-10"},
		{" 10.07.2025 ", "2025-07-10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUserDate(tt.in, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, DateKey(got))
		})
	}

	_, err := ParseUserDate("domani", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAddMonthsNormalisesOverflow(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-03", DateKey(AddMonths(jan31, 1)))

	june10 := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-10", DateKey(AddMonths(june10, 1)))
	assert.Equal(t, "2025-06-25", DateKey(AddDays(june10, 15)))
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	before := time.Date(2025, time.March, 29, 0, 0, 0, 0, rome)
	after := time.Date(2025, time.March, 31, 0, 0, 0, 0, rome)
	assert.Equal(t, 2, DaysBetween(before, after))
	assert.Equal(t, -2, DaysBetween(after, before))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
	assert.Equal(t, "2025-06", MonthKeyOf("2025-06-10"))
}
