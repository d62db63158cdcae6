package booking

import (
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitingListOrderAndRemoval(t *testing.T) {
	e, _ := newTestEngine(t, model.NewSnapshot(), june1())

	first, err := e.AddToWaitingList("Mario", "333", nil)
	require.NoError(t, err)
	second, err := e.AddToWaitingList("Luca", "", nil)
	require.NoError(t, err)

	list := e.WaitingList()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, june1(), list[0].AddedAt)
	assert.False(t, list[0].FailedThreeTimes)

	removed, err := e.RemoveFromWaitingList(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mario", removed.Name)
	assert.Len(t, e.WaitingList(), 1)

	_, err = e.RemoveFromWaitingList(first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.AddToWaitingList(" ", "", nil)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestBookFromWaitingListRespectsCooldown(t *testing.T) {
	e, clock := newTestEngine(t, model.NewSnapshot(), june1())

	until := day(t, "2025-07-10")
	entry, err := e.AddToWaitingList("Anna Verdi", "347", &until)
	require.NoError(t, err)

	_, err = e.BookFromWaitingList(entry.ID, day(t, "2025-07-15"), false)
	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.ErrorIs(t, err, ErrCooldown)
	assert.Equal(t, until, cooldown.Until)
	assert.Len(t, e.WaitingList(), 1)
	assert.Empty(t, e.Snapshot().Sessions)

	clock.now = time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	b, err := e.BookFromWaitingList(entry.ID, day(t, "2025-07-15"), false)
	require.NoError(t, err)
	assert.Equal(t, "Anna Verdi", b.Name)
	assert.Equal(t, "347", b.Phone)
	assert.Equal(t, 0, b.FailCount)
	assert.Empty(t, e.WaitingList())
}

func TestBookFromWaitingListKeepsEntryOnRefusal(t *testing.T) {
	e, _ := newTestEngine(t, snapshotWith(model.SessionMap{
		"2025-06-10": {Students: students("a", 7)},
	}), june1())

	entry, err := e.AddToWaitingList("Mario", "", nil)
	require.NoError(t, err)

	_, err = e.BookFromWaitingList(entry.ID, day(t, "2025-06-10"), false)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	_, ok := e.WaitingEntry(entry.ID)
	assert.True(t, ok)

	_, err = e.BookFromWaitingList("missing", day(t, "2025-06-11"), false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookFromWaitingListWarnsAboutDuplicates(t *testing.T) {
	e, _ := newTestEngine(t, snapshotWith(model.SessionMap{
		"2025-06-10": {Students: []model.StudentBooking{{ID: "x", Name: "Mario Rossi", Status: model.BookingStatusScheduled}}},
	}), june1())

	entry, err := e.AddToWaitingList("MARIO ROSSI", "", nil)
	require.NoError(t, err)

	_, err = e.BookFromWaitingList(entry.ID, day(t, "2025-06-12"), false)
	require.ErrorIs(t, err, ErrPossibleDuplicate)
	assert.Len(t, e.WaitingList(), 1)

	_, err = e.BookFromWaitingList(entry.ID, day(t, "2025-06-12"), true)
	require.NoError(t, err)
	assert.Empty(t, e.WaitingList())
}

func TestExaminers(t *testing.T) {
	e, clock := newTestEngine(t, model.NewSnapshot(), june1())

	ex, err := e.AddExaminer(" Ing. Ferri ")
	require.NoError(t, err)
	assert.Equal(t, "Ing. Ferri", ex.Name)

	clock.now = june1().Add(time.Hour)
	note, err := e.AddExaminerNote(ex.ID, "preferisce il mattino")
	require.NoError(t, err)
	assert.Equal(t, june1().Add(time.Hour), note.CreatedAt)

	got, ok := e.Examiner(ex.ID)
	require.True(t, ok)
	require.Len(t, got.Notes, 1)

	_, err = e.AddExaminerNote(ex.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.AddExaminerNote("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.DeleteExaminerNote(ex.ID, note.ID))
	assert.ErrorIs(t, e.DeleteExaminerNote(ex.ID, note.ID), ErrNotFound)

	_, err = e.RemoveExaminer(ex.ID)
	require.NoError(t, err)
	assert.Empty(t, e.Examiners())
	_, err = e.RemoveExaminer(ex.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueries(t *testing.T) {
	exA, exB := "ex-a", "ex-b"
	snap := snapshotWith(model.SessionMap{
		"2025-05-20": {Turn: model.TurnMorning, ExaminerID: &exA, Students: students("m", 2)},
		"2025-06-03": {Turn: model.TurnMorning, ExaminerID: &exA, Students: []model.StudentBooking{
			{ID: "s1", Name: "Niccolò Bianchi", Status: model.BookingStatusScheduled},
		}},
		"2025-06-05": {ExaminerID: &exB, Students: students("f", 7)},
		"2025-06-20": {Turn: model.TurnAfternoon, ExaminerID: &exA},
		"2024-06-20": {Turn: model.TurnAfternoon, ExaminerID: &exB},
	})
	snap.Examiners = []model.Examiner{{ID: exA, Name: "Ferri"}, {ID: exB, Name: "Galli"}}
	future := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	snap.WaitingList = []model.WaitingListEntry{
		{ID: "w1", Name: "Anna", AddedAt: june1()},
		{ID: "w2", Name: "Bruno", AddedAt: june1(), CanBookAfter: &future, FailedThreeTimes: true},
	}
	e, _ := newTestEngine(t, snap, june1())

	t.Run("sessions in month", func(t *testing.T) {
		views := e.SessionsInMonth("2025-06")
		require.Len(t, views, 3)
		assert.Equal(t, "2025-06-03", views[0].DateKey)
		assert.Equal(t, "2025-06-05", views[1].DateKey)
		assert.Equal(t, "2025-06-20", views[2].DateKey)
		assert.Equal(t, day(t, "2025-06-20"), views[2].Date)
	})

	t.Run("available dates", func(t *testing.T) {
		views := e.AvailableDates(day(t, "2025-06-01"))
		keys := make([]string, 0, len(views))
		for _, v := range views {
			keys = append(keys, v.DateKey)
		}
		assert.Equal(t, []string{"2025-06-03", "2025-06-20"}, keys)
	})

	t.Run("search", func(t *testing.T) {
		results := e.Search("niccolo")
		require.Len(t, results, 1)
		assert.Equal(t, "s1", results[0].Booking.ID)
		assert.Equal(t, "2025-06-03", results[0].DateKey)
		assert.Nil(t, e.Search("   "))
	})

	t.Run("upcoming", func(t *testing.T) {
		upcoming := e.UpcomingSessions(day(t, "2025-06-01"), 14)
		require.Len(t, upcoming, 2)
		assert.Equal(t, "2025-06-03", upcoming[0].DateKey)
		assert.Equal(t, 2, upcoming[0].DaysUntil)
		assert.Equal(t, 4, upcoming[1].DaysUntil)
	})

	t.Run("stats", func(t *testing.T) {
		stats := e.Stats(2025)
		assert.Equal(t, 4, stats.Sessions)
		assert.Equal(t, 10, stats.Students)
		assert.Equal(t, 1, stats.SessionsByMonth[time.May-1])
		assert.Equal(t, 3, stats.SessionsByMonth[time.June-1])
		require.Len(t, stats.Examiners, 2)
		assert.Equal(t, ExaminerStat{ExaminerID: exA, Name: "Ferri", Sessions: 3}, stats.Examiners[0])
		assert.Equal(t, ExaminerStat{ExaminerID: exB, Name: "Galli", Sessions: 1}, stats.Examiners[1])
		assert.Equal(t, 2, stats.WaitingList)
		assert.Equal(t, 1, stats.Frozen)
	})
}
