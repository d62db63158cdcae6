package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/app"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "exams.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	migrator, err := app.NewMigrator(store.DB(), app.DialectSQLite, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(context.Background()))
	return store
}

func TestSQLiteStoreSlots(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	slot, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, slot)

	require.NoError(t, store.PutMany(ctx, map[string][]byte{
		"a":        []byte(`{"x":1}`),
		"backup:1": []byte(`[]`),
		"backup:2": []byte(`[]`),
	}))
	require.NoError(t, store.PutMany(ctx, map[string][]byte{"a": []byte(`{"x":2}`)}))

	slot, err = store.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.JSONEq(t, `{"x":2}`, string(slot.Payload))
	assert.False(t, slot.UpdatedAt.IsZero())

	listed, err := store.List(ctx, "backup:")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "backup:1", listed[0].Name)
	assert.Nil(t, listed[0].Payload)

	require.NoError(t, store.Delete(ctx, "backup:1", "backup:2"))
	listed, err = store.List(ctx, "backup:")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestSnapshotRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSnapshotRepository(newSQLiteStore(t))

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.NewSnapshot(), empty)

	examiner := "ex"
	until := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	snap := model.NewSnapshot()
	snap.Sessions["2025-06-10"] = &model.ExamSession{
		Turn:       model.TurnMorning,
		ExaminerID: &examiner,
		Students:   []model.StudentBooking{{ID: "a", Name: "Mario", Status: model.BookingStatusScheduled, FailCount: 1}},
	}
	snap.MonthlyLimits["2025-06"] = 3
	snap.WaitingList = []model.WaitingListEntry{{ID: "w", Name: "Anna", AddedAt: until.AddDate(0, -1, 0), CanBookAfter: &until, FailedThreeTimes: true}}
	snap.Examiners = []model.Examiner{
		{ID: "ex", Name: "Ferri"},
		{ID: "ex2", Name: "Galli", Notes: []model.ExaminerNote{{ID: "n1", Text: "Severo", CreatedAt: until}}},
	}

	require.NoError(t, repo.Save(ctx, snap))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestSnapshotRepositoryBackupRotation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSnapshotRepository(newSQLiteStore(t))

	days := []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"}
	for _, day := range days {
		require.NoError(t, repo.SaveBackup(ctx, day, []byte(`{"version":3,"day":"`+day+`"}`), 2))
	}

	backups, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "2025-06-04", backups[0].Day)
	assert.Equal(t, "2025-06-03", backups[1].Day)

	payload, err := repo.LoadBackup(ctx, "2025-06-04")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3,"day":"2025-06-04"}`, string(payload))

	payload, err = repo.LoadBackup(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestSnapshotRepositoryNotifiedExams(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSnapshotRepository(newSQLiteStore(t))

	notified, err := repo.NotifiedExams(ctx)
	require.NoError(t, err)
	assert.Empty(t, notified)

	at := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveNotifiedExams(ctx, map[string]time.Time{"2025-06-10": at}))

	notified, err = repo.NotifiedExams(ctx)
	require.NoError(t, err)
	require.Contains(t, notified, "2025-06-10")
	assert.True(t, at.Equal(notified["2025-06-10"]))
}
