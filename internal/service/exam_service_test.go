package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/calendar"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memStore хранилище ячеек в памяти
type memStore struct {
	mu      sync.Mutex
	slots   map[string]repository.Slot
	puts    int
	failPut error
}

func newMemStore() *memStore {
	return &memStore{slots: make(map[string]repository.Slot)}
}

func (m *memStore) Get(_ context.Context, name string) (*repository.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[name]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (m *memStore) PutMany(_ context.Context, payloads map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	for name, payload := range payloads {
		m.slots[name] = repository.Slot{Name: name, Payload: payload, UpdatedAt: time.Now()}
	}
	m.puts++
	return nil
}

func (m *memStore) Delete(_ context.Context, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		delete(m.slots, name)
	}
	return nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]repository.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Slot
	for name, slot := range m.slots {
		if strings.HasPrefix(name, prefix) {
			out = append(out, repository.Slot{Name: name, UpdatedAt: slot.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) Close() error { return nil }

type fixture struct {
	svc   *ExamService
	store *memStore
	logs  *observer.ObservedLogs
	now   *time.Time
}

func newFixture(t *testing.T, store *memStore) *fixture {
	t.Helper()
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{store: store, now: &now}

	n := 0
	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs

	svc, err := NewExamService(context.Background(), repository.NewSnapshotRepository(store), zap.New(core), 3,
		booking.WithClock(func() time.Time { return *f.now }),
		booking.WithLocation(time.UTC),
		booking.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func date(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := calendar.ParseDateKey(key, time.UTC)
	require.NoError(t, err)
	return d
}

func TestMutationsArePersisted(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)

	b, err := f.svc.Book(ctx, booking.BookRequest{Name: "Mario Rossi", Date: date(t, "2025-06-10")})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetTurn(ctx, date(t, "2025-06-10"), model.TurnMorning))
	require.NoError(t, f.svc.SetMonthlyLimit(ctx, "2025-06", 4))
	_, err = f.svc.AddToWaitingList(ctx, "Anna", "347")
	require.NoError(t, err)
	_, err = f.svc.AddExaminer(ctx, "Ferri")
	require.NoError(t, err)

	reloaded := newFixture(t, store)
	_, got, ok := reloaded.svc.FindBooking(b.ID)
	require.True(t, ok)
	assert.Equal(t, "Mario Rossi", got.Name)
	session, _ := reloaded.svc.Session(date(t, "2025-06-10"))
	assert.Equal(t, model.TurnMorning, session.Turn)
	assert.Equal(t, MonthInfo{MonthKey: "2025-06", Limit: 4, Active: 1}, reloaded.svc.Month("2025-06"))
	assert.Len(t, reloaded.svc.WaitingList(), 1)
	assert.Len(t, reloaded.svc.Examiners(), 1)
}

func TestRefusalIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)

	_, err := f.svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date(t, "2025-06-10")})
	require.NoError(t, err)
	puts := store.puts

	_, err = f.svc.Book(ctx, booking.BookRequest{Name: "mario", Date: date(t, "2025-06-11")})
	require.ErrorIs(t, err, booking.ErrPossibleDuplicate)
	assert.Equal(t, puts, store.puts)
}

func TestPersistenceFailureKeepsChangeInMemory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)
	store.failPut = errors.New("disk full")

	b, err := f.svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date(t, "2025-06-10")})
	require.ErrorIs(t, err, ErrNotPersisted)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotEmpty(t, b.ID, "result is returned together with the error")

	_, _, ok := f.svc.FindBooking(b.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to persist snapshot").Len())
}

func TestFailedWithoutDateIsLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newMemStore())

	b, err := f.svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date(t, "2025-06-10")})
	require.NoError(t, err)

	res, err := f.svc.RecordOutcome(ctx, b.ID, model.BookingStatusFailed, nil)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeRemoved, res.Action)

	warnings := f.logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Mario", warnings[0].ContextMap()["name"])
}

func TestImportReplacesState(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)

	_, err := f.svc.Book(ctx, booking.BookRequest{Name: "Old", Date: date(t, "2025-06-10")})
	require.NoError(t, err)
	_, err = f.svc.AddToWaitingList(ctx, "Anna", "")
	require.NoError(t, err)

	// Первая версия: только дни, лист ожидания остаётся
	decoded, err := f.svc.Import(ctx, []byte(`{"2025-07-01": {"turn": "MATTINA", "students": [{"id": "n1", "name": "New"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Version)

	snap := f.svc.Snapshot()
	assert.Len(t, snap.Sessions, 1)
	assert.Contains(t, snap.Sessions, "2025-07-01")
	assert.Len(t, snap.WaitingList, 1)

	reloaded := newFixture(t, store)
	assert.Equal(t, snap, reloaded.svc.Snapshot())
}

func TestImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)

	_, err := f.svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date(t, "2025-06-10")})
	require.NoError(t, err)
	before := f.svc.Snapshot()

	_, err = f.svc.Import(ctx, []byte(`{"version": 3, "sessions": {"2025-07-01": {"turn": null, "students": [{"name": ""}]}}}`))
	require.Error(t, err)
	assert.Equal(t, before, f.svc.Snapshot())

	store.failPut = errors.New("offline")
	_, err = f.svc.Import(ctx, []byte(`{"version": 3, "sessions": {}}`))
	require.Error(t, err)
	assert.Equal(t, before, f.svc.Snapshot())
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newMemStore())

	_, err := f.svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date(t, "2025-06-10"), FailCount: 2})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetMonthlyLimit(ctx, "2025-06", 2))
	before := f.svc.Snapshot()

	data, err := f.svc.Export(ctx)
	require.NoError(t, err)

	other := newFixture(t, newMemStore())
	_, err = other.svc.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, before, other.svc.Snapshot())
}

func TestDailyBackup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newMemStore())

	saved, err := f.svc.DailyBackup(ctx)
	require.NoError(t, err)
	assert.False(t, saved, "nothing to back up")

	_, err = f.svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date(t, "2025-06-10")})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		saved, err = f.svc.DailyBackup(ctx)
		require.NoError(t, err)
		assert.True(t, saved)

		saved, err = f.svc.DailyBackup(ctx)
		require.NoError(t, err)
		assert.False(t, saved, "one backup per day")

		*f.now = f.now.AddDate(0, 0, 1)
	}

	backups, err := f.svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "2025-06-05", backups[0].Day)

	_, err = f.svc.RemoveStudent(ctx, f.svc.Snapshot().Sessions["2025-06-10"].Students[0].ID)
	require.NoError(t, err)

	_, err = f.svc.RestoreBackup(ctx, "2025-06-05")
	require.NoError(t, err)
	assert.Len(t, f.svc.Snapshot().Sessions, 1)

	_, err = f.svc.RestoreBackup(ctx, "2025-06-01")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

type recordingNotifier struct {
	reminders []Reminder
	fail      map[string]bool
}

func (n *recordingNotifier) NotifyExam(_ context.Context, r Reminder) error {
	if n.fail[r.DateKey] {
		return errors.New("telegram unavailable")
	}
	n.reminders = append(n.reminders, r)
	return nil
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)

	ex, err := f.svc.AddExaminer(ctx, "Ferri")
	require.NoError(t, err)
	for _, key := range []string{"2025-06-01", "2025-06-03", "2025-06-15", "2025-06-16"} {
		_, err := f.svc.Book(ctx, booking.BookRequest{Name: "Allievo " + key, Date: date(t, key)})
		require.NoError(t, err)
	}
	require.NoError(t, f.svc.SetExaminer(ctx, date(t, "2025-06-03"), &ex.ID))

	repo := repository.NewSnapshotRepository(store)
	require.NoError(t, repo.SaveNotifiedExams(ctx, map[string]time.Time{
		"2025-04-01": time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
	}))

	notifier := &recordingNotifier{fail: map[string]bool{"2025-06-15": true}}
	sent, err := f.svc.SendReminders(ctx, notifier, 14)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, notifier.reminders, 2)
	assert.Equal(t, 0, notifier.reminders[0].DaysUntil)
	assert.Equal(t, 2, notifier.reminders[1].DaysUntil)
	require.NotNil(t, notifier.reminders[1].Examiner)
	assert.Equal(t, "Ferri", notifier.reminders[1].Examiner.Name)

	notified, err := repo.NotifiedExams(ctx)
	require.NoError(t, err)
	assert.NotContains(t, notified, "2025-04-01", "old keys are pruned")
	require.Contains(t, notified, "2025-06-01")
	assert.True(t, notified["2025-06-01"].Equal(*f.now), "notification time comes from the service clock")
	assert.NotContains(t, notified, "2025-06-15", "failed delivery is retried")

	notifier.fail = nil
	sent, err = f.svc.SendReminders(ctx, notifier, 14)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, "2025-06-15", notifier.reminders[2].DateKey)
}
