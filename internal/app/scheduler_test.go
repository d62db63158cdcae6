package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingNotifier struct {
	mu    sync.Mutex
	dates []string
}

func (n *countingNotifier) NotifyExam(_ context.Context, r service.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dates = append(n.dates, r.DateKey)
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.dates)
}

func TestSchedulerRunsJobsOnStart(t *testing.T) {
	ctx := context.Background()
	store, err := repository.NewSQLiteStore(t.TempDir() + "/exams.db")
	require.NoError(t, err)
	defer store.Close()

	migrator, err := NewMigrator(store.DB(), DialectSQLite, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))

	repo := repository.NewSnapshotRepository(store)
	svc, err := service.NewExamService(ctx, repo, zap.NewNop(), 7, booking.WithLocation(time.UTC))
	require.NoError(t, err)

	tomorrow := svc.Today().AddDate(0, 0, 1)
	_, err = svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: tomorrow})
	require.NoError(t, err)

	notifier := &countingNotifier{}
	scheduler := NewScheduler(svc, notifier, time.Hour, 14, zap.NewNop())
	scheduler.Start(ctx)

	require.Eventually(t, func() bool { return notifier.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	scheduler.Stop()
	scheduler.Stop()

	backups, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}
