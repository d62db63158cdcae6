package common

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepo хранилище без сохранения для экранов
type memoryRepo struct{}

func (memoryRepo) Load(context.Context) (model.Snapshot, error)                 { return model.NewSnapshot(), nil }
func (memoryRepo) Save(context.Context, model.Snapshot) error                   { return nil }
func (memoryRepo) SaveBackup(context.Context, string, []byte, int) error        { return nil }
func (memoryRepo) ListBackups(context.Context) ([]repository.BackupInfo, error) { return nil, nil }
func (memoryRepo) LoadBackup(context.Context, string) ([]byte, error)           { return nil, nil }
func (memoryRepo) NotifiedExams(context.Context) (map[string]time.Time, error) {
	return map[string]time.Time{}, nil
}
func (memoryRepo) SaveNotifiedExams(context.Context, map[string]time.Time) error { return nil }

var june1 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newScreenService(t *testing.T) *service.ExamService {
	t.Helper()
	svc, err := service.NewExamService(context.Background(), memoryRepo{}, zap.NewNop(), 7,
		booking.WithLocation(time.UTC),
		booking.WithClock(func() time.Time { return june1 }),
	)
	require.NoError(t, err)
	return svc
}

func buttonData(s Screen) []string {
	var out []string
	for _, row := range s.Keyboard.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

func hasAction(s Screen, action string) bool {
	for _, data := range buttonData(s) {
		if a, _ := callbacktypes.ParseData(data); a == action {
			return true
		}
	}
	return false
}

func TestScreensFitCallbackDataLimit(t *testing.T) {
	ctx := context.Background()
	svc := newScreenService(t)
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	var last model.StudentBooking
	for i := 0; i < model.MaxStudentsPerSession; i++ {
		b, err := svc.Book(ctx, booking.BookRequest{Name: fmt.Sprintf("Allievo %d", i), Date: date})
		require.NoError(t, err)
		last = b
	}
	ex, err := svc.AddExaminer(ctx, "Bianchi")
	require.NoError(t, err)
	_, err = svc.AddExaminerNote(ctx, ex.ID, "Severo sulle precedenze")
	require.NoError(t, err)
	entry, err := svc.AddToWaitingList(ctx, "Giulia", "333")
	require.NoError(t, err)
	_, err = svc.Book(ctx, booking.BookRequest{Name: "Altro", Date: date.AddDate(0, 0, 2)})
	require.NoError(t, err)

	student, err := BuildStudentScreen(svc, last.ID)
	require.NoError(t, err)
	outcome, err := BuildOutcomeDateScreen(svc, last.ID, model.BookingStatusFailed)
	require.NoError(t, err)
	remove, err := BuildRemoveStudentScreen(svc, last.ID)
	require.NoError(t, err)
	waiting, err := BuildWaitingEntryScreen(svc, entry.ID)
	require.NoError(t, err)
	examiner, err := BuildExaminerScreen(svc, ex.ID)
	require.NoError(t, err)

	screens := []Screen{
		BuildMonthScreen(svc, date),
		BuildDayScreen(svc, date),
		BuildDeleteDayScreen(date, 7),
		BuildExaminerPickerScreen(svc, date),
		student, outcome, remove, waiting, examiner,
		BuildWaitingListScreen(svc),
		BuildExaminersScreen(svc),
		BuildBackupsScreen([]repository.BackupInfo{{Day: "2025-05-31"}}, time.UTC),
	}

	for _, s := range screens {
		for _, data := range buttonData(s) {
			assert.LessOrEqual(t, len(data), callbacktypes.MaxDataLength, data)
			assert.NotEmpty(t, data)
		}
	}
}

func TestDayScreenHidesBookingWhenFull(t *testing.T) {
	ctx := context.Background()
	svc := newScreenService(t)
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	empty := BuildDayScreen(svc, date)
	assert.True(t, hasAction(empty, callbacktypes.BookOnDay))
	assert.False(t, hasAction(empty, callbacktypes.DeleteDay))

	for i := 0; i < model.MaxStudentsPerSession; i++ {
		_, err := svc.Book(ctx, booking.BookRequest{Name: fmt.Sprintf("Allievo %d", i), Date: date})
		require.NoError(t, err)
	}

	full := BuildDayScreen(svc, date)
	assert.False(t, hasAction(full, callbacktypes.BookOnDay))
	assert.True(t, hasAction(full, callbacktypes.DeleteDay))
	assert.Contains(t, full.Text, "7/7")
}

func TestOutcomeScreenOnThirdFailure(t *testing.T) {
	ctx := context.Background()
	svc := newScreenService(t)
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	b, err := svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date, FailCount: 2})
	require.NoError(t, err)

	failed, err := BuildOutcomeDateScreen(svc, b.ID, model.BookingStatusFailed)
	require.NoError(t, err)
	assert.Contains(t, failed.Text, "terza bocciatura")
	assert.True(t, hasAction(failed, callbacktypes.OutcomeNoDate))
	assert.False(t, hasAction(failed, callbacktypes.OutcomeSuggested))

	absent, err := BuildOutcomeDateScreen(svc, b.ID, model.BookingStatusAbsent)
	require.NoError(t, err)
	assert.True(t, hasAction(absent, callbacktypes.OutcomeSuggested))
	assert.Contains(t, absent.Text, "assente")
	assert.True(t, strings.Contains(buttonText(absent), "25/06/2025"), "absent retry suggested 15 days later")
}

func TestWaitingEntryScreenInCooldown(t *testing.T) {
	ctx := context.Background()
	svc := newScreenService(t)
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	b, err := svc.Book(ctx, booking.BookRequest{Name: "Mario", Date: date, FailCount: 2})
	require.NoError(t, err)
	res, err := svc.RecordOutcome(ctx, b.ID, model.BookingStatusFailed, nil)
	require.NoError(t, err)
	require.NotNil(t, res.WaitingEntry)

	screen, err := BuildWaitingEntryScreen(svc, res.WaitingEntry.ID)
	require.NoError(t, err)
	assert.Contains(t, screen.Text, "Prenotabile dal 10/07/2025")
	assert.False(t, hasAction(screen, callbacktypes.BookWaiting))
	assert.True(t, hasAction(screen, callbacktypes.RemoveWaiting))
}

func buttonText(s Screen) string {
	var sb strings.Builder
	for _, row := range s.Keyboard.InlineKeyboard {
		for _, b := range row {
			sb.WriteString(b.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
