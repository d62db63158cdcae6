package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/booking"
	"github.com/Freeeeeet/exam_booking_bot/internal/model"
	"github.com/Freeeeeet/exam_booking_bot/internal/repository"
	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepo хранилище в памяти, saveErr имитирует отказ базы
type memoryRepo struct {
	snap    model.Snapshot
	saveErr error
}

func (m *memoryRepo) Load(context.Context) (model.Snapshot, error) { return model.NewSnapshot(), nil }
func (m *memoryRepo) Save(_ context.Context, snap model.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	return nil
}
func (m *memoryRepo) SaveBackup(context.Context, string, []byte, int) error        { return nil }
func (m *memoryRepo) ListBackups(context.Context) ([]repository.BackupInfo, error) { return nil, nil }
func (m *memoryRepo) LoadBackup(context.Context, string) ([]byte, error)           { return nil, nil }
func (m *memoryRepo) NotifiedExams(context.Context) (map[string]time.Time, error) {
	return map[string]time.Time{}, nil
}
func (m *memoryRepo) SaveNotifiedExams(context.Context, map[string]time.Time) error { return nil }

var june1 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *memoryRepo) *service.ExamService {
	t.Helper()
	svc, err := service.NewExamService(context.Background(), repo, zap.NewNop(), 7,
		booking.WithLocation(time.UTC),
		booking.WithClock(func() time.Time { return june1 }),
	)
	require.NoError(t, err)
	return svc
}

func newTestServer(t *testing.T, svc *service.ExamService, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(svc, opts, zap.NewNop())
}

func do(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, newTestService(t, &memoryRepo{}), Options{})

	rec := do(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMonthEndpoint(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memoryRepo{})
	_, err := svc.Book(ctx, booking.BookRequest{Name: "Mario Rossi", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.NoError(t, svc.SetMonthlyLimit(ctx, "2025-06", 1))

	s := newTestServer(t, svc, Options{})
	rec := do(s, http.MethodGet, "/api/months/2025-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp monthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Limit)
	assert.Equal(t, 1, resp.Active)
	// Лимит исчерпан: выбрать можно только уже активный день
	assert.Equal(t, []string{"2025-06-10"}, resp.Selectable)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, 1, resp.Days[0].Students)

	rec = do(s, http.MethodGet, "/api/months/2025-13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetMonthLimit(t *testing.T) {
	svc := newTestService(t, &memoryRepo{})
	s := newTestServer(t, svc, Options{})

	rec := do(s, http.MethodPut, "/api/months/2025-07/limit", []byte(`{"limit":4}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, svc.Month("2025-07").Limit)

	rec = do(s, http.MethodPut, "/api/months/2025-07/limit", []byte(`{"limit":-1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPut, "/api/months/2025-07/limit", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetMonthLimitNotPersisted(t *testing.T) {
	svc := newTestService(t, &memoryRepo{saveErr: errors.New("disk full")})
	s := newTestServer(t, svc, Options{})

	rec := do(s, http.MethodPut, "/api/months/2025-07/limit", []byte(`{"limit":2}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newTestService(t, &memoryRepo{})
	_, err := source.Book(ctx, booking.BookRequest{Name: "Anna Verdi", Date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	_, err = source.AddToWaitingList(ctx, "Luca", "347")
	require.NoError(t, err)

	rec := do(newTestServer(t, source, Options{}), http.MethodGet, "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "esami-guida-2025-06-01.json")

	repo := &memoryRepo{}
	target := newTestService(t, repo)
	s := newTestServer(t, target, Options{})
	rec = do(s, http.MethodPost, "/api/backup", rec.Body.Bytes())
	require.Equal(t, http.StatusOK, rec.Code)

	got := target.Snapshot()
	require.Contains(t, got.Sessions, "2025-06-12")
	assert.Equal(t, source.Snapshot().Sessions["2025-06-12"].Students, got.Sessions["2025-06-12"].Students)
	require.Len(t, got.WaitingList, 1)
	assert.Contains(t, repo.snap.Sessions, "2025-06-12")

	rec = do(s, http.MethodGet, "/api/waiting-list", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Luca"`)
}

func TestImportRejectsGarbage(t *testing.T) {
	repo := &memoryRepo{}
	s := newTestServer(t, newTestService(t, repo), Options{})

	rec := do(s, http.MethodPost, "/api/backup", []byte(`{"version":9,"sessions":{}}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, repo.snap.Sessions)
}

func TestStatsEndpoint(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memoryRepo{})
	_, err := svc.Book(ctx, booking.BookRequest{Name: "Mario Rossi", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	s := newTestServer(t, svc, Options{})

	rec := do(s, http.MethodGet, "/api/stats/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Sessions)
	assert.Equal(t, 1, resp.SessionsByMonth[5])

	rec = do(s, http.MethodGet, "/api/stats/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"capacity", booking.ErrCapacityExceeded, http.StatusConflict},
		{"monthly limit", booking.ErrMonthlyLimitReached, http.StatusConflict},
		{"same date", booking.ErrSameDate, http.StatusConflict},
		{"duplicate", &booking.DuplicateError{Name: "Mario"}, http.StatusConflict},
		{"cooldown", &booking.CooldownError{EntryID: "w1", Until: june1}, http.StatusLocked},
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"validation", booking.ErrEmptyName, http.StatusBadRequest},
		{"not persisted", service.ErrNotPersisted, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
