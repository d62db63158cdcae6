package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/model"
)

// Имена ячеек
const (
	SlotSessions      = "sessions"
	SlotMonthlyLimits = "monthly_limits"
	SlotWaitingList   = "waiting_list"
	SlotExaminers     = "examiners"
	SlotNotifiedExams = "notified_exams"
	BackupPrefix      = "backup:"
)

// BackupInfo сохранённая ежедневная копия
type BackupInfo struct {
	Day       string // YYYY-MM-DD
	UpdatedAt time.Time
}

// SnapshotRepository хранит снимок движка записи по ячейкам
type SnapshotRepository struct {
	store SlotStore
}

func NewSnapshotRepository(store SlotStore) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

// Load читает снимок. Отсутствующие ячейки дают пустые значения.
func (r *SnapshotRepository) Load(ctx context.Context) (model.Snapshot, error) {
	snap := model.NewSnapshot()

	targets := []struct {
		name string
		dst  any
	}{
		{SlotSessions, &snap.Sessions},
		{SlotMonthlyLimits, &snap.MonthlyLimits},
		{SlotWaitingList, &snap.WaitingList},
		{SlotExaminers, &snap.Examiners},
	}
	for _, target := range targets {
		if _, err := r.loadJSON(ctx, target.name, target.dst); err != nil {
			return model.Snapshot{}, err
		}
	}

	// null в ячейке не должен превращаться в nil карту
	if snap.Sessions == nil {
		snap.Sessions = model.SessionMap{}
	}
	if snap.MonthlyLimits == nil {
		snap.MonthlyLimits = model.MonthlyLimits{}
	}
	return snap, nil
}

// Save пишет все четыре ячейки снимка одной транзакцией
func (r *SnapshotRepository) Save(ctx context.Context, snap model.Snapshot) error {
	payloads := make(map[string][]byte, 4)
	values := map[string]any{
		SlotSessions:      snap.Sessions,
		SlotMonthlyLimits: snap.MonthlyLimits,
		SlotWaitingList:   snap.WaitingList,
		SlotExaminers:     snap.Examiners,
	}
	for name, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode slot %s: %w", name, err)
		}
		payloads[name] = data
	}

	if err := r.store.PutMany(ctx, payloads); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// SaveBackup сохраняет копию за день и оставляет только keep самых новых
func (r *SnapshotRepository) SaveBackup(ctx context.Context, day string, payload []byte, keep int) error {
	if err := r.store.PutMany(ctx, map[string][]byte{BackupPrefix + day: payload}); err != nil {
		return fmt.Errorf("save backup %s: %w", day, err)
	}
	if keep <= 0 {
		return nil
	}

	backups, err := r.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}

	stale := make([]string, 0, len(backups)-keep)
	for _, b := range backups[keep:] {
		stale = append(stale, BackupPrefix+b.Day)
	}
	if err := r.store.Delete(ctx, stale...); err != nil {
		return fmt.Errorf("rotate backups: %w", err)
	}
	return nil
}

// ListBackups копии от новой к старой
func (r *SnapshotRepository) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	slots, err := r.store.List(ctx, BackupPrefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(slots))
	for _, slot := range slots {
		backups = append(backups, BackupInfo{
			Day:       strings.TrimPrefix(slot.Name, BackupPrefix),
			UpdatedAt: slot.UpdatedAt,
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Day > backups[j].Day })
	return backups, nil
}

// LoadBackup содержимое копии, nil если её нет
func (r *SnapshotRepository) LoadBackup(ctx context.Context, day string) ([]byte, error) {
	slot, err := r.store.Get(ctx, BackupPrefix+day)
	if err != nil {
		return nil, fmt.Errorf("load backup %s: %w", day, err)
	}
	if slot == nil {
		return nil, nil
	}
	return slot.Payload, nil
}

// NotifiedExams дни экзаменов, о которых уже напомнили, с моментом напоминания
func (r *SnapshotRepository) NotifiedExams(ctx context.Context) (map[string]time.Time, error) {
	notified := make(map[string]time.Time)
	if _, err := r.loadJSON(ctx, SlotNotifiedExams, &notified); err != nil {
		return nil, err
	}
	if notified == nil {
		notified = make(map[string]time.Time)
	}
	return notified, nil
}

func (r *SnapshotRepository) SaveNotifiedExams(ctx context.Context, notified map[string]time.Time) error {
	data, err := json.Marshal(notified)
	if err != nil {
		return fmt.Errorf("encode notified exams: %w", err)
	}
	if err := r.store.PutMany(ctx, map[string][]byte{SlotNotifiedExams: data}); err != nil {
		return fmt.Errorf("save notified exams: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) loadJSON(ctx context.Context, name string, dst any) (bool, error) {
	slot, err := r.store.Get(ctx, name)
	if err != nil {
		return false, fmt.Errorf("load slot %s: %w", name, err)
	}
	if slot == nil {
		return false, nil
	}
	if err := json.Unmarshal(slot.Payload, dst); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", name, err)
	}
	return true, nil
}
