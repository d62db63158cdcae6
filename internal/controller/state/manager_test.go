package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerDialogLifecycle(t *testing.T) {
	sm := NewManager(DefaultTTL)

	assert.Equal(t, StateNone, sm.GetState(1))

	sm.Start(1, StateBookName, nil)
	sm.SetData(1, KeyName, "Mario Rossi")
	sm.SetState(1, StateBookPhone)

	assert.Equal(t, StateBookPhone, sm.GetState(1))
	name, ok := sm.GetString(1, KeyName)
	require.True(t, ok)
	assert.Equal(t, "Mario Rossi", name)

	// Другой пользователь не видит чужой диалог
	assert.Equal(t, StateNone, sm.GetState(2))

	sm.SetState(1, StateNone)
	assert.Equal(t, StateNone, sm.GetState(1))
	_, ok = sm.GetData(1, KeyName)
	assert.False(t, ok)
}

func TestManagerStartDropsPreviousData(t *testing.T) {
	sm := NewManager(DefaultTTL)
	sm.Start(1, StateBookName, map[string]interface{}{KeyName: "old"})
	sm.Start(1, StateMoveStudentDate, map[string]interface{}{KeyBookingID: "b-1"})

	_, ok := sm.GetData(1, KeyName)
	assert.False(t, ok)
	id, _ := sm.GetString(1, KeyBookingID)
	assert.Equal(t, "b-1", id)
}

func TestManagerExpiresStaleDialogs(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sm := NewManager(10 * time.Minute)
	sm.now = func() time.Time { return now }

	sm.Start(1, StateSearch, map[string]interface{}{KeyName: "x"})
	now = now.Add(9 * time.Minute)
	assert.Equal(t, StateSearch, sm.GetState(1))

	// Чтение не продлевает диалог
	now = now.Add(2 * time.Minute)
	assert.Equal(t, StateNone, sm.GetState(1))
	assert.Nil(t, sm.GetAllData(1))

	// Запись после истечения начинает диалог с чистыми данными
	sm.SetState(1, StateBookName)
	_, ok := sm.GetData(1, KeyName)
	assert.False(t, ok)
}

func TestManagerGetAllDataIsACopy(t *testing.T) {
	sm := NewManager(0)
	sm.Start(1, StateBookDate, map[string]interface{}{KeyName: "Anna"})

	data := sm.GetAllData(1)
	data[KeyName] = "changed"

	name, _ := sm.GetString(1, KeyName)
	assert.Equal(t, "Anna", name)
}
