package state

import (
	"sync"
	"time"
)

// DefaultTTL через сколько брошенный диалог считается завершённым
const DefaultTTL = 30 * time.Minute

type entry struct {
	UserData
	touched time.Time
}

// Manager управляет состояниями операторов
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*entry // telegramID -> диалог
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создаёт новый менеджер состояний
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		states: make(map[int64]*entry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// lookup возвращает живой диалог. Вызывать под блокировкой.
func (sm *Manager) lookup(telegramID int64) (*entry, bool) {
	e, ok := sm.states[telegramID]
	if !ok {
		return nil, false
	}
	if sm.ttl > 0 && sm.now().Sub(e.touched) > sm.ttl {
		return nil, false
	}
	return e, true
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if e, ok := sm.lookup(telegramID); ok {
		return e.State
	}
	return StateNone
}

// SetState переводит диалог в новое состояние, данные сохраняются
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	e, ok := sm.lookup(telegramID)
	if !ok {
		e = &entry{UserData: UserData{Data: make(map[string]interface{})}}
		sm.states[telegramID] = e
	}
	e.State = state
	e.touched = sm.now()
}

// Start начинает новый диалог, старые данные отбрасываются
func (sm *Manager) Start(telegramID int64, state UserState, data map[string]interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	e := &entry{
		UserData: UserData{State: state, Data: make(map[string]interface{}, len(data))},
		touched:  sm.now(),
	}
	for k, v := range data {
		e.Data[k] = v
	}
	sm.states[telegramID] = e
}

// GetData получает временные данные пользователя
func (sm *Manager) GetData(telegramID int64, key string) (interface{}, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if e, ok := sm.lookup(telegramID); ok {
		value, found := e.Data[key]
		return value, found
	}
	return nil, false
}

// GetString строковое значение или пустая строка
func (sm *Manager) GetString(telegramID int64, key string) (string, bool) {
	value, ok := sm.GetData(telegramID, key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// SetData устанавливает временные данные пользователя
func (sm *Manager) SetData(telegramID int64, key string, value interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	e, ok := sm.lookup(telegramID)
	if !ok {
		e = &entry{UserData: UserData{State: StateNone, Data: make(map[string]interface{})}}
		sm.states[telegramID] = e
	}
	e.Data[key] = value
	e.touched = sm.now()
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// GetAllData копия временных данных пользователя
func (sm *Manager) GetAllData(telegramID int64) map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	e, ok := sm.lookup(telegramID)
	if !ok {
		return nil
	}
	dataCopy := make(map[string]interface{}, len(e.Data))
	for k, v := range e.Data {
		dataCopy[k] = v
	}
	return dataCopy
}
