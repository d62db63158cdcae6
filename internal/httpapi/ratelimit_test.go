package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterStoreForgetsIdleClients(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	store := newLimiterStore(60)
	store.now = func() time.Time { return now }

	store.get("10.0.0.1")
	store.get("10.0.0.2")
	assert.Len(t, store.visitors, 2)

	now = now.Add(limiterIdleTTL / 2)
	active := store.get("10.0.0.2")
	assert.Len(t, store.visitors, 2)

	now = now.Add(limiterIdleTTL / 2)
	store.get("10.0.0.3")
	assert.NotContains(t, store.visitors, "10.0.0.1")
	assert.Contains(t, store.visitors, "10.0.0.3")

	// Активный клиент сохраняет свой лимитер
	assert.Same(t, active, store.get("10.0.0.2"))
}
