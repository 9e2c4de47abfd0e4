package events

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Recent(t *testing.T) {
	m := NewManager(zerolog.Nop())

	m.Emit(LotCreated, "portfolio", map[string]interface{}{"id": "abc"})
	m.Emit(SettingsUpdated, "settings", nil)

	recent := m.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, LotCreated, recent[0].Type)
	assert.Equal(t, "portfolio", recent[0].Module)
	assert.Equal(t, SettingsUpdated, recent[1].Type)
	assert.False(t, recent[0].Timestamp.IsZero())
}

func TestManager_RingIsBounded(t *testing.T) {
	m := NewManager(zerolog.Nop())

	for i := 0; i < 75; i++ {
		m.Emit(LotCreated, "portfolio", map[string]interface{}{"n": i})
	}

	recent := m.Recent()
	require.Len(t, recent, 50)
	// The oldest 25 events were dropped.
	assert.Equal(t, 25, recent[0].Data["n"])
	assert.Equal(t, 74, recent[49].Data["n"])
}

func TestManager_EmitError(t *testing.T) {
	m := NewManager(zerolog.Nop())

	m.EmitError("market", errors.New("provider down"), map[string]interface{}{"symbol": "AAPL"})

	recent := m.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, ErrorOccurred, recent[0].Type)
	assert.Equal(t, "provider down", recent[0].Data["error"])
}

func TestManager_RecentReturnsCopy(t *testing.T) {
	m := NewManager(zerolog.Nop())
	m.Emit(LotCreated, "portfolio", nil)

	recent := m.Recent()
	recent[0].Module = fmt.Sprintf("mutated-%d", 1)

	assert.Equal(t, "portfolio", m.Recent()[0].Module)
}
