package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	LotCreated            EventType = "LOT_CREATED"
	LotUpdated            EventType = "LOT_UPDATED"
	LotDeleted            EventType = "LOT_DELETED"
	SettingsUpdated       EventType = "SETTINGS_UPDATED"
	SettingsReset         EventType = "SETTINGS_RESET"
	HistoryCacheRefreshed EventType = "HISTORY_CACHE_REFRESHED"
	ErrorOccurred         EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission and logging. It keeps a small in-memory
// ring of recent events for the system status endpoint.
type Manager struct {
	log    zerolog.Logger
	mu     sync.Mutex
	recent []Event
	limit  int
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:   log.With().Str("service", "events").Logger(),
		limit: 50,
	}
}

// Emit emits an event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	m.mu.Lock()
	m.recent = append(m.recent, event)
	if len(m.recent) > m.limit {
		m.recent = m.recent[len(m.recent)-m.limit:]
	}
	m.mu.Unlock()
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	m.Emit(ErrorOccurred, module, data)
}

// Recent returns a copy of the most recent events, newest last.
func (m *Manager) Recent() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.recent))
	copy(out, m.recent)
	return out
}
