package npc

import "sync"

// Keys the orchestrator publishes every turn.
const (
	SharedGameTime       = "game_time"
	SharedPlayerPosition = "player_position"
)

// Broadcast is the single-writer shared key/value store: the orchestrator
// publishes cross-cutting state (game time, player position), workers read
// it when building oracle context. Values are replaced whole; workers never
// write.
type Broadcast struct {
	mu   sync.RWMutex
	vals map[string]any
}

func NewBroadcast() *Broadcast {
	return &Broadcast{vals: map[string]any{}}
}

func (b *Broadcast) Set(key string, value any) {
	b.mu.Lock()
	b.vals[key] = value
	b.mu.Unlock()
}

func (b *Broadcast) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.vals[key]
	return v, ok
}

// GetString is the common read path; missing or non-string values return "".
func (b *Broadcast) GetString(key string) string {
	v, ok := b.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
