package oracle

import (
	"context"
	"sync"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

// Scripted replays a fixed list of decisions per agent, then repeats its last
// entry. Deterministic stand-in for the LLM in tests and headless runs.
type Scripted struct {
	mu      sync.Mutex
	scripts map[string][]protocol.Decision
	cursor  map[string]int

	// DialogLine is returned by every Dialog call; empty means the canned
	// fallback line.
	DialogLine string

	// Err, when set, makes every call fail. Used to exercise worker
	// fallback paths.
	Err error
}

func NewScripted() *Scripted {
	return &Scripted{
		scripts: map[string][]protocol.Decision{},
		cursor:  map[string]int{},
	}
}

// Script queues decisions for one agent, in order.
func (s *Scripted) Script(agentID string, decisions ...protocol.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[agentID] = append(s.scripts[agentID], decisions...)
}

func (s *Scripted) Decide(ctx context.Context, sheet *world.Character, view protocol.WorldView, history []string) (protocol.Decision, error) {
	if err := ctx.Err(); err != nil {
		return protocol.Decision{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return protocol.Decision{}, s.Err
	}

	script := s.scripts[sheet.ID]
	if len(script) == 0 {
		d := protocol.Decision{AgentID: sheet.ID, Action: "wait", Target: "patiently"}
		return d, nil
	}
	i := s.cursor[sheet.ID]
	if i >= len(script) {
		i = len(script) - 1
	} else {
		s.cursor[sheet.ID] = i + 1
	}
	d := script[i]
	d.AgentID = sheet.ID
	return d, nil
}

func (s *Scripted) Dialog(ctx context.Context, sheet *world.Character, playerMessage string, history []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if s.DialogLine != "" {
		return s.DialogLine, nil
	}
	return protocol.FallbackDialog, nil
}
