// Package engine is the turn orchestrator: it drives the simulation cadence,
// dispatches decision requests through the worker supervisor, drains ready
// responses into the action resolver, and reconciles worker snapshots with
// the authoritative world state after every mutation.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"oakvale.ai/internal/npc"
	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/resolve"
	"oakvale.ai/internal/sim/tuning"
	"oakvale.ai/internal/sim/world"
)

// DecisionRecorder receives every decision the resolver applies, with the
// turn it landed on and whether it succeeded. The SQLite index implements it.
type DecisionRecorder interface {
	RecordDecision(turn int, d protocol.Decision, ok bool)
}

type Engine struct {
	w    *world.World
	sup  *npc.Supervisor
	res  *resolve.Resolver
	tune tuning.Tuning
	log  *log.Logger
	rec  DecisionRecorder

	mu        sync.Mutex
	inFlight  map[string]bool
	suspended map[string]bool
	turns     int
	gameOver  bool

	stopOnce sync.Once
}

func New(w *world.World, sup *npc.Supervisor, res *resolve.Resolver, tune tuning.Tuning, logger *log.Logger) *Engine {
	return &Engine{
		w:         w,
		sup:       sup,
		res:       res,
		tune:      tune,
		log:       logger,
		inFlight:  map[string]bool{},
		suspended: map[string]bool{},
	}
}

// SetRecorder attaches a decision recorder. Call before Start.
func (e *Engine) SetRecorder(rec DecisionRecorder) { e.rec = rec }

// Start spins up one worker per NPC and publishes the initial shared state.
func (e *Engine) Start() {
	e.sup.Start(e.w.NPCs())
	e.publishShared()
}

// Stop shuts the supervisor down before anything else is released.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.sup.Stop()
		e.log.Printf("engine stopped after %d turns", e.Turns())
	})
}

func (e *Engine) Turns() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turns
}

func (e *Engine) GameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameOver
}

// MovePlayer steps the player one tile and advances the turn on success.
func (e *Engine) MovePlayer(dx, dy int) bool {
	p := e.w.Player
	if p == nil || e.GameOver() {
		return false
	}
	dest := p.Pos.Add(world.Vec2i{X: dx, Y: dy})
	if !e.w.Map.MoveCharacter(p, dest) {
		return false
	}
	e.w.AddEvent(fmt.Sprintf("Player moved to %s at position (%d, %d).", e.w.LocationName(dest), dest.X, dest.Y))
	e.AdvanceTurn()
	return true
}

// AdvanceTurn bumps the turn counter and game clock; on the NPC cadence it
// also health-checks the pool and dispatches decision requests.
func (e *Engine) AdvanceTurn() {
	e.mu.Lock()
	e.turns++
	turns := e.turns
	e.mu.Unlock()

	e.w.AdvanceTime(1)
	e.publishShared()

	if turns%e.tune.NPCActionEvery == 0 {
		// A replaced worker took any outstanding request to the grave;
		// forget it so the agent is eligible for dispatch again.
		for _, id := range e.sup.CheckHealth() {
			e.mu.Lock()
			delete(e.inFlight, id)
			e.mu.Unlock()
		}
		e.dispatchNPCs()
	}
}

// Tick drains whatever responses are ready and resolves them. Runs every
// loop iteration regardless of cadence so slow oracle replies are picked up
// whenever they land.
func (e *Engine) Tick() {
	ready := e.sup.CollectReady()
	if len(ready) == 0 {
		return
	}

	for id, r := range ready {
		e.mu.Lock()
		delete(e.inFlight, id)
		e.mu.Unlock()

		switch r.Kind {
		case npc.RespAction:
			e.applyDecision(id, r.Decision)
		case npc.RespStatus:
			// Defeated/acknowledged notices need no resolution.
		case npc.RespDialog:
			// Stray dialog outside InteractWithNPC; drop it.
			e.log.Printf("unsolicited dialog from %s", id)
		}
	}

	e.reconcile()
}

func (e *Engine) applyDecision(agentID string, d protocol.Decision) {
	actor := e.w.CharacterByID(agentID)
	if actor == nil {
		e.log.Printf("decision for unknown agent %s", agentID)
		return
	}
	out := e.res.Apply(actor, d)
	if e.rec != nil {
		e.rec.RecordDecision(e.Turns(), d, out.OK)
	}
	if out.GameOver {
		e.mu.Lock()
		e.gameOver = true
		e.mu.Unlock()
	}
}

// reconcile pushes fresh snapshots to every live agent's worker and parks
// the workers of newly defeated agents in the suspended state so they stop
// burning oracle budget. Suspended workers treat an update as a resume, so
// agents already parked get no further traffic until revival.
func (e *Engine) reconcile() {
	for _, c := range e.w.NPCs() {
		if c.Alive() {
			e.sup.UpdateSnapshot(c)
			continue
		}
		e.mu.Lock()
		already := e.suspended[c.ID]
		e.suspended[c.ID] = true
		e.mu.Unlock()
		if already {
			continue
		}
		e.sup.UpdateSnapshot(c)
		e.sup.Send(c.ID, npc.Command{Kind: npc.CmdSuspend})
	}
}

// ReviveNPC brings a defeated NPC back and resumes its worker.
func (e *Engine) ReviveNPC(id string, hpFrac float64) bool {
	if !e.w.Revive(id, hpFrac) {
		return false
	}
	c := e.w.CharacterByID(id)
	e.mu.Lock()
	delete(e.suspended, id)
	e.mu.Unlock()
	e.sup.Send(id, npc.Command{Kind: npc.CmdUnsuspend})
	e.sup.UpdateSnapshot(c)
	return true
}

// dispatchNPCs requests a decision for every eligible NPC: alive, near the
// player, and not already in flight.
func (e *Engine) dispatchNPCs() {
	player := e.w.Player
	for _, c := range e.w.NPCs() {
		if !c.Alive() {
			continue
		}
		// Load shedding: agents far from the player sit this cadence out.
		if player != nil && world.Dist(c.Pos, player.Pos) > float64(e.tune.VisibilityRange*2) {
			continue
		}

		e.mu.Lock()
		if e.inFlight[c.ID] {
			e.mu.Unlock()
			continue
		}
		e.inFlight[c.ID] = true
		e.mu.Unlock()

		if !e.sup.Send(c.ID, npc.Command{
			Kind:    npc.CmdGetAction,
			View:    e.worldView(c),
			History: e.w.Events.Recent(e.tune.HistoryWindow),
		}) {
			e.mu.Lock()
			delete(e.inFlight, c.ID)
			e.mu.Unlock()
		}
	}
}

// worldView builds the read-only decision context for one agent. Rebuilt per
// request, never shared.
func (e *Engine) worldView(c *world.Character) protocol.WorldView {
	return protocol.WorldView{
		VisibleArea:  e.w.Map.VisibleDescription(c.Pos, e.tune.VisibilityRange),
		Location:     e.w.LocationName(c.Pos),
		TimeOfDay:    e.w.TimeOfDay(),
		RecentEvents: e.w.Events.Recent(e.tune.HistoryWindow),
	}
}

// InFlight reports whether a decision request is outstanding for the agent.
func (e *Engine) InFlight(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight[id]
}

// InteractWithNPC is the player-synchronous dialog path: a bounded wait on
// the NPC's worker, with the canned line as fallback when the oracle is too
// slow. An empty message is an approach; the NPC greets.
func (e *Engine) InteractWithNPC(npcID, message string) string {
	c := e.w.CharacterByID(npcID)
	if c == nil {
		return fmt.Sprintf("There is no one called %s here.", npcID)
	}
	if e.w.Player != nil && world.Dist(e.w.Player.Pos, c.Pos) > 1.5 {
		return fmt.Sprintf("%s is too far away to interact with.", c.Name)
	}
	if !c.Alive() {
		return fmt.Sprintf("%s does not respond.", c.Name)
	}

	if message == "" {
		e.w.AddEvent(fmt.Sprintf("You approach %s.", c.Name))
		c.AddMemory("Player approached me", 1)
		message = "Hello there."
	} else {
		e.w.AddEvent(fmt.Sprintf("You say to %s: %q", c.Name, message))
	}

	reply := protocol.FallbackDialog
	sent := e.sup.Send(npcID, npc.Command{
		Kind:    npc.CmdGetDialog,
		Message: message,
		History: e.w.Events.Recent(e.tune.HistoryWindow),
	})
	if sent {
		// The dialog reply queues behind anything already on the worker's
		// response channel, so keep draining until it shows up: a stray
		// action reply is resolved, not discarded.
		deadline := time.Now().Add(time.Duration(e.tune.Workers.DialogTimeoutMs) * time.Millisecond)
		for {
			remain := time.Until(deadline)
			if remain <= 0 {
				break
			}
			r, ok := e.sup.WaitFor(npcID, remain)
			if !ok {
				break
			}
			if r.Kind == npc.RespDialog {
				reply = r.Dialog
				break
			}
			if r.Kind == npc.RespAction {
				e.mu.Lock()
				delete(e.inFlight, npcID)
				e.mu.Unlock()
				e.applyDecision(npcID, r.Decision)
			}
		}
	}

	e.w.AddEvent(fmt.Sprintf("%s says: %q", c.Name, reply))
	c.AddMemory(fmt.Sprintf("Player said: %q. I replied: %q", message, reply), 2)
	e.sup.UpdateSnapshot(c)
	e.AdvanceTurn()
	return reply
}

func (e *Engine) publishShared() {
	e.sup.BroadcastShared(npc.SharedGameTime, e.w.FormattedTime())
	if p := e.w.Player; p != nil {
		e.sup.BroadcastShared(npc.SharedPlayerPosition, fmt.Sprintf("(%d, %d)", p.Pos.X, p.Pos.Y))
	}
}

// Run drives Tick at the configured interval until the context is cancelled
// or the game ends. It stops the supervisor on the way out.
func (e *Engine) Run(ctx context.Context) error {
	defer e.Stop()

	interval := time.Duration(e.tune.TickIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick()
			if e.GameOver() {
				e.w.AddEvent("The adventure has ended.")
				return nil
			}
		}
	}
}
