package npc

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"oakvale.ai/internal/oracle"
	"oakvale.ai/internal/sim/tuning"
	"oakvale.ai/internal/sim/world"
)

// OracleFactory builds the private oracle client for one worker. Each worker
// gets its own instance so one wedged client cannot stall the rest.
type OracleFactory func(agentID string) oracle.Oracle

type workerRecord struct {
	worker       *Worker
	lastSnapshot *world.Character
}

// Supervisor owns the worker pool: spawn, route, drain, restart, stop.
// Every public method is safe for concurrent use, though in practice the
// orchestrator is the only caller.
type Supervisor struct {
	factory OracleFactory
	tune    tuning.WorkerTuning
	log     *log.Logger
	shared  *Broadcast
	sem     *semaphore.Weighted

	mu      sync.Mutex
	workers map[string]*workerRecord

	running  atomic.Bool
	stopOnce sync.Once
}

func NewSupervisor(factory OracleFactory, tune tuning.WorkerTuning, logger *log.Logger) *Supervisor {
	return &Supervisor{
		factory: factory,
		tune:    tune,
		log:     logger,
		shared:  NewBroadcast(),
		sem:     semaphore.NewWeighted(int64(tune.MaxConcurrent)),
		workers: map[string]*workerRecord{},
	}
}

// Start spawns one worker per agent and pushes each agent's initial snapshot.
func (s *Supervisor) Start(agents []*world.Character) {
	s.running.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, agent := range agents {
		if _, dup := s.workers[agent.ID]; dup {
			s.log.Printf("supervisor: duplicate worker for %s, ignoring", agent.ID)
			continue
		}
		snap := agent.Clone()
		rec := &workerRecord{
			worker:       newWorker(agent.ID, s.factory(agent.ID), s.shared, s.sem, s.tune, s.log),
			lastSnapshot: snap,
		}
		s.workers[agent.ID] = rec
		rec.worker.send(Command{Kind: CmdUpdate, Snapshot: snap})
		s.log.Printf("supervisor: started worker for %s", agent.ID)
	}
}

// Send enqueues a command for one agent without blocking. False means the
// agent is unknown or its buffer is full; callers drop silently either way.
func (s *Supervisor) Send(agentID string, cmd Command) bool {
	s.mu.Lock()
	rec, ok := s.workers[agentID]
	s.mu.Unlock()
	if !ok {
		s.log.Printf("supervisor: send to unknown agent %s", agentID)
		return false
	}
	if cmd.Kind == CmdUpdate && cmd.Snapshot != nil {
		// Remember the latest snapshot so a restarted worker is not blank.
		s.mu.Lock()
		rec.lastSnapshot = cmd.Snapshot
		s.mu.Unlock()
	}
	if !rec.worker.send(cmd) {
		s.log.Printf("supervisor: command buffer full for %s, dropping %s", agentID, cmd.Kind)
		return false
	}
	return true
}

// UpdateSnapshot pushes a fresh clone of the authoritative agent state to
// its worker. This is the reconcile half of the copy-and-reconcile
// discipline: workers never read live world state.
func (s *Supervisor) UpdateSnapshot(agent *world.Character) bool {
	return s.Send(agent.ID, Command{Kind: CmdUpdate, Snapshot: agent.Clone()})
}

// CollectReady drains at most one pending response per agent, never
// blocking. An empty map is a normal result.
func (s *Supervisor) CollectReady() map[string]Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]Response{}
	for id, rec := range s.workers {
		if r, ok := rec.worker.takeReady(); ok {
			out[id] = r
		}
	}
	return out
}

// WaitFor blocks for one response from one agent, up to timeout. The only
// blocking read in the supervisor; used for player-synchronous dialog.
func (s *Supervisor) WaitFor(agentID string, timeout time.Duration) (Response, bool) {
	s.mu.Lock()
	rec, ok := s.workers[agentID]
	s.mu.Unlock()
	if !ok {
		return Response{}, false
	}
	select {
	case r := <-rec.worker.resp:
		return r, true
	case <-time.After(timeout):
		return Response{}, false
	}
}

// CheckHealth restarts any dead worker with fresh channels and its last
// known snapshot, and returns the ids of the replaced workers. Any request
// outstanding against a dead worker died with it, so the caller must forget
// those requests or the agent starves.
func (s *Supervisor) CheckHealth() []string {
	if !s.running.Load() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var restarted []string
	for id, rec := range s.workers {
		if rec.worker.Alive() {
			continue
		}
		s.log.Printf("supervisor: worker %s died, restarting", id)
		rec.worker = newWorker(id, s.factory(id), s.shared, s.sem, s.tune, s.log)
		rec.worker.send(Command{Kind: CmdUpdate, Snapshot: rec.lastSnapshot})
		restarted = append(restarted, id)
	}
	return restarted
}

// BroadcastShared publishes one cross-cutting value readable by every worker.
func (s *Supervisor) BroadcastShared(key string, value any) {
	s.shared.Set(key, value)
}

// Shared exposes the broadcast store for workers and tests.
func (s *Supervisor) Shared() *Broadcast { return s.shared }

// Stop shuts every worker down and joins them with a bounded timeout.
// Idempotent: the second call is a no-op and workers never see a second
// shutdown command.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)

		s.mu.Lock()
		recs := make([]*workerRecord, 0, len(s.workers))
		for _, rec := range s.workers {
			recs = append(recs, rec)
		}
		s.mu.Unlock()

		for _, rec := range recs {
			rec.worker.send(Command{Kind: CmdShutdown})
		}

		deadline := time.Now().Add(time.Duration(s.tune.JoinTimeoutMs) * time.Millisecond)
		for _, rec := range recs {
			for rec.worker.Alive() && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			if rec.worker.Alive() {
				// In-flight oracle calls are not interrupted; the goroutine
				// exits on its own once the call returns and sees the closed
				// loop. Abandoning it here is the bounded-join contract.
				s.log.Printf("supervisor: worker %s did not stop in time, abandoning", rec.worker.agentID)
			}
		}
		s.log.Printf("supervisor: stopped")
	})
}
