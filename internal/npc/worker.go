package npc

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"oakvale.ai/internal/oracle"
	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/tuning"
	"oakvale.ai/internal/sim/world"
)

// Worker runs one agent's decision loop. It owns a private snapshot of the
// agent, a private oracle client, and replies with exactly one response per
// get_action/get_dialog command. State machine: uninitialized (no snapshot)
// → ready ⇄ suspended, with shutdown terminal from anywhere.
type Worker struct {
	agentID string
	oracle  oracle.Oracle
	shared  *Broadcast
	sem     *semaphore.Weighted
	tune    tuning.WorkerTuning
	log     *log.Logger

	cmd  chan Command
	resp chan Response

	alive atomic.Bool
}

func newWorker(agentID string, orc oracle.Oracle, shared *Broadcast, sem *semaphore.Weighted, tune tuning.WorkerTuning, logger *log.Logger) *Worker {
	w := &Worker{
		agentID: agentID,
		oracle:  orc,
		shared:  shared,
		sem:     sem,
		tune:    tune,
		log:     logger,
		cmd:     make(chan Command, tune.CommandBuffer),
		resp:    make(chan Response, tune.ResponseBuffer),
	}
	w.alive.Store(true)
	go w.run()
	return w
}

func (w *Worker) Alive() bool { return w.alive.Load() }

func (w *Worker) run() {
	defer w.alive.Store(false)

	var snapshot *world.Character
	suspended := false
	poll := time.Duration(w.tune.PollIntervalMs) * time.Millisecond

	for {
		idle := poll
		if suspended {
			idle = poll * time.Duration(w.tune.SuspendFactor)
		}

		select {
		case cmd, ok := <-w.cmd:
			if !ok {
				return
			}
			if suspended {
				// Low-activity state: only shutdown, unsuspend, and update
				// do anything, and every command gets an ack.
				switch cmd.Kind {
				case CmdShutdown:
					w.reply(Response{AgentID: w.agentID, Kind: RespStatus, Status: StatusAcknowledged})
					return
				case CmdUnsuspend:
					suspended = false
					w.log.Printf("worker %s resuming from suspension", w.agentID)
				case CmdUpdate:
					snapshot = cmd.Snapshot
					suspended = false
					w.log.Printf("worker %s updated and resumed", w.agentID)
				}
				w.reply(Response{AgentID: w.agentID, Kind: RespStatus, Status: StatusAcknowledged})
				continue
			}

			switch cmd.Kind {
			case CmdShutdown:
				return

			case CmdUpdate:
				snapshot = cmd.Snapshot

			case CmdSetStatus:
				if snapshot == nil {
					w.log.Printf("worker %s: set_status with no snapshot", w.agentID)
					continue
				}
				snapshot.Status = cmd.Status

			case CmdSuspend:
				suspended = true
				w.reply(Response{AgentID: w.agentID, Kind: RespStatus, Status: StatusSuspended})

			case CmdUnsuspend:
				// Already running.

			case CmdGetAction:
				w.handleGetAction(snapshot, cmd)

			case CmdGetDialog:
				w.handleGetDialog(snapshot, cmd)

			default:
				w.log.Printf("worker %s: unknown command %q", w.agentID, cmd.Kind)
			}

		case <-time.After(idle):
			// Periodic wake; nothing to do.
		}
	}
}

// handleGetAction produces exactly one response unless no snapshot has been
// pushed yet, in which case the command is dropped silently: that is a
// supervisor sequencing bug, not something to surface to players.
func (w *Worker) handleGetAction(snapshot *world.Character, cmd Command) {
	if snapshot == nil {
		w.log.Printf("worker %s: get_action with no snapshot, ignoring", w.agentID)
		return
	}
	if !snapshot.Alive() {
		// Defeated agents never think.
		w.reply(Response{AgentID: w.agentID, Kind: RespStatus, Status: string(snapshot.Status)})
		return
	}

	// The per-request view carries the agent's surroundings; the cross-
	// cutting state lives in the broadcast store and is merged here.
	view := cmd.View
	if view.GameTime == "" {
		view.GameTime = w.shared.GetString(SharedGameTime)
	}
	if view.PlayerPosition == "" {
		view.PlayerPosition = w.shared.GetString(SharedPlayerPosition)
	}

	d, err := w.decide(snapshot, view, cmd.History)
	if err != nil {
		w.log.Printf("worker %s: oracle failure: %v", w.agentID, err)
		d = protocol.FallbackDecision(w.agentID)
	}
	d.AgentID = w.agentID
	w.reply(Response{AgentID: w.agentID, Kind: RespAction, Decision: d})
}

func (w *Worker) handleGetDialog(snapshot *world.Character, cmd Command) {
	if snapshot == nil {
		w.log.Printf("worker %s: get_dialog with no snapshot, ignoring", w.agentID)
		return
	}

	line, err := w.dialog(snapshot, cmd.Message, cmd.History)
	if err != nil {
		w.log.Printf("worker %s: dialog failure: %v", w.agentID, err)
		line = protocol.FallbackDialog
	}
	w.reply(Response{AgentID: w.agentID, Kind: RespDialog, Dialog: line})
}

// decide runs the oracle under the shared concurrency cap and a deadline,
// converting panics to errors so a misbehaving client can never kill the
// worker goroutine.
func (w *Worker) decide(snapshot *world.Character, view protocol.WorldView, history []string) (d protocol.Decision, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(w.tune.OracleTimeoutMs)*time.Millisecond)
	defer cancel()

	if err := w.sem.Acquire(ctx, 1); err != nil {
		return protocol.Decision{}, fmt.Errorf("oracle slot: %w", err)
	}
	defer w.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("oracle panic: %v", r)
		}
	}()
	return w.oracle.Decide(ctx, snapshot, view, history)
}

func (w *Worker) dialog(snapshot *world.Character, message string, history []string) (line string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(w.tune.DialogTimeoutMs)*time.Millisecond)
	defer cancel()

	if err := w.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("oracle slot: %w", err)
	}
	defer w.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("oracle panic: %v", r)
		}
	}()
	return w.oracle.Dialog(ctx, snapshot, message, history)
}

// reply enqueues a response without ever blocking the loop. A full response
// buffer means the consumer has stopped draining; dropping beats deadlock.
func (w *Worker) reply(r Response) {
	select {
	case w.resp <- r:
	default:
		w.log.Printf("worker %s: response buffer full, dropping %s", w.agentID, r.Kind)
	}
}

// send enqueues a command without blocking; false means the buffer was full.
func (w *Worker) send(cmd Command) bool {
	select {
	case w.cmd <- cmd:
		return true
	default:
		return false
	}
}

// takeReady pops one pending response without waiting.
func (w *Worker) takeReady() (Response, bool) {
	select {
	case r := <-w.resp:
		return r, true
	default:
		return Response{}, false
	}
}
