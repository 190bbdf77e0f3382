package npc

import (
	"testing"
	"time"

	"oakvale.ai/internal/oracle"
	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

func scriptedFactory(s *oracle.Scripted) OracleFactory {
	return func(string) oracle.Oracle { return s }
}

func startSupervisor(t *testing.T, s *oracle.Scripted, agents ...*world.Character) *Supervisor {
	t.Helper()
	sup := NewSupervisor(scriptedFactory(s), testTune(), quiet())
	sup.Start(agents)
	t.Cleanup(sup.Stop)
	return sup
}

func TestSupervisor_SendUnknownAgent(t *testing.T) {
	sup := startSupervisor(t, oracle.NewScripted())
	if sup.Send("nobody", Command{Kind: CmdGetAction}) {
		t.Fatal("send to unknown agent must return false")
	}
}

func TestSupervisor_RoundTrip(t *testing.T) {
	s := oracle.NewScripted()
	s.Script("troll_01", protocol.Decision{Action: "attack", Target: "the stranger"})
	sup := startSupervisor(t, s, agentSnapshot("troll_01"))

	if !sup.Send("troll_01", Command{Kind: CmdGetAction}) {
		t.Fatal("send failed")
	}
	r, ok := sup.WaitFor("troll_01", time.Second)
	if !ok {
		t.Fatal("no response")
	}
	if r.Kind != RespAction || r.Decision.Action != "attack" {
		t.Fatalf("response = %+v", r)
	}
}

func TestSupervisor_CollectReadyNonBlocking(t *testing.T) {
	s := oracle.NewScripted()
	sup := startSupervisor(t, s, agentSnapshot("troll_01"))

	start := time.Now()
	if got := sup.CollectReady(); len(got) != 0 {
		t.Fatalf("unexpected responses: %+v", got)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("collect with nothing pending took too long")
	}

	sup.Send("troll_01", Command{Kind: CmdGetAction})
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if got := sup.CollectReady(); len(got) == 1 {
			if got["troll_01"].Kind != RespAction {
				t.Fatalf("wrong response: %+v", got)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("response never became ready")
}

func TestSupervisor_WaitForTimeout(t *testing.T) {
	sup := startSupervisor(t, oracle.NewScripted(), agentSnapshot("troll_01"))

	start := time.Now()
	if _, ok := sup.WaitFor("troll_01", 50*time.Millisecond); ok {
		t.Fatal("unexpected response")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Fatalf("timeout not honored: %v", elapsed)
	}
}

func TestSupervisor_HealthRestartWithLastSnapshot(t *testing.T) {
	s := oracle.NewScripted()
	s.Script("troll_01", protocol.Decision{Action: "wait", Target: "patiently"})
	sup := startSupervisor(t, s, agentSnapshot("troll_01"))

	// Kill the worker out from under the supervisor.
	sup.mu.Lock()
	rec := sup.workers["troll_01"]
	sup.mu.Unlock()
	rec.worker.send(Command{Kind: CmdShutdown})
	deadline := time.Now().Add(time.Second)
	for rec.worker.Alive() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if rec.worker.Alive() {
		t.Fatal("worker refused to die")
	}

	ids := sup.CheckHealth()
	if len(ids) != 1 || ids[0] != "troll_01" {
		t.Fatalf("restarted %v, want [troll_01]", ids)
	}

	// The restarted worker already has the last snapshot: a get_action
	// succeeds without re-registering the agent.
	sup.Send("troll_01", Command{Kind: CmdGetAction})
	r, ok := sup.WaitFor("troll_01", time.Second)
	if !ok {
		t.Fatal("no response from restarted worker")
	}
	if r.Kind != RespAction {
		t.Fatalf("response = %+v", r)
	}
}

func TestSupervisor_UpdateSnapshotSurvivesRestart(t *testing.T) {
	s := oracle.NewScripted()
	sup := startSupervisor(t, s, agentSnapshot("troll_01"))

	// Push a defeated snapshot, then kill and restart the worker.
	snap := agentSnapshot("troll_01")
	snap.Status = world.StatusDefeated
	sup.Send("troll_01", Command{Kind: CmdUpdate, Snapshot: snap})

	sup.mu.Lock()
	rec := sup.workers["troll_01"]
	sup.mu.Unlock()
	rec.worker.send(Command{Kind: CmdShutdown})
	for rec.worker.Alive() {
		time.Sleep(time.Millisecond)
	}
	sup.CheckHealth()

	// The replacement must hold the defeated snapshot, not the original.
	sup.Send("troll_01", Command{Kind: CmdGetAction})
	r, ok := sup.WaitFor("troll_01", time.Second)
	if !ok {
		t.Fatal("no response")
	}
	if r.Kind != RespStatus || r.Status != string(world.StatusDefeated) {
		t.Fatalf("response = %+v, want defeated status", r)
	}
}

func TestSupervisor_StopIdempotent(t *testing.T) {
	sup := NewSupervisor(scriptedFactory(oracle.NewScripted()), testTune(), quiet())
	sup.Start([]*world.Character{agentSnapshot("troll_01")})

	sup.Stop()
	sup.Stop() // second call must be a no-op

	sup.mu.Lock()
	rec := sup.workers["troll_01"]
	sup.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	for rec.worker.Alive() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if rec.worker.Alive() {
		t.Fatal("worker alive after stop")
	}

	// After stop, health checks must not resurrect workers.
	if ids := sup.CheckHealth(); len(ids) != 0 {
		t.Fatalf("health check restarted %v after stop", ids)
	}
}

func TestSupervisor_BroadcastShared(t *testing.T) {
	sup := startSupervisor(t, oracle.NewScripted())
	sup.BroadcastShared("player_position", "(15, 5)")
	if got := sup.Shared().GetString("player_position"); got != "(15, 5)" {
		t.Fatalf("shared value = %q", got)
	}
}
