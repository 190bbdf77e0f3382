package indexdb

import (
	"path/filepath"
	"testing"
	"time"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatal("empty path must fail")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := idx.WriteEvent(world.Event{
			Seq:      uint64(i),
			At:       time.Now(),
			GameTime: "Day 1, 08:00 (morning)",
			Text:     "Gorkash waits patiently.",
		})
		if err != nil {
			t.Fatalf("write event: %v", err)
		}
	}
	idx.RecordDecision(5, protocol.Decision{AgentID: "troll_01", Action: "attack", Target: "the stranger"}, true)
	idx.RecordDecision(5, protocol.Decision{AgentID: "guard_01", Action: "wait", Target: "patiently"}, true)
	idx.RecordDecision(10, protocol.Decision{AgentID: "troll_01", Action: "move", Target: "north"}, false)

	// Close drains the channel and commits; reopen to read.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	idx2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx2.Close()

	n, err := idx2.EventCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("event count = %d, want 3", n)
	}

	ds, err := idx2.DecisionsFor("troll_01")
	if err != nil {
		t.Fatalf("decisions: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("got %d decisions, want 2", len(ds))
	}
	if ds[0].Action != "attack" || ds[1].Action != "move" {
		t.Fatalf("decisions out of order: %+v", ds)
	}
}

func TestWriteAfterCloseIsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Late writers must not panic on the closed channel.
	if err := idx.WriteEvent(world.Event{Text: "too late"}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	idx.RecordDecision(1, protocol.Decision{AgentID: "troll_01", Action: "wait"}, true)
	if err := idx.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}
