package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

func sheet() *world.Character {
	c := &world.Character{
		ID: "guard_01", Name: "Karim",
		Class: world.ClassGuard, Race: world.RaceHuman, Level: 3,
		Stats: world.Stats{Strength: 14, Dexterity: 12, Constitution: 14, Intelligence: 10, Wisdom: 12, Charisma: 10},
		HP:    25, MaxHP: 25,
		Goals: []string{"Protect the village"},
	}
	c.AddMemory("Spotted strange lights in the mountains", 3)
	return c
}

func TestDecisionPrompt_Sections(t *testing.T) {
	view := protocol.WorldView{
		VisibleArea:  "To the north: Goren (merchant).",
		Location:     "Oakvale Village",
		TimeOfDay:    "morning",
		RecentEvents: []string{"The adventure begins."},
	}
	p := decisionPrompt(sheet(), view, []string{"one", "two", "three"})

	for _, section := range []string{
		"CHARACTER SHEET:", "CURRENT LOCATION:", "TIME OF DAY:",
		"VISIBLE ENVIRONMENT:", "RECENT HISTORY:", "MEMORIES:",
		"Oakvale Village", "morning", "what does Karim do next?",
	} {
		if !strings.Contains(p, section) {
			t.Fatalf("prompt missing %q:\n%s", section, p)
		}
	}
	if !strings.Contains(p, `"strength": 14`) {
		t.Fatal("character sheet not serialized into the prompt")
	}
}

func TestDecisionPrompt_SharedSections(t *testing.T) {
	view := protocol.WorldView{
		Location:       "Oakvale Village",
		TimeOfDay:      "afternoon",
		GameTime:       "Day 2, 14:30 (afternoon)",
		PlayerPosition: "(15, 5)",
	}
	p := decisionPrompt(sheet(), view, nil)
	if !strings.Contains(p, "GAME TIME:\nDay 2, 14:30 (afternoon)") {
		t.Fatalf("game time section missing:\n%s", p)
	}
	if !strings.Contains(p, "PLAYER POSITION:\n(15, 5)") {
		t.Fatalf("player position section missing:\n%s", p)
	}

	// A view without the broadcast fields renders neither section.
	p = decisionPrompt(sheet(), protocol.WorldView{Location: "wilderness"}, nil)
	if strings.Contains(p, "GAME TIME:") || strings.Contains(p, "PLAYER POSITION:") {
		t.Fatalf("empty broadcast fields rendered:\n%s", p)
	}
}

func TestDecisionPrompt_HistoryWindow(t *testing.T) {
	var history []string
	for i := 0; i < 20; i++ {
		history = append(history, "event "+strings.Repeat("x", i))
	}
	p := decisionPrompt(sheet(), protocol.WorldView{}, history)
	if strings.Contains(p, "event \n") || strings.Contains(p, history[0]+"\n") {
		t.Fatal("oldest history should be cut from the prompt")
	}
	if !strings.Contains(p, history[len(history)-1]) {
		t.Fatal("newest history missing from the prompt")
	}
}

func TestDialogPrompt(t *testing.T) {
	p := dialogPrompt(sheet(), "Have you seen the troll?", []string{"Karim says: \"Halt!\""})
	if !strings.Contains(p, `PLAYER SAYS: "Have you seen the troll?"`) {
		t.Fatalf("player message missing:\n%s", p)
	}
	if !strings.Contains(dialogSystemPrompt(sheet()), "Karim, a human guard") {
		t.Fatal("dialog system prompt not in character")
	}
}

func TestScripted_ReplaysThenRepeats(t *testing.T) {
	s := NewScripted()
	s.Script("guard_01",
		protocol.Decision{Action: "move", Target: "north"},
		protocol.Decision{Action: "attack", Target: "Gorkash"},
	)

	ctx := context.Background()
	c := sheet()

	d, err := s.Decide(ctx, c, protocol.WorldView{}, nil)
	if err != nil || d.Action != "move" {
		t.Fatalf("first decision: %+v, %v", d, err)
	}
	d, _ = s.Decide(ctx, c, protocol.WorldView{}, nil)
	if d.Action != "attack" {
		t.Fatalf("second decision: %+v", d)
	}
	// Script exhausted: the last entry repeats.
	d, _ = s.Decide(ctx, c, protocol.WorldView{}, nil)
	if d.Action != "attack" {
		t.Fatalf("repeat decision: %+v", d)
	}
	if d.AgentID != "guard_01" {
		t.Fatalf("agent id not stamped: %+v", d)
	}
}

func TestScripted_UnscriptedAgentWaits(t *testing.T) {
	s := NewScripted()
	d, err := s.Decide(context.Background(), sheet(), protocol.WorldView{}, nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Action != "wait" || d.Target != "patiently" {
		t.Fatalf("unscripted agent should wait: %+v", d)
	}
}

func TestScripted_ErrorMode(t *testing.T) {
	s := NewScripted()
	s.Err = errors.New("oracle down")
	if _, err := s.Decide(context.Background(), sheet(), protocol.WorldView{}, nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Dialog(context.Background(), sheet(), "hello", nil); err == nil {
		t.Fatal("expected dialog error")
	}
}

func TestScripted_DialogDefault(t *testing.T) {
	s := NewScripted()
	line, err := s.Dialog(context.Background(), sheet(), "hello", nil)
	if err != nil {
		t.Fatalf("dialog: %v", err)
	}
	if line != protocol.FallbackDialog {
		t.Fatalf("line = %q", line)
	}
}

func TestScripted_CancelledContext(t *testing.T) {
	s := NewScripted()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Decide(ctx, sheet(), protocol.WorldView{}, nil); err == nil {
		t.Fatal("expected context error")
	}
}
