package resolve

import (
	"strings"
	"testing"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

func TestHitChance_ClampedAndMonotonic(t *testing.T) {
	prev := -1.0
	for diff := -30; diff <= 30; diff++ {
		c := hitChance(10+diff, 10)
		if c < 0.10 || c > 0.90 {
			t.Fatalf("diff %d: chance %v out of [0.10, 0.90]", diff, c)
		}
		if c < prev {
			t.Fatalf("diff %d: chance %v decreased from %v", diff, c, prev)
		}
		prev = c
	}
	if got := hitChance(14, 10); got != 0.70 {
		t.Fatalf("hitChance(14, 10) = %v, want 0.70", got)
	}
}

func TestStrike_DamageRange(t *testing.T) {
	// Strength 14 vs constitution 10: base round(14/3)=5, swing -1..+1.
	for roll := int64(0); roll < 3; roll++ {
		w := testWorld(t)
		atk := addChar(t, w, "atk", "Karim", world.ClassGuard, world.Vec2i{X: 5, Y: 5})
		def := addChar(t, w, "def", "Gorkash", world.ClassBrigand, world.Vec2i{X: 6, Y: 5})
		atk.Stats.Strength = 14
		def.Stats.Constitution = 10
		def.HP, def.MaxHP = 100, 100

		// Float64 from the first value is 0, so the roll hits; the second
		// value's top 31 bits make Intn(3) land on roll itself.
		r := newResolver(w, rollSequence(0, roll<<32))
		out := r.Apply(atk, protocol.Decision{Action: "attack", Target: "Gorkash"})
		if !out.OK {
			t.Fatalf("roll %d: attack failed: %+v", roll, out)
		}
		dmg := 100 - def.HP
		if dmg < 4 || dmg > 6 {
			t.Fatalf("roll %d: damage %d, want 4..6", roll, dmg)
		}
	}
}

func TestStrike_MissChangesNothing(t *testing.T) {
	w := testWorld(t)
	atk := addChar(t, w, "atk", "Karim", world.ClassGuard, world.Vec2i{X: 5, Y: 5})
	def := addChar(t, w, "def", "Gorkash", world.ClassBrigand, world.Vec2i{X: 6, Y: 5})
	r := newResolver(w, highRoll()) // 0.875 >= 0.50 chance

	out := r.Apply(atk, protocol.Decision{Action: "attack", Target: "Gorkash"})
	if !out.OK {
		t.Fatal("a miss still consumes the turn with OK=true")
	}
	if def.HP != def.MaxHP {
		t.Fatalf("miss dealt damage: HP %d", def.HP)
	}
	if atk.Relationship(def.ID) != 0 {
		t.Fatal("miss must not touch relationships")
	}
	found := false
	for _, e := range out.Events {
		if strings.Contains(e, "misses") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no miss event: %v", out.Events)
	}
}

func TestStrike_RelationshipPenalties(t *testing.T) {
	w := testWorld(t)
	atk := addChar(t, w, "atk", "Karim", world.ClassGuard, world.Vec2i{X: 5, Y: 5})
	def := addChar(t, w, "def", "Gorkash", world.ClassBrigand, world.Vec2i{X: 6, Y: 5})
	def.HP, def.MaxHP = 100, 100
	r := newResolver(w, lowRoll())

	r.Apply(atk, protocol.Decision{Action: "attack", Target: "Gorkash"})
	if got := atk.Relationship(def.ID); got != -10 {
		t.Fatalf("attacker relationship = %d, want -10", got)
	}
	if got := def.Relationship(atk.ID); got != -20 {
		t.Fatalf("defender relationship = %d, want -20", got)
	}
}

func TestCombat_OutOfRangeApproaches(t *testing.T) {
	w := testWorld(t)
	atk := addChar(t, w, "atk", "Karim", world.ClassGuard, world.Vec2i{X: 5, Y: 5})
	addChar(t, w, "def", "Gorkash", world.ClassBrigand, world.Vec2i{X: 15, Y: 5})
	r := newResolver(w, lowRoll())

	out := r.Apply(atk, protocol.Decision{Action: "attack", Target: "Gorkash"})
	if !out.OK {
		t.Fatalf("approach should succeed: %+v", out)
	}
	if atk.Pos != (world.Vec2i{X: 6, Y: 5}) {
		t.Fatalf("attacker at %v, want one step east", atk.Pos)
	}
}

func TestDefeat_BodyDropAndIdempotence(t *testing.T) {
	w := testWorld(t)
	atk := addChar(t, w, "atk", "Karim", world.ClassGuard, world.Vec2i{X: 5, Y: 5})
	def := addChar(t, w, "def", "Gorkash", world.ClassBrigand, world.Vec2i{X: 6, Y: 5})
	def.HP = 1
	def.AddItem(world.NamedItem("rusty sword"))
	fellAt := def.Pos
	r := newResolver(w, lowRoll())

	out := Outcome{}
	r.strike(atk, def, "attack", &out)
	if def.Alive() {
		t.Fatal("defender should be defeated")
	}
	if def.LastPos != fellAt {
		t.Fatalf("LastPos = %v, want %v", def.LastPos, fellAt)
	}
	if w.Map.CharacterAt(fellAt) != nil {
		t.Fatal("defeated character still on the map")
	}

	ground := w.Map.ItemsAt(fellAt)
	var bodies, swords int
	for _, it := range ground {
		if it.Name == "body" {
			bodies++
		}
		if strings.Contains(it.Name, "sword") {
			swords++
		}
	}
	if bodies != 1 {
		t.Fatalf("bodies on ground = %d, want 1", bodies)
	}
	if swords != 1 {
		t.Fatalf("dropped swords = %d, want 1", swords)
	}

	// Re-applying defeat must not duplicate the body.
	r.defeat(atk, def, &out)
	bodies = 0
	for _, it := range w.Map.ItemsAt(fellAt) {
		if it.Name == "body" {
			bodies++
		}
	}
	if bodies != 1 {
		t.Fatalf("bodies after repeat defeat = %d, want 1", bodies)
	}
}

func TestDefeat_PlayerEndsGame(t *testing.T) {
	w := testWorld(t)
	atk := addChar(t, w, "atk", "Gorkash", world.ClassBrigand, world.Vec2i{X: 5, Y: 5})
	p := addPlayer(t, w, "Adventurer", world.Vec2i{X: 6, Y: 5})
	p.HP = 1
	r := newResolver(w, lowRoll())

	out := r.Apply(atk, protocol.Decision{Action: "attack", Target: "the stranger"})
	if !out.GameOver {
		t.Fatalf("player defeat must end the game: %+v", out)
	}
}

func TestCombat_NoTargetFails(t *testing.T) {
	w := testWorld(t)
	atk := addChar(t, w, "atk", "Karim", world.ClassGuard, world.Vec2i{X: 5, Y: 5})
	r := newResolver(w, lowRoll())

	out := r.Apply(atk, protocol.Decision{Action: "attack", Target: "the dragon"})
	if out.OK {
		t.Fatal("attacking nobody must fail")
	}
}
