package resolve

import (
	"testing"

	"oakvale.ai/internal/sim/world"
)

func TestMovementVector_DirectionBeatsName(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 5, Y: 10})
	r := newResolver(w, lowRoll())

	// "north" wins over the mention of Goren, who is to the south.
	if got := r.movementVector(a, "north to Goren"); got != (world.Vec2i{X: 0, Y: -1}) {
		t.Fatalf("vector = %v, want (0,-1)", got)
	}
}

func TestMovementVector_ScreenRelativeWords(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	r := newResolver(w, lowRoll())

	cases := map[string]world.Vec2i{
		"up":       {X: 0, Y: -1},
		"down":     {X: 0, Y: 1},
		"left":     {X: -1, Y: 0},
		"right":    {X: 1, Y: 0},
		"forward":  {X: 0, Y: -1},
		"backward": {X: 0, Y: 1},
	}
	for word, want := range cases {
		if got := r.movementVector(a, word); got != want {
			t.Fatalf("%q: vector = %v, want %v", word, got, want)
		}
	}
}

func TestResolveCharacterRef_PlayerSynonyms(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	p := addPlayer(t, w, "Ish", world.Vec2i{X: 6, Y: 5})
	r := newResolver(w, lowRoll())

	for _, term := range []string{"the player", "that adventurer", "a traveler", "the traveller", "this stranger", "the newcomer"} {
		if got := r.resolveCharacterRef(a, term); got != p {
			t.Fatalf("%q did not resolve to the player (got %v)", term, got)
		}
	}
	// The player referring to themselves resolves to nothing.
	if got := r.resolveCharacterRef(p, "the player"); got != nil {
		t.Fatalf("self-reference resolved to %v", got)
	}
}

func TestResolveCharacterRef_NameThenClass(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	karim := addChar(t, w, "k", "Karim", world.ClassGuard, world.Vec2i{X: 6, Y: 5})
	goren := addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 7, Y: 5})
	r := newResolver(w, lowRoll())

	if got := r.resolveCharacterRef(a, "talk to karim about the troll"); got != karim {
		t.Fatalf("name lookup got %v", got)
	}
	if got := r.resolveCharacterRef(a, "the guard"); got != karim {
		t.Fatalf("class lookup got %v", got)
	}
	if got := r.resolveCharacterRef(a, "the merchant"); got != goren {
		t.Fatalf("class lookup got %v", got)
	}
	if got := r.resolveCharacterRef(a, "the dragon"); got != nil {
		t.Fatalf("unknown ref got %v", got)
	}
}

func TestResolveCharacterRef_SymbolTieBreak(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	first := addChar(t, w, "g1", "Goren", world.ClassMerchant, world.Vec2i{X: 6, Y: 5})
	second := addChar(t, w, "g2", "Gilda", world.ClassVillager, world.Vec2i{X: 7, Y: 5})
	first.Symbol, second.Symbol = "G", "G"
	r := newResolver(w, lowRoll())

	// A bare one-rune symbol resolves; earliest registration wins the tie.
	if got := r.resolveCharacterRef(a, "g"); got != first {
		t.Fatalf("symbol lookup got %v, want earliest-registered", got)
	}
	// Anything longer than one rune never matches by symbol.
	if got := r.resolveCharacterRef(a, "gg"); got != nil {
		t.Fatalf("multi-rune symbol lookup got %v", got)
	}
}

func TestResolveCharacterRef_SkipsDefeated(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	k := addChar(t, w, "k", "Karim", world.ClassGuard, world.Vec2i{X: 6, Y: 5})
	k.Status = world.StatusDefeated
	r := newResolver(w, lowRoll())

	if got := r.resolveCharacterRef(a, "karim"); got != nil {
		t.Fatalf("defeated character resolved: %v", got)
	}
}

func TestNearestWithin(t *testing.T) {
	w := testWorld(t)
	a := addChar(t, w, "a", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	far := addChar(t, w, "f", "Farrah", world.ClassVillager, world.Vec2i{X: 9, Y: 5})
	near := addChar(t, w, "n", "Nils", world.ClassVillager, world.Vec2i{X: 7, Y: 5})
	_ = far
	r := newResolver(w, lowRoll())

	if got := r.nearestWithin(a, 3.0); got != near {
		t.Fatalf("nearest = %v, want Nils", got)
	}
	if got := r.nearestWithin(a, 1.0); got != nil {
		t.Fatalf("nearest within 1.0 = %v, want none", got)
	}
}
