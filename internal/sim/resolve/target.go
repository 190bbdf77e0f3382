package resolve

import (
	"strings"
	"unicode/utf8"

	"oakvale.ai/internal/sim/world"
)

// directionTable maps direction keywords to step vectors. Order matters:
// matching is case-insensitive substring search and the first hit wins, so
// "head north to the forge" resolves as a direction before any location
// lookup. Screen-relative and body-relative words map onto the compass.
var directionTable = []struct {
	name string
	vec  world.Vec2i
}{
	{"north", world.Vec2i{X: 0, Y: -1}},
	{"south", world.Vec2i{X: 0, Y: 1}},
	{"east", world.Vec2i{X: 1, Y: 0}},
	{"west", world.Vec2i{X: -1, Y: 0}},
	{"northeast", world.Vec2i{X: 1, Y: -1}},
	{"northwest", world.Vec2i{X: -1, Y: -1}},
	{"southeast", world.Vec2i{X: 1, Y: 1}},
	{"southwest", world.Vec2i{X: -1, Y: 1}},
	{"up", world.Vec2i{X: 0, Y: -1}},
	{"down", world.Vec2i{X: 0, Y: 1}},
	{"right", world.Vec2i{X: 1, Y: 0}},
	{"left", world.Vec2i{X: -1, Y: 0}},
	{"forward", world.Vec2i{X: 0, Y: -1}},
	{"backward", world.Vec2i{X: 0, Y: 1}},
}

// playerTerms are the synonyms agents use when they mean the player.
var playerTerms = []string{"player", "adventurer", "traveler", "traveller", "stranger", "newcomer"}

func mentionsPlayer(text string) bool {
	for _, term := range playerTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// movementVector interprets free text as a single-step move. Precedence:
// explicit direction keyword, then player reference, then another character
// by name, then a named location (resolving to its center). A position
// target collapses to an axis-aligned step; no target at all is a zero
// vector, which movement treats as failure.
func (r *Resolver) movementVector(actor *world.Character, target string) world.Vec2i {
	text := strings.ToLower(target)

	for _, d := range directionTable {
		if strings.Contains(text, d.name) {
			return d.vec
		}
	}

	if pos, ok := r.targetPosition(actor, text); ok {
		return world.StepToward(actor.Pos, pos)
	}
	return world.Vec2i{}
}

// targetPosition resolves text to a coordinate: the player, a named
// character, or a named location's center. Text must already be lowercased.
func (r *Resolver) targetPosition(actor *world.Character, text string) (world.Vec2i, bool) {
	if mentionsPlayer(text) && r.w.Player != nil && r.w.Player.ID != actor.ID {
		return r.w.Player.Pos, true
	}

	for _, other := range r.w.Roster() {
		if other.ID == actor.ID || !other.Alive() {
			continue
		}
		if strings.Contains(text, strings.ToLower(other.Name)) {
			return other.Pos, true
		}
	}

	for _, loc := range r.w.Locations {
		if strings.Contains(text, strings.ToLower(loc.Name)) {
			return loc.Center(), true
		}
	}
	return world.Vec2i{}, false
}

// resolveCharacterRef finds the character the text refers to: player
// synonyms first, then name substring, then class ("the guard"), then a
// bare one-rune symbol. Ambiguous matches resolve to the earliest-registered
// character; that tie-break is deliberate and tested.
func (r *Resolver) resolveCharacterRef(actor *world.Character, target string) *world.Character {
	text := strings.ToLower(strings.TrimSpace(target))
	if text == "" {
		return nil
	}

	if mentionsPlayer(text) && r.w.Player != nil && r.w.Player.ID != actor.ID {
		return r.w.Player
	}

	for _, c := range r.w.Roster() {
		if c.ID == actor.ID || !c.Alive() {
			continue
		}
		if strings.Contains(text, strings.ToLower(c.Name)) {
			return c
		}
	}

	for _, c := range r.w.Roster() {
		if c.ID == actor.ID || !c.Alive() {
			continue
		}
		if strings.Contains(text, strings.ToLower(string(c.Class))) {
			return c
		}
	}

	// Symbol lookup only for an exactly-one-rune target; anything longer
	// aliases with ordinary words too easily.
	if utf8.RuneCountInString(text) == 1 {
		for _, c := range r.w.Roster() {
			if c.ID == actor.ID || !c.Alive() {
				continue
			}
			if strings.EqualFold(c.Symbol, text) {
				return c
			}
		}
	}
	return nil
}

// nearestWithin returns the closest living character within radius, or nil.
// Ties break to the earliest-registered character.
func (r *Resolver) nearestWithin(actor *world.Character, radius float64) *world.Character {
	var best *world.Character
	var bestDist float64
	for _, c := range r.w.Roster() {
		if c.ID == actor.ID || !c.Alive() {
			continue
		}
		d := world.Dist(actor.Pos, c.Pos)
		if d > radius {
			continue
		}
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
