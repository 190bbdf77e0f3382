// Package world holds the authoritative simulation state: the tile map,
// every character, named locations, the game clock, and the narrative event
// log. State is created at startup, mutated only through the action resolver
// and the turn orchestrator, and torn down at shutdown; there are no global
// registries.
package world

import (
	"fmt"
	"strings"
)

// World is the SimulationState passed by reference through the orchestrator.
type World struct {
	Map       *Map
	Locations []*Location

	// Roster preserves registration order; defeated characters stay in it.
	roster []*Character
	byID   map[string]*Character

	Player *Character

	// Game time in minutes.
	timeMin int

	Events *EventLog
}

func New(w, h, maxHistory int) *World {
	return &World{
		Map:    NewMap(w, h),
		byID:   map[string]*Character{},
		Events: NewEventLog(maxHistory),
	}
}

// AddCharacter registers a character and places it on the map. The player is
// registered the same way with SetPlayer.
func (w *World) AddCharacter(c *Character) error {
	c.initDefaults()
	if c.ID == "" {
		return fmt.Errorf("character %q has no id", c.Name)
	}
	if _, dup := w.byID[c.ID]; dup {
		return fmt.Errorf("duplicate character id %q", c.ID)
	}
	w.roster = append(w.roster, c)
	w.byID[c.ID] = c
	w.Map.PlaceCharacter(c, c.Pos)
	return nil
}

func (w *World) SetPlayer(c *Character) error {
	if err := w.AddCharacter(c); err != nil {
		return err
	}
	w.Player = c
	return nil
}

func (w *World) CharacterByID(id string) *Character {
	return w.byID[id]
}

// CharacterByName returns the first registered character whose name matches
// exactly, case-insensitive.
func (w *World) CharacterByName(name string) *Character {
	for _, c := range w.roster {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Roster returns every registered character in registration order, defeated
// ones included. Callers must not reorder it: registration order is the
// documented tie-break for ambiguous target matches.
func (w *World) Roster() []*Character {
	return w.roster
}

// NPCs returns all non-player characters in registration order.
func (w *World) NPCs() []*Character {
	out := make([]*Character, 0, len(w.roster))
	for _, c := range w.roster {
		if w.Player == nil || c.ID != w.Player.ID {
			out = append(out, c)
		}
	}
	return out
}

func (w *World) AddLocation(l *Location) {
	w.Locations = append(w.Locations, l)
}

func (w *World) LocationAt(p Vec2i) *Location {
	for _, l := range w.Locations {
		if l.Contains(p) {
			return l
		}
	}
	return nil
}

func (w *World) LocationName(p Vec2i) string {
	if l := w.LocationAt(p); l != nil {
		return l.Name
	}
	return "wilderness"
}

func (w *World) AdvanceTime(minutes int) { w.timeMin += minutes }

func (w *World) TimeOfDay() string {
	hours := (w.timeMin / 60) % 24
	switch {
	case hours >= 6 && hours < 12:
		return "morning"
	case hours >= 12 && hours < 17:
		return "afternoon"
	case hours >= 17 && hours < 21:
		return "evening"
	default:
		return "night"
	}
}

func (w *World) FormattedTime() string {
	days := w.timeMin / (24 * 60)
	hours := (w.timeMin / 60) % 24
	minutes := w.timeMin % 60
	return fmt.Sprintf("Day %d, %02d:%02d (%s)", days+1, hours, minutes, w.TimeOfDay())
}

// AddEvent appends a narrative event stamped with the current game time.
func (w *World) AddEvent(text string) {
	w.Events.Append(w.FormattedTime(), text)
}

// Revive brings a defeated character back at a fraction of max HP, placed at
// its last position (or its home location's center if that tile is taken).
func (w *World) Revive(id string, hpFrac float64) bool {
	c := w.byID[id]
	if c == nil || c.Alive() {
		return false
	}
	hp := int(float64(c.MaxHP) * hpFrac)
	if hp < 1 {
		hp = 1
	}
	pos := c.LastPos
	if w.Map.CharacterAt(pos) != nil || !w.Map.TerrainAt(pos).Passable() {
		placed := false
		for _, l := range w.Locations {
			if l.Name == c.HomeLocation {
				pos = l.Center()
				placed = true
				break
			}
		}
		if !placed || w.Map.CharacterAt(pos) != nil {
			return false
		}
	}
	c.Status = StatusAlive
	c.HP = hp
	w.Map.PlaceCharacter(c, pos)
	w.AddEvent(fmt.Sprintf("%s staggers back to their feet.", c.Name))
	return true
}
