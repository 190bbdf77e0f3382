package world

import (
	"fmt"
	"sort"
	"strings"
)

type Terrain string

const (
	TerrainGrass    Terrain = "grass"
	TerrainForest   Terrain = "forest"
	TerrainMountain Terrain = "mountain"
	TerrainWater    Terrain = "water"
	TerrainRoad     Terrain = "road"
	TerrainBuilding Terrain = "building"
	TerrainCave     Terrain = "cave"
)

func (t Terrain) Passable() bool {
	return t != TerrainWater && t != TerrainMountain
}

// Map is the tile grid: terrain, character occupancy, and ground items.
// One character per tile; items stack freely.
type Map struct {
	W, H    int
	terrain [][]Terrain

	characters map[Vec2i]*Character
	ground     map[Vec2i][]Item
}

func NewMap(w, h int) *Map {
	terrain := make([][]Terrain, h)
	for y := range terrain {
		terrain[y] = make([]Terrain, w)
		for x := range terrain[y] {
			terrain[y][x] = TerrainGrass
		}
	}
	return &Map{
		W:          w,
		H:          h,
		terrain:    terrain,
		characters: map[Vec2i]*Character{},
		ground:     map[Vec2i][]Item{},
	}
}

func (m *Map) InBounds(p Vec2i) bool {
	return p.X >= 0 && p.X < m.W && p.Y >= 0 && p.Y < m.H
}

func (m *Map) TerrainAt(p Vec2i) Terrain {
	if !m.InBounds(p) {
		return TerrainGrass
	}
	return m.terrain[p.Y][p.X]
}

// FillTerrain paints a rectangle of terrain, clipped to the map.
func (m *Map) FillTerrain(t Terrain, x, y, w, h int) {
	for j := y; j < y+h && j < m.H; j++ {
		for i := x; i < x+w && i < m.W; i++ {
			if i >= 0 && j >= 0 {
				m.terrain[j][i] = t
			}
		}
	}
}

// PlaceCharacter puts a character on the map, removing it from any previous
// tile first.
func (m *Map) PlaceCharacter(c *Character, p Vec2i) {
	m.removeByID(c.ID)
	m.characters[p] = c
	c.Pos = p
	c.LastPos = p
}

// MoveCharacter attempts a move and reports whether it happened. Out of
// bounds, impassable terrain, and occupied tiles all refuse the move.
func (m *Map) MoveCharacter(c *Character, p Vec2i) bool {
	if !m.InBounds(p) {
		return false
	}
	if !m.TerrainAt(p).Passable() {
		return false
	}
	if _, occupied := m.characters[p]; occupied {
		return false
	}
	m.removeByID(c.ID)
	m.characters[p] = c
	c.Pos = p
	c.LastPos = p
	return true
}

func (m *Map) RemoveCharacter(c *Character) bool {
	return m.removeByID(c.ID)
}

func (m *Map) removeByID(id string) bool {
	for pos, ch := range m.characters {
		if ch.ID == id {
			delete(m.characters, pos)
			return true
		}
	}
	return false
}

func (m *Map) CharacterAt(p Vec2i) *Character {
	return m.characters[p]
}

func (m *Map) ItemsAt(p Vec2i) []Item {
	return m.ground[p]
}

func (m *Map) AddGroundItem(p Vec2i, it Item) {
	m.ground[p] = append(m.ground[p], it)
}

// RemoveGroundItem takes the first ground item at p matching needle.
func (m *Map) RemoveGroundItem(p Vec2i, needle string) (Item, bool) {
	items := m.ground[p]
	for i, it := range items {
		if it.Matches(needle) {
			m.ground[p] = append(items[:i:i], items[i+1:]...)
			if len(m.ground[p]) == 0 {
				delete(m.ground, p)
			}
			return it, true
		}
	}
	return Item{}, false
}

// VisibleDescription narrates what can be seen from p within the given
// radius, grouped by compass direction. Characters first, then items, then a
// terrain summary. This text goes straight into oracle prompts.
func (m *Map) VisibleDescription(p Vec2i, radius int) string {
	type seen struct {
		dir      string
		dist     int
		terrain  Terrain
		item     string
		charName string
	}
	var all []seen
	for j := p.Y - radius; j <= p.Y+radius; j++ {
		for i := p.X - radius; i <= p.X+radius; i++ {
			q := Vec2i{i, j}
			if q == p || !m.InBounds(q) {
				continue
			}
			d := Dist(p, q)
			if d > float64(radius) {
				continue
			}
			s := seen{
				dir:     compass(p, q),
				dist:    int(d),
				terrain: m.TerrainAt(q),
			}
			if items := m.ground[q]; len(items) > 0 {
				s.item = items[0].DisplayName()
			}
			if ch := m.characters[q]; ch != nil {
				s.charName = ch.Name
			}
			all = append(all, s)
		}
	}

	byDir := map[string][]seen{}
	var order []string
	for _, s := range all {
		if _, ok := byDir[s.dir]; !ok {
			order = append(order, s.dir)
		}
		byDir[s.dir] = append(byDir[s.dir], s)
	}
	sort.Strings(order)

	var lines []string
	for _, dir := range order {
		items := byDir[dir]
		var b strings.Builder
		fmt.Fprintf(&b, "To the %s:", dir)
		terrainCounts := map[Terrain]int{}
		for _, s := range items {
			switch {
			case s.charName != "":
				fmt.Fprintf(&b, " %s (%d tiles away on %s),", s.charName, s.dist, s.terrain)
			case s.item != "":
				fmt.Fprintf(&b, " %s (%d tiles away),", s.item, s.dist)
			default:
				terrainCounts[s.terrain]++
			}
		}
		var terr []string
		for t, n := range terrainCounts {
			if n > 3 {
				terr = append(terr, "mostly "+string(t))
			} else {
				terr = append(terr, "some "+string(t))
			}
		}
		sort.Strings(terr)
		if len(terr) > 0 {
			b.WriteString(" " + strings.Join(terr, ", "))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// compass names the direction from a to b, favoring a cardinal when the
// offset is dominated by one axis.
func compass(a, b Vec2i) string {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if abs(dx) > abs(dy)*2 {
		if dx > 0 {
			return "east"
		}
		return "west"
	}
	if abs(dy) > abs(dx)*2 {
		if dy > 0 {
			return "south"
		}
		return "north"
	}
	switch {
	case dx > 0 && dy > 0:
		return "southeast"
	case dx > 0 && dy < 0:
		return "northeast"
	case dx < 0 && dy > 0:
		return "southwest"
	case dx < 0 && dy < 0:
		return "northwest"
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return "east"
		}
		return "west"
	}
	if dy > 0 {
		return "south"
	}
	return "north"
}
