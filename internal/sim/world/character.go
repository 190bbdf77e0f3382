package world

import (
	"sort"
	"strings"
	"time"
)

type Class string

const (
	ClassWarrior  Class = "warrior"
	ClassWizard   Class = "wizard"
	ClassRogue    Class = "rogue"
	ClassCleric   Class = "cleric"
	ClassBard     Class = "bard"
	ClassMerchant Class = "merchant"
	ClassVillager Class = "villager"
	ClassGuard    Class = "guard"
	ClassBrigand  Class = "brigand"
)

type Race string

const (
	RaceHuman    Race = "human"
	RaceElf      Race = "elf"
	RaceDwarf    Race = "dwarf"
	RaceHalfling Race = "halfling"
	RaceTroll    Race = "troll"
)

type Status string

const (
	StatusAlive    Status = "alive"
	StatusDefeated Status = "defeated"
)

// Stats is the six-attribute block shared by every character.
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Memory is one remembered event, kept sorted by importance descending.
type Memory struct {
	Text       string    `json:"text"`
	Importance int       `json:"importance"`
	At         time.Time `json:"at"`
}

// Personality is non-authoritative flavor state fed to the oracle.
type Personality struct {
	Traits   []string `json:"traits,omitempty"`
	Likes    []string `json:"likes,omitempty"`
	Dislikes []string `json:"dislikes,omitempty"`
	Emotion  string   `json:"emotion,omitempty"`
}

// Character is any simulated entity, player included. It is owned
// exclusively by the simulation: only the resolver and the orchestrator
// mutate it. Workers operate on clones.
type Character struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Class  Class  `json:"class"`
	Race   Race   `json:"race"`
	Level  int    `json:"level"`
	Symbol string `json:"symbol"`

	Stats Stats `json:"stats"`

	HP    int   `json:"hp"`
	MaxHP int   `json:"max_hp"`
	Pos   Vec2i `json:"position"`

	Inventory []Item `json:"inventory"`
	Gold      int    `json:"gold"`

	Description   string         `json:"description,omitempty"`
	Personality   Personality    `json:"personality"`
	Goals         []string       `json:"goals,omitempty"`
	Relationships map[string]int `json:"relationships,omitempty"`
	Memories      []Memory       `json:"memories,omitempty"`

	Status       Status `json:"status"`
	HomeLocation string `json:"home_location,omitempty"`

	// LastPos survives defeat so a revived character can be placed back.
	LastPos Vec2i `json:"last_position"`
}

func (c *Character) initDefaults() {
	if c.Status == "" {
		c.Status = StatusAlive
	}
	if c.Symbol == "" {
		c.Symbol = "N"
	}
	if c.Relationships == nil {
		c.Relationships = map[string]int{}
	}
}

func (c *Character) Alive() bool { return c.Status == StatusAlive }

func (c *Character) AddMemory(text string, importance int) {
	c.Memories = append(c.Memories, Memory{Text: text, Importance: importance, At: time.Now()})
	sort.SliceStable(c.Memories, func(i, j int) bool {
		return c.Memories[i].Importance > c.Memories[j].Importance
	})
}

func (c *Character) ModifyRelationship(otherID string, delta int) {
	if c.Relationships == nil {
		c.Relationships = map[string]int{}
	}
	v := c.Relationships[otherID] + delta
	if v > 100 {
		v = 100
	}
	if v < -100 {
		v = -100
	}
	c.Relationships[otherID] = v
}

func (c *Character) Relationship(otherID string) int {
	return c.Relationships[otherID]
}

func (c *Character) RelationshipLabel(otherID string) string {
	v := c.Relationship(otherID)
	switch {
	case v >= 80:
		return "close friend"
	case v >= 60:
		return "friend"
	case v >= 30:
		return "acquaintance"
	case v >= 0:
		return "neutral"
	case v >= -30:
		return "dislikes"
	case v >= -60:
		return "enemy"
	default:
		return "sworn enemy"
	}
}

func (c *Character) AddItem(it Item) {
	c.Inventory = append(c.Inventory, it)
}

// RemoveItem takes the first inventory entry matching needle (case-insensitive
// substring) out of the inventory and returns it.
func (c *Character) RemoveItem(needle string) (Item, bool) {
	for i, it := range c.Inventory {
		if it.Matches(needle) {
			c.Inventory = append(c.Inventory[:i:i], c.Inventory[i+1:]...)
			return it, true
		}
	}
	return Item{}, false
}

func (c *Character) FindItem(needle string) (Item, bool) {
	for _, it := range c.Inventory {
		if it.Matches(needle) {
			return it, true
		}
	}
	return Item{}, false
}

func (c *Character) TakeDamage(n int) int {
	c.HP -= n
	if c.HP < 0 {
		c.HP = 0
	}
	return c.HP
}

func (c *Character) Heal(n int) int {
	c.HP += n
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	return c.HP
}

// StatModifier is the D&D-style (v-10)/2 modifier, truncated toward zero for
// odd low scores the way integer division does.
func (c *Character) StatModifier(v int) int { return (v - 10) / 2 }

// Clone deep-copies the character. Workers hold clones so decision context
// never aliases the authoritative copy.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Inventory = append([]Item(nil), c.Inventory...)
	cp.Goals = append([]string(nil), c.Goals...)
	cp.Memories = append([]Memory(nil), c.Memories...)
	cp.Personality.Traits = append([]string(nil), c.Personality.Traits...)
	cp.Personality.Likes = append([]string(nil), c.Personality.Likes...)
	cp.Personality.Dislikes = append([]string(nil), c.Personality.Dislikes...)
	cp.Relationships = make(map[string]int, len(c.Relationships))
	for k, v := range c.Relationships {
		cp.Relationships[k] = v
	}
	return &cp
}

func (c *Character) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" (")
	b.WriteString(string(c.Race))
	b.WriteString(" ")
	b.WriteString(string(c.Class))
	b.WriteString(")")
	return b.String()
}
