package world

import "strings"

// Item is anything that can sit in an inventory or on the ground. Most items
// are bare names; a tagged item carries a second noun, e.g. the "body" left
// behind by a defeated character is tagged with that character's name. The
// uniform DisplayName accessor replaces per-call-site attribute probing.
type Item struct {
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

func NamedItem(name string) Item { return Item{Name: name} }

func TaggedItem(name, tag string) Item { return Item{Name: name, Tag: tag} }

func (it Item) DisplayName() string {
	if it.Tag != "" {
		return it.Name + " of " + it.Tag
	}
	return it.Name
}

// Matches reports whether needle is a case-insensitive substring of the
// item's display name. All item lookups in the simulation go through this.
func (it Item) Matches(needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(it.DisplayName()), strings.ToLower(needle))
}
