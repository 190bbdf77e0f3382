// Package roster builds the demo world: the Oakvale map, its named
// inhabitants, the troll brigand on the east road, and the player. It also
// generates random filler NPCs for larger worlds.
package roster

import (
	"fmt"

	"oakvale.ai/internal/sim/tuning"
	"oakvale.ai/internal/sim/world"
)

// BuildOakvale assembles the complete demo world: terrain, locations, the
// five scripted NPCs, and the player at the village outskirts.
func BuildOakvale(tune tuning.Tuning) (*world.World, error) {
	w := world.New(tune.MapWidth, tune.MapHeight, tune.MaxHistoryItems)
	buildTerrain(w)

	for _, npc := range oakvaleNPCs() {
		if err := w.AddCharacter(npc); err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
	}
	if err := w.SetPlayer(defaultPlayer()); err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}

	w.AddEvent("You arrive at the outskirts of Oakvale Village.")
	return w, nil
}

func buildTerrain(w *world.World) {
	// Forest ringing the village.
	w.Map.FillTerrain(world.TerrainForest, 5, 0, 20, 5)
	w.Map.FillTerrain(world.TerrainForest, 5, 15, 20, 5)
	w.Map.FillTerrain(world.TerrainForest, 5, 5, 5, 10)
	w.Map.FillTerrain(world.TerrainForest, 20, 5, 5, 10)

	// River and the east road.
	w.Map.FillTerrain(world.TerrainWater, 0, 10, 30, 2)
	w.Map.FillTerrain(world.TerrainRoad, 0, 7, 30, 1)

	// Village buildings.
	w.Map.FillTerrain(world.TerrainBuilding, 12, 6, 2, 2)
	w.Map.FillTerrain(world.TerrainBuilding, 16, 6, 2, 2)
	w.Map.FillTerrain(world.TerrainBuilding, 12, 10, 2, 2)
	w.Map.FillTerrain(world.TerrainBuilding, 16, 10, 2, 2)

	// Mountains with a cave mouth.
	w.Map.FillTerrain(world.TerrainMountain, 25, 0, 5, 5)
	w.Map.FillTerrain(world.TerrainCave, 27, 3, 1, 1)

	w.AddLocation(&world.Location{Name: "Oakvale Village", Description: "A small peaceful village surrounded by forests", X: 10, Y: 5, W: 10, H: 10})
	w.AddLocation(&world.Location{Name: "Oakvale Tavern", Description: "A cozy tavern with a warm hearth", X: 12, Y: 6, W: 2, H: 2})
	w.AddLocation(&world.Location{Name: "Durgan's Forge", Description: "A busy blacksmith shop with the sound of hammering", X: 16, Y: 6, W: 2, H: 2})
	w.AddLocation(&world.Location{Name: "General Store", Description: "A shop with various goods and supplies", X: 12, Y: 10, W: 2, H: 2})
	w.AddLocation(&world.Location{Name: "Temple of Light", Description: "A small temple dedicated to the gods of light", X: 16, Y: 10, W: 2, H: 2})
	w.AddLocation(&world.Location{Name: "Misty Mountains", Description: "Tall mountains shrouded in mist", X: 25, Y: 0, W: 5, H: 5})
	w.AddLocation(&world.Location{Name: "Dark Cave", Description: "A mysterious cave entrance in the mountainside", X: 27, Y: 3, W: 1, H: 1})
}

func oakvaleNPCs() []*world.Character {
	tavernKeeper := &world.Character{
		ID: "tavernkeeper_01", Name: "Goren",
		Class: world.ClassMerchant, Race: world.RaceHuman, Level: 3,
		Stats:     world.Stats{Strength: 12, Dexterity: 10, Constitution: 14, Intelligence: 12, Wisdom: 14, Charisma: 16},
		HP:        20, MaxHP: 20,
		Pos:       world.Vec2i{X: 13, Y: 7},
		Inventory: items("ale", "mead", "bread"),
		Gold:      100, Symbol: "T",
		Description: "A jovial tavern keeper with a hearty laugh",
		Personality: world.Personality{
			Traits:   []string{"friendly", "gregarious", "opportunistic"},
			Likes:    []string{"gold", "stories", "ale"},
			Dislikes: []string{"thieves", "troublemakers"},
		},
		Goals:        []string{"Make a profit", "Keep customers happy", "Gather interesting stories"},
		HomeLocation: "Oakvale Tavern",
	}
	tavernKeeper.AddMemory("Served a group of adventurers who talked about a dragon in the mountains", 3)
	tavernKeeper.AddMemory("Heard rumors of bandits on the east road", 2)
	tavernKeeper.AddMemory("There's a troll that has been causing trouble for travelers", 3)

	blacksmith := &world.Character{
		ID: "blacksmith_01", Name: "Durgan",
		Class: world.ClassMerchant, Race: world.RaceDwarf, Level: 5,
		Stats:     world.Stats{Strength: 16, Dexterity: 14, Constitution: 16, Intelligence: 12, Wisdom: 12, Charisma: 10},
		HP:        30, MaxHP: 30,
		Pos:       world.Vec2i{X: 17, Y: 7},
		Inventory: items("sword", "shield", "armor"),
		Gold:      200, Symbol: "B",
		Description: "A stout dwarf with muscular arms and a thick beard",
		Personality: world.Personality{
			Traits:   []string{"hardworking", "honest", "gruff"},
			Likes:    []string{"craftsmanship", "ale", "honesty"},
			Dislikes: []string{"haggling", "shoddy work", "elves"},
		},
		Goals:         []string{"Craft masterwork items", "Earn enough to expand the forge"},
		Relationships: map[string]int{"tavernkeeper_01": 60},
		HomeLocation:  "Durgan's Forge",
	}
	blacksmith.AddMemory("A strange traveler commissioned an unusual silver blade", 3)
	blacksmith.AddMemory("The mines in the mountains have gone quiet", 2)
	blacksmith.AddMemory("I've been making stronger weapons since the troll attacks started", 2)

	minstrel := &world.Character{
		ID: "minstrel_01", Name: "Melody",
		Class: world.ClassBard, Race: world.RaceHuman, Level: 2,
		Stats:     world.Stats{Strength: 8, Dexterity: 14, Constitution: 10, Intelligence: 12, Wisdom: 10, Charisma: 16},
		HP:        15, MaxHP: 15,
		Pos:       world.Vec2i{X: 15, Y: 8},
		Inventory: items("lute", "flute", "wine"),
		Gold:      30, Symbol: "M",
		Description: "A cheerful young woman with a beautiful voice and colorful clothes",
		Personality: world.Personality{
			Traits:   []string{"cheerful", "curious", "flirtatious"},
			Likes:    []string{"music", "stories", "attractive people"},
			Dislikes: []string{"silence", "boredom", "violence"},
		},
		Goals:         []string{"Collect stories for songs", "Earn fame", "Find romance"},
		Relationships: map[string]int{"tavernkeeper_01": 50, "blacksmith_01": 30},
		HomeLocation:  "Oakvale Tavern",
	}
	minstrel.AddMemory("Heard a haunting melody from the forest at night", 3)
	minstrel.AddMemory("A noble from the capital is supposedly traveling incognito", 2)
	minstrel.AddMemory("I'm composing a song about a fearsome troll terrorizing the countryside", 2)

	guard := &world.Character{
		ID: "guard_01", Name: "Karim",
		Class: world.ClassGuard, Race: world.RaceHuman, Level: 3,
		Stats:     world.Stats{Strength: 14, Dexterity: 12, Constitution: 14, Intelligence: 10, Wisdom: 12, Charisma: 10},
		HP:        25, MaxHP: 25,
		Pos:       world.Vec2i{X: 10, Y: 7},
		Inventory: items("sword", "shield", "jerky"),
		Gold:      15, Symbol: "G",
		Description: "A stern-looking guard with a weathered face",
		Personality: world.Personality{
			Traits:   []string{"dutiful", "suspicious", "brave"},
			Likes:    []string{"order", "discipline", "recognition"},
			Dislikes: []string{"troublemakers", "monsters", "laziness"},
		},
		Goals:         []string{"Protect the village", "Advance in rank", "Enforce the laws", "Hunt down the troll brigand"},
		Relationships: map[string]int{"tavernkeeper_01": 40, "blacksmith_01": 60, "minstrel_01": 20},
		HomeLocation:  "Oakvale Village",
	}
	guard.AddMemory("Spotted strange lights in the mountains three nights ago", 3)
	guard.AddMemory("Merchants reported missing goods on the east road", 2)
	guard.AddMemory("I've been ordered to organize a hunt for the troll that's been attacking travelers", 3)

	troll := TrollBrigand(world.Vec2i{X: 25, Y: 10})

	return []*world.Character{tavernKeeper, blacksmith, minstrel, guard, troll}
}

// TrollBrigand builds Gorkash, the hostile troll that haunts the east road.
func TrollBrigand(pos world.Vec2i) *world.Character {
	troll := &world.Character{
		ID: "troll_brigand_01", Name: "Gorkash",
		Class: world.ClassBrigand, Race: world.RaceTroll, Level: 5,
		Stats:     world.Stats{Strength: 18, Dexterity: 10, Constitution: 16, Intelligence: 8, Wisdom: 8, Charisma: 6},
		HP:        40, MaxHP: 40,
		Pos:       pos,
		Inventory: items("crude axe", "tattered armor", "stolen jewelry"),
		Gold:      50, Symbol: "X",
		Description: "A massive troll with greenish skin and a menacing grin, wielding a crude axe",
		Personality: world.Personality{
			Traits:   []string{"aggressive", "greedy", "territorial"},
			Likes:    []string{"gold", "food", "fighting"},
			Dislikes: []string{"knights", "villagers", "being outnumbered"},
		},
		Goals: []string{"Rob travelers on the road", "Collect valuable items", "Establish dominance in the area"},
		Relationships: map[string]int{
			"tavernkeeper_01": -60,
			"blacksmith_01":   -70,
			"guard_01":        -80,
		},
	}
	troll.AddMemory("I ambushed a merchant caravan last week and got some shiny things", 3)
	troll.AddMemory("Villagers tried to drive me away with torches and pitchforks", 2)
	troll.AddMemory("I've been watching the road for easy prey", 1)
	return troll
}

func defaultPlayer() *world.Character {
	return &world.Character{
		ID: "player", Name: "Player",
		Class: world.ClassWarrior, Race: world.RaceHuman, Level: 1,
		Stats:     world.Stats{Strength: 14, Dexterity: 12, Constitution: 14, Intelligence: 10, Wisdom: 10, Charisma: 12},
		HP:        20, MaxHP: 20,
		Pos:       world.Vec2i{X: 15, Y: 5},
		Inventory: items("sword", "shield", "potion"),
		Gold:      50, Symbol: "@",
		Description: "A brave adventurer",
		Goals:       []string{"Explore the world", "Find adventure"},
	}
}

func items(names ...string) []world.Item {
	out := make([]world.Item, 0, len(names))
	for _, n := range names {
		out = append(out, world.NamedItem(n))
	}
	return out
}
