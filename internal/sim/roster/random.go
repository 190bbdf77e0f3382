package roster

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"oakvale.ai/internal/sim/world"
)

var humanNames = []string{
	"Aldric", "Bran", "Cedric", "Dorn", "Eadric", "Fendrel", "Gavin",
	"Hector", "Ivar", "Jorah", "Kade", "Leif", "Marek", "Nyles",
	"Oswald", "Phelan", "Quincy", "Rowan", "Silas", "Tristan",
	"Adela", "Brenna", "Cora", "Delia", "Eliza", "Faye", "Greta",
	"Hilda", "Ida", "Jenna", "Kira", "Lyra", "Mira", "Nora",
	"Ophelia", "Piper", "Quinn", "Rose", "Sylvia", "Thea",
}

var dwarfNames = []string{
	"Balin", "Dwalin", "Thorin", "Dain", "Gimli", "Gloin", "Durin",
	"Thrain", "Bombur", "Fili", "Kili", "Nori", "Ori", "Bifur",
	"Bofur", "Dori", "Darva", "Helga", "Sigrid", "Thyra", "Britta",
}

var elfNames = []string{
	"Legolas", "Elrond", "Thranduil", "Celeborn", "Haldir", "Aegnor",
	"Finrod", "Orophin", "Galadriel", "Arwen", "Celebrian", "Tauriel",
	"Luthien", "Nimrodel", "Elwing", "Maedhros", "Maglor", "Fingon",
}

var commonClasses = []world.Class{
	world.ClassVillager, world.ClassMerchant, world.ClassGuard, world.ClassWarrior,
}

var classSymbols = map[world.Class]string{
	world.ClassWarrior:  "W",
	world.ClassWizard:   "M",
	world.ClassRogue:    "R",
	world.ClassCleric:   "C",
	world.ClassBard:     "B",
	world.ClassMerchant: "T",
	world.ClassVillager: "V",
	world.ClassGuard:    "G",
	world.ClassBrigand:  "X",
}

var randomRaces = []world.Race{
	world.RaceHuman, world.RaceElf, world.RaceDwarf, world.RaceHalfling,
}

var personalityTraits = []string{
	"friendly", "curious", "cautious", "brave", "grumpy",
	"cheerful", "suspicious", "honest", "clever", "stubborn",
}

var likePool = []string{"gold", "food", "music", "stories", "weapons", "animals", "art"}

var dislikePool = []string{"thieves", "loud noises", "rudeness", "danger", "dirt", "monsters"}

var goalTemplates = []string{
	"Make a living selling goods",
	"Protect the village from threats",
	"Find a rare ingredient for a special recipe",
	"Pay off debt to the local guild",
	"Discover information about family history",
	"Learn a new craft or skill",
	"Find romance or companionship",
	"Earn enough gold to retire comfortably",
	"Avenge a past wrong",
	"Escape a troubled past",
}

var classInventory = map[world.Class][]string{
	world.ClassMerchant: {"goods", "ledger", "coins"},
	world.ClassWarrior:  {"sword", "shield"},
	world.ClassWizard:   {"spellbook", "potion"},
	world.ClassRogue:    {"dagger", "lockpicks"},
	world.ClassCleric:   {"holy symbol", "healing potion"},
	world.ClassGuard:    {"sword", "whistle"},
}

var classAdjectives = map[world.Class][]string{
	world.ClassMerchant: {"shrewd", "friendly", "busy", "well-dressed"},
	world.ClassWarrior:  {"battle-worn", "muscular", "scarred", "confident"},
	world.ClassWizard:   {"mysterious", "elderly", "eccentric", "scholarly"},
	world.ClassRogue:    {"nimble", "shadowy", "quick-eyed", "charming"},
	world.ClassCleric:   {"devout", "serene", "helpful", "wise"},
	world.ClassGuard:    {"vigilant", "stern", "dutiful", "alert"},
	world.ClassVillager: {"simple", "hardworking", "friendly", "modest"},
}

// RandomNPC builds a filler character with class- and race-weighted stats.
// Pass empty class or race to have them rolled.
func RandomNPC(rng *rand.Rand, class world.Class, race world.Race, home string) *world.Character {
	if race == "" {
		race = randomRaces[rng.Intn(len(randomRaces))]
	}
	if class == "" {
		class = commonClasses[rng.Intn(len(commonClasses))]
	}

	name := humanNames[rng.Intn(len(humanNames))]
	switch race {
	case world.RaceDwarf:
		name = dwarfNames[rng.Intn(len(dwarfNames))]
	case world.RaceElf:
		name = elfNames[rng.Intn(len(elfNames))]
	}

	stats := world.Stats{Strength: 10, Dexterity: 10, Constitution: 10, Intelligence: 10, Wisdom: 10, Charisma: 10}
	switch class {
	case world.ClassWarrior:
		stats.Strength += 4
		stats.Constitution += 2
	case world.ClassWizard:
		stats.Intelligence += 4
		stats.Wisdom += 2
	case world.ClassRogue:
		stats.Dexterity += 4
		stats.Charisma += 2
	case world.ClassCleric:
		stats.Wisdom += 4
		stats.Charisma += 2
	case world.ClassMerchant:
		stats.Charisma += 4
		stats.Intelligence += 2
	}
	switch race {
	case world.RaceDwarf:
		stats.Constitution += 2
		stats.Wisdom++
	case world.RaceElf:
		stats.Dexterity += 2
		stats.Intelligence++
	case world.RaceHalfling:
		stats.Dexterity += 2
		stats.Charisma++
	}
	jitter := func(v int) int { return v + rng.Intn(4) - 1 }
	stats.Strength = jitter(stats.Strength)
	stats.Dexterity = jitter(stats.Dexterity)
	stats.Constitution = jitter(stats.Constitution)
	stats.Intelligence = jitter(stats.Intelligence)
	stats.Wisdom = jitter(stats.Wisdom)
	stats.Charisma = jitter(stats.Charisma)

	level := 1 + rng.Intn(3)
	maxHP := stats.Constitution + level*4

	symbol, ok := classSymbols[class]
	if !ok {
		symbol = "N"
	}

	inv, ok := classInventory[class]
	if !ok {
		inv = []string{"personal items"}
	}

	description := fmt.Sprintf("A %s %s", race, class)
	if adjs, ok := classAdjectives[class]; ok {
		description = fmt.Sprintf("A %s %s", adjs[rng.Intn(len(adjs))], class)
	}

	npc := &world.Character{
		ID:    "npc_" + uuid.NewString()[:8],
		Name:  name,
		Class: class, Race: race, Level: level,
		Stats: stats,
		HP:    maxHP, MaxHP: maxHP,
		Inventory: items(inv...),
		Gold:      (5 + rng.Intn(16)) * level,
		Symbol:    symbol,
		Description: description,
		Personality: world.Personality{
			Traits:   sample(rng, personalityTraits, 3),
			Likes:    sample(rng, likePool, 2),
			Dislikes: sample(rng, dislikePool, 2),
		},
		Goals:        sample(rng, goalTemplates, 1+rng.Intn(3)),
		HomeLocation: home,
	}

	birthplaces := []string{"small village", "bustling town", "quiet hamlet", "busy city"}
	reasons := []string{"I wanted to", "my family tradition", "I had a talent for it", "it was my only option"}
	npc.AddMemory("I was born in a "+birthplaces[rng.Intn(len(birthplaces))], 2)
	npc.AddMemory(fmt.Sprintf("I became a %s because %s", class, reasons[rng.Intn(len(reasons))]), 2)

	return npc
}

// sample picks n distinct entries without mutating the pool.
func sample(rng *rand.Rand, pool []string, n int) []string {
	idx := rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pool[idx[i]]
	}
	return out
}
