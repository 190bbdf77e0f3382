package resolve

import (
	"fmt"
	"math"

	"oakvale.ai/internal/sim/world"
)

const (
	meleeRange  = 1.5 // adjacent, diagonals included
	rangedRange = 5.0
)

func attackRange(verb string) float64 {
	if verb == "shoot" || verb == "cast" {
		return rangedRange
	}
	return meleeRange
}

// combatStats picks the attacker/defender stat pair for a verb: casters
// pit intelligence against wisdom, shooters dexterity against dexterity,
// everyone else strength against constitution.
func combatStats(verb string, atk, def *world.Character) (int, int) {
	switch verb {
	case "cast":
		return atk.Stats.Intelligence, def.Stats.Wisdom
	case "shoot":
		return atk.Stats.Dexterity, def.Stats.Dexterity
	default:
		return atk.Stats.Strength, def.Stats.Constitution
	}
}

// hitChance is 0.5 + 0.05 per point of stat advantage, clamped to
// [0.10, 0.90] so nothing is ever a sure thing.
func hitChance(atkStat, defStat int) float64 {
	c := 0.5 + 0.05*float64(atkStat-defStat)
	if c < 0.10 {
		c = 0.10
	}
	if c > 0.90 {
		c = 0.90
	}
	return c
}

func resolveCombat(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	defender := r.resolveCharacterRef(actor, target)
	if defender == nil {
		out.OK = false
		r.emit(out, "%s looks for %s to fight, but finds no one.", actor.Name, target)
		return
	}

	if world.Dist(actor.Pos, defender.Pos) > attackRange(verb) {
		// Close the distance this turn; the attack can come next turn.
		r.approach(actor, defender, out)
		return
	}

	r.strike(actor, defender, verb, out)
}

// strike performs an in-range attack roll. It is also the entry point for
// cross-family counter-attacks out of the social handler.
func (r *Resolver) strike(attacker, defender *world.Character, verb string, out *Outcome) {
	atkStat, defStat := combatStats(verb, attacker, defender)

	if r.rng.Float64() >= hitChance(atkStat, defStat) {
		// A miss still consumes the turn; nothing changes but the story.
		out.OK = true
		r.emit(out, "%s attacks %s but misses!", attacker.Name, defender.Name)
		defender.AddMemory(fmt.Sprintf("%s attacked me and missed", attacker.Name), 2)
		return
	}

	// Base damage is a third of the attack stat, rounded, with a -1..+1 swing.
	dmg := int(math.Round(float64(atkStat)/3)) + r.rng.Intn(3) - 1
	if dmg < 1 {
		dmg = 1
	}
	defender.TakeDamage(dmg)

	// Violence sours both sides, the victim more than the aggressor.
	attacker.ModifyRelationship(defender.ID, -10)
	defender.ModifyRelationship(attacker.ID, -20)

	out.OK = true
	r.emit(out, "%s hits %s for %d damage!", attacker.Name, defender.Name, dmg)
	attacker.AddMemory(fmt.Sprintf("I hit %s for %d damage", defender.Name, dmg), 2)
	defender.AddMemory(fmt.Sprintf("%s hit me for %d damage", attacker.Name, dmg), 3)

	if defender.HP <= 0 {
		r.defeat(attacker, defender, out)
	}
}

// defeat marks a character beaten and clears them from the map. Idempotent:
// re-applying to an already-defeated character is a no-op.
func (r *Resolver) defeat(attacker, defender *world.Character, out *Outcome) {
	if !defender.Alive() {
		return
	}
	defender.Status = world.StatusDefeated
	defender.LastPos = defender.Pos

	// One random possession spills onto the ground, plus the body itself.
	if n := len(defender.Inventory); n > 0 {
		i := r.rng.Intn(n)
		dropped := defender.Inventory[i]
		defender.Inventory = append(defender.Inventory[:i:i], defender.Inventory[i+1:]...)
		r.w.Map.AddGroundItem(defender.Pos, dropped)
		r.emit(out, "%s drops %s.", defender.Name, dropped.DisplayName())
	}
	r.w.Map.AddGroundItem(defender.Pos, world.TaggedItem("body", defender.Name))
	r.w.Map.RemoveCharacter(defender)

	r.emit(out, "%s has been defeated by %s!", defender.Name, attacker.Name)
	attacker.AddMemory(fmt.Sprintf("I defeated %s", defender.Name), 3)

	if r.w.Player != nil && defender.ID == r.w.Player.ID {
		out.GameOver = true
		r.emit(out, "The adventure ends here.")
	}
}
