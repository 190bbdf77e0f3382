package resolve

import (
	"fmt"

	"oakvale.ai/internal/sim/world"
)

// counterAttackThreshold is how far a relationship must have sunk before a
// threatened character may snap and retaliate.
const counterAttackThreshold = -50

func resolveSocial(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	other := r.resolveCharacterRef(actor, target)
	if other == nil {
		out.OK = false
		r.emit(out, "%s calls out to %s, but no one answers.", actor.Name, target)
		return
	}

	if world.Dist(actor.Pos, other.Pos) > meleeRange {
		r.approach(actor, other, out)
		return
	}

	switch verb {
	case "befriend":
		actor.ModifyRelationship(other.ID, 10)
		other.ModifyRelationship(actor.ID, 5)
		out.OK = true
		r.emit(out, "%s makes friendly overtures to %s.", actor.Name, other.Name)
		other.AddMemory(fmt.Sprintf("%s was friendly to me", actor.Name), 1)

	case "threaten":
		// Asymmetric: the threatened party resents more than the threatener.
		actor.ModifyRelationship(other.ID, -5)
		other.ModifyRelationship(actor.ID, -15)
		out.OK = true
		r.emit(out, "%s threatens %s!", actor.Name, other.Name)
		other.AddMemory(fmt.Sprintf("%s threatened me", actor.Name), 2)

		if other.Relationship(actor.ID) < counterAttackThreshold && r.rng.Float64() < 0.5 {
			r.emit(out, "%s snaps and lashes out at %s!", other.Name, actor.Name)
			r.strike(other, actor, "attack", out)
		}

	case "compliment":
		actor.ModifyRelationship(other.ID, 5)
		other.ModifyRelationship(actor.ID, 5)
		out.OK = true
		r.emit(out, "%s compliments %s.", actor.Name, other.Name)

	case "insult":
		actor.ModifyRelationship(other.ID, -10)
		other.ModifyRelationship(actor.ID, -10)
		out.OK = true
		r.emit(out, "%s insults %s!", actor.Name, other.Name)
		other.AddMemory(fmt.Sprintf("%s insulted me", actor.Name), 2)

	default: // talk, greet, persuade: dialog was already handled in the preamble
		out.OK = true
		r.emit(out, "%s talks with %s.", actor.Name, other.Name)
	}
}
