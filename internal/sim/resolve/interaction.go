package resolve

import (
	"strings"

	"oakvale.ai/internal/sim/world"
)

const healAmount = 10

func isHealingItem(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "potion") || strings.Contains(t, "healing") || strings.Contains(t, "bandage")
}

func resolveInteraction(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	switch verb {
	case "take":
		it, ok := r.w.Map.RemoveGroundItem(actor.Pos, target)
		if !ok {
			out.OK = false
			r.emit(out, "%s searches for %s here, but finds nothing.", actor.Name, target)
			return
		}
		actor.AddItem(it)
		out.OK = true
		r.emit(out, "%s picks up %s.", actor.Name, it.DisplayName())
		actor.AddMemory("I picked up "+it.DisplayName(), 1)

	case "drop":
		it, ok := actor.RemoveItem(target)
		if !ok {
			out.OK = false
			r.emit(out, "%s pats their pockets for %s, but has none.", actor.Name, target)
			return
		}
		r.w.Map.AddGroundItem(actor.Pos, it)
		out.OK = true
		r.emit(out, "%s drops %s.", actor.Name, it.DisplayName())

	case "use":
		r.useItem(actor, target, out)

	case "examine":
		out.OK = true
		r.emit(out, "%s examines %s closely.", actor.Name, target)

	default: // open, close, search, activate, deactivate
		out.OK = true
		if target != "" {
			r.emit(out, "%s %ss %s.", actor.Name, verb, target)
		} else {
			r.emit(out, "%s fiddles with something.", actor.Name)
		}
	}
}

func (r *Resolver) useItem(actor *world.Character, target string, out *Outcome) {
	if isHealingItem(target) {
		it, ok := actor.FindItem(target)
		if !ok {
			out.OK = false
			r.emit(out, "%s has no %s to use.", actor.Name, target)
			return
		}
		if actor.HP >= actor.MaxHP {
			// Don't burn the item at full health.
			out.OK = false
			r.emit(out, "%s considers using %s, but feels fine already.", actor.Name, it.DisplayName())
			return
		}
		heal := actor.MaxHP - actor.HP
		if heal > healAmount {
			heal = healAmount
		}
		actor.Heal(heal)
		actor.RemoveItem(target)
		out.OK = true
		r.emit(out, "%s uses %s and recovers %d HP.", actor.Name, it.DisplayName(), heal)
		actor.AddMemory("I used "+it.DisplayName()+" to heal", 1)
		return
	}

	if _, ok := actor.FindItem(target); !ok {
		out.OK = false
		r.emit(out, "%s has no %s to use.", actor.Name, target)
		return
	}
	out.OK = true
	r.emit(out, "%s uses %s.", actor.Name, target)
}
