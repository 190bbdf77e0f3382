package resolve

import "oakvale.ai/internal/sim/world"

func resolveMovement(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	vec := r.movementVector(actor, target)
	if vec.IsZero() {
		out.OK = false
		r.emit(out, "%s looks around, unsure which way to go.", actor.Name)
		actor.AddMemory("I wanted to go "+target+" but couldn't find the way", 1)
		return
	}

	if r.w.Map.MoveCharacter(actor, actor.Pos.Add(vec)) {
		out.OK = true
		r.emit(out, "%s moves %s.", actor.Name, target)
		actor.AddMemory("I moved "+target, 1)
		return
	}

	// Blocked: retry each single-axis component of the original vector.
	// For a pure cardinal vector the alternates degenerate to the vector
	// itself or zero, so a blocked cardinal move simply fails.
	for _, alt := range []world.Vec2i{{X: vec.X}, {Y: vec.Y}} {
		if alt.IsZero() || alt == vec {
			continue
		}
		if r.w.Map.MoveCharacter(actor, actor.Pos.Add(alt)) {
			out.OK = true
			r.emit(out, "%s moves in an alternate direction.", actor.Name)
			actor.AddMemory("I had to take a detour", 1)
			return
		}
	}

	out.OK = false
	r.emit(out, "%s tries to move %s but can't.", actor.Name, target)
	actor.AddMemory("My way "+target+" was blocked", 2)
}
