// Package resolve turns an agent's free-form decision into a validated,
// deterministic world mutation. Decisions are advisory: every handler
// re-checks the live world state, returns an explicit success flag, and
// narrates at least one event whether it succeeded or not. No handler
// panics and none of them surface errors to the caller.
package resolve

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/tuning"
	"oakvale.ai/internal/sim/world"
)

type Resolver struct {
	w    *world.World
	tune tuning.Tuning
	rng  *rand.Rand
	log  *log.Logger
}

// Outcome reports how a decision resolved. Mutations are already applied by
// the time an Outcome is returned; it exists for logging and branching.
type Outcome struct {
	OK       bool
	Events   []string
	GameOver bool
}

func New(w *world.World, tune tuning.Tuning, rng *rand.Rand, logger *log.Logger) *Resolver {
	return &Resolver{w: w, tune: tune, rng: rng, log: logger}
}

type handlerFunc func(r *Resolver, actor *world.Character, verb, target string, out *Outcome)

// Action families. Order inside a family does not matter; the family of a
// verb decides which handler runs.
var verbFamilies = map[string][]string{
	"movement":    {"move", "walk", "run", "approach", "go"},
	"combat":      {"attack", "fight", "strike", "slash", "stab", "shoot", "cast"},
	"economic":    {"buy", "sell", "trade", "offer", "pay", "gift", "give"},
	"interaction": {"open", "close", "examine", "search", "take", "drop", "use", "activate", "deactivate"},
	"social":      {"talk", "greet", "threaten", "compliment", "insult", "befriend", "persuade"},
	"rest":        {"wait", "rest", "sleep", "sit", "stand"},
	"work":        {"craft", "forge", "brew", "cook", "build", "repair", "work"},
}

var familyHandlers = map[string]handlerFunc{
	"movement":    resolveMovement,
	"combat":      resolveCombat,
	"economic":    resolveEconomic,
	"interaction": resolveInteraction,
	"social":      resolveSocial,
	"rest":        resolveRest,
	"work":        resolveWork,
}

var verbDispatch = buildVerbDispatch()

func buildVerbDispatch() map[string]handlerFunc {
	m := make(map[string]handlerFunc)
	for family, verbs := range verbFamilies {
		h := familyHandlers[family]
		for _, v := range verbs {
			m[v] = h
		}
	}
	return m
}

func validateVerbDispatch() error {
	seen := map[string]string{}
	for family, verbs := range verbFamilies {
		if familyHandlers[family] == nil {
			return fmt.Errorf("family %q has no handler", family)
		}
		for _, v := range verbs {
			if v == "" {
				return fmt.Errorf("family %q contains an empty verb", family)
			}
			if prev, dup := seen[v]; dup {
				return fmt.Errorf("verb %q in both %q and %q", v, prev, family)
			}
			seen[v] = family
		}
	}
	return nil
}

// Apply resolves one decision for one actor. Unrecognized verbs fall through
// to a flavor-only handler that always succeeds.
func (r *Resolver) Apply(actor *world.Character, d protocol.Decision) Outcome {
	var out Outcome
	if actor == nil || !actor.Alive() {
		out.OK = false
		return out
	}

	r.preamble(actor, d, &out)

	verb := strings.ToLower(strings.TrimSpace(d.Action))
	target := strings.TrimSpace(d.Target)
	if h, ok := verbDispatch[verb]; ok {
		h(r, actor, verb, target, &out)
	} else {
		resolveDefault(r, actor, verb, target, &out)
	}

	// Silence is not a valid outcome of a decision.
	if len(out.Events) == 0 {
		r.emit(&out, "%s pauses, lost in thought.", actor.Name)
	}
	return out
}

// preamble applies the decision fields every action family shares: emotion
// flavor, goal updates, and spoken dialog.
func (r *Resolver) preamble(actor *world.Character, d protocol.Decision, out *Outcome) {
	if d.Emotion != "" {
		actor.Personality.Emotion = d.Emotion
	}

	if d.GoalUpdate != "" && d.GoalUpdate != "None" {
		replaced := false
		for i, goal := range actor.Goals {
			if goal != "" && strings.Contains(d.GoalUpdate, goal) {
				actor.Goals[i] = d.GoalUpdate
				replaced = true
				break
			}
		}
		if !replaced {
			actor.Goals = append(actor.Goals, d.GoalUpdate)
		}
	}

	if d.Dialog != "" && d.Dialog != "None" {
		r.emit(out, "%s says: %q", actor.Name, d.Dialog)
		actor.AddMemory(fmt.Sprintf("I said: %q", d.Dialog), 1)
	}

	if d.Thoughts != "" && r.log != nil {
		r.log.Printf("%s thinks: %s", actor.Name, d.Thoughts)
	}
}

// emit records a narrative event on both the outcome and the world history.
func (r *Resolver) emit(out *Outcome, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	out.Events = append(out.Events, text)
	r.w.AddEvent(text)
}

func resolveDefault(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	out.OK = true
	if target != "" {
		r.emit(out, "%s tries to %s %s.", actor.Name, verb, target)
	} else {
		r.emit(out, "%s does something peculiar.", actor.Name)
	}
}

// approach moves the actor one step toward the target instead of performing
// the requested action; combat, trade, and social handlers all fall back to
// it when out of range.
func (r *Resolver) approach(actor, target *world.Character, out *Outcome) {
	step := world.StepToward(actor.Pos, target.Pos)
	if step.IsZero() {
		out.OK = false
		r.emit(out, "%s shuffles in place near %s.", actor.Name, target.Name)
		return
	}
	if r.w.Map.MoveCharacter(actor, actor.Pos.Add(step)) {
		out.OK = true
		r.emit(out, "%s moves toward %s.", actor.Name, target.Name)
		return
	}
	for _, alt := range []world.Vec2i{{X: step.X}, {Y: step.Y}} {
		if alt.IsZero() || alt == step {
			continue
		}
		if r.w.Map.MoveCharacter(actor, actor.Pos.Add(alt)) {
			out.OK = true
			r.emit(out, "%s moves toward %s.", actor.Name, target.Name)
			return
		}
	}
	out.OK = false
	r.emit(out, "%s tries to reach %s but the way is blocked.", actor.Name, target.Name)
}
