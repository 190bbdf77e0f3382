package resolve

import (
	"strings"

	"oakvale.ai/internal/sim/world"
)

const sleepHeal = 2

func resolveRest(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	// Resting always succeeds; sleeping also knits a couple of wounds.
	out.OK = true
	if verb == "sleep" && actor.HP < actor.MaxHP {
		actor.Heal(sleepHeal)
		r.emit(out, "%s sleeps and recovers a little.", actor.Name)
		return
	}
	if target != "" {
		r.emit(out, "%s %ss %s.", actor.Name, verb, target)
	} else {
		r.emit(out, "%s %ss.", actor.Name, verb)
	}
}

// workRecipe decides whether a class working a verb on a target yields a
// concrete item. Work is deliberately permissive: it never fails, it just
// only sometimes produces loot.
type workRecipe struct {
	class    world.Class
	verbs    []string
	keywords []string
	product  string
}

var workRecipes = []workRecipe{
	{world.ClassMerchant, []string{"forge", "craft", "repair", "work"}, []string{"sword", "weapon"}, "sword"},
	{world.ClassMerchant, []string{"forge", "craft", "work"}, []string{"armor", "shield"}, "shield"},
	{world.ClassCleric, []string{"brew", "craft"}, []string{"potion", "healing"}, "healing potion"},
	{world.ClassWizard, []string{"brew", "craft"}, []string{"potion"}, "potion"},
	{world.ClassVillager, []string{"cook", "work"}, []string{"bread", "food", "meal"}, "bread"},
}

func workProduct(class world.Class, verb, target string) (world.Item, bool) {
	t := strings.ToLower(target)
	for _, rec := range workRecipes {
		if rec.class != class {
			continue
		}
		if !containsAny(verb, rec.verbs) {
			continue
		}
		for _, kw := range rec.keywords {
			if strings.Contains(t, kw) {
				return world.NamedItem(rec.product), true
			}
		}
	}
	return world.Item{}, false
}

func containsAny(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func resolveWork(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	out.OK = true
	if it, ok := workProduct(actor.Class, verb, target); ok {
		actor.AddItem(it)
		r.emit(out, "%s finishes work on a new %s.", actor.Name, it.DisplayName())
		actor.AddMemory("I made a "+it.DisplayName(), 2)
		return
	}
	if target != "" {
		r.emit(out, "%s works on %s.", actor.Name, target)
	} else {
		r.emit(out, "%s works diligently.", actor.Name)
	}
}
