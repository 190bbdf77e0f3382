package resolve

import (
	"strconv"
	"strings"

	"oakvale.ai/internal/sim/world"
)

// tradeSeparators split "bread from Goren" style targets into item and
// partner. First separator present wins, in this priority order.
var tradeSeparators = []string{" from ", " to ", " with "}

func splitTradeTarget(target string) (item, partner string) {
	lower := strings.ToLower(target)
	for _, sep := range tradeSeparators {
		if i := strings.Index(lower, sep); i >= 0 {
			return strings.TrimSpace(target[:i]), strings.TrimSpace(target[i+len(sep):])
		}
	}
	return strings.TrimSpace(target), ""
}

// goldWords is the small word-to-number table for gifted coin amounts.
// Digits embedded in the text take priority over any of these.
var goldWords = map[string]int{
	"a": 1, "an": 1, "one": 1,
	"two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50, "hundred": 100,
}

// parseGoldAmount extracts the amount from e.g. "50 gold" or "five coins".
// The first embedded digit run wins; otherwise the first word-table hit;
// otherwise 1.
func parseGoldAmount(text string) int {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, _ := strconv.Atoi(text[start:i])
			return n
		}
	}
	if start >= 0 {
		n, _ := strconv.Atoi(text[start:])
		return n
	}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if n, ok := goldWords[strings.Trim(word, ".,!?")]; ok {
			return n
		}
	}
	return 1
}

func isGoldGift(itemText string) bool {
	t := strings.ToLower(itemText)
	return strings.Contains(t, "gold") || strings.Contains(t, "coin") || strings.Contains(t, "money")
}

func resolveEconomic(r *Resolver, actor *world.Character, verb, target string, out *Outcome) {
	itemText, partnerText := splitTradeTarget(target)

	var partner *world.Character
	if partnerText != "" {
		partner = r.resolveCharacterRef(actor, partnerText)
	}
	if partner == nil {
		partner = r.nearestWithin(actor, r.tune.InteractionRadius)
	}
	if partner == nil {
		out.OK = false
		r.emit(out, "%s looks for someone to trade with, but no one is near.", actor.Name)
		return
	}

	if world.Dist(actor.Pos, partner.Pos) > meleeRange {
		r.approach(actor, partner, out)
		return
	}

	switch verb {
	case "sell":
		r.trade(actor, partner, partner, actor, itemText, out)
	case "give", "gift":
		r.give(actor, partner, itemText, out)
	default: // buy, trade, offer, pay
		r.trade(actor, partner, actor, partner, itemText, out)
	}
}

// trade moves itemText from seller to buyer for the flat default price.
// Gold and item change hands together or not at all.
func (r *Resolver) trade(actor, partner, buyer, seller *world.Character, itemText string, out *Outcome) {
	price := r.tune.DefaultPrice

	if _, ok := seller.FindItem(itemText); !ok {
		out.OK = false
		r.emit(out, "%s asks about %s, but %s has none.", actor.Name, itemText, seller.Name)
		return
	}
	if buyer.Gold < price {
		out.OK = false
		r.emit(out, "%s can't afford %s.", buyer.Name, itemText)
		return
	}

	it, _ := seller.RemoveItem(itemText)
	buyer.Gold -= price
	seller.Gold += price
	buyer.AddItem(it)

	out.OK = true
	r.emit(out, "%s buys %s from %s for %d gold.", buyer.Name, it.DisplayName(), seller.Name, price)
	actor.AddMemory("I traded "+it.DisplayName()+" with "+partner.Name, 2)
}

func (r *Resolver) give(actor, partner *world.Character, itemText string, out *Outcome) {
	if isGoldGift(itemText) {
		amount := parseGoldAmount(itemText)
		if actor.Gold < amount {
			out.OK = false
			r.emit(out, "%s reaches for %d gold to give %s, but comes up short.", actor.Name, amount, partner.Name)
			return
		}
		actor.Gold -= amount
		partner.Gold += amount
		out.OK = true
		r.emit(out, "%s gives %s %d gold.", actor.Name, partner.Name, amount)
		partner.ModifyRelationship(actor.ID, 5)
		return
	}

	it, ok := actor.RemoveItem(itemText)
	if !ok {
		out.OK = false
		r.emit(out, "%s wants to give %s away, but doesn't have it.", actor.Name, itemText)
		return
	}
	partner.AddItem(it)
	out.OK = true
	r.emit(out, "%s gives %s to %s.", actor.Name, it.DisplayName(), partner.Name)
	partner.ModifyRelationship(actor.ID, 5)
}
