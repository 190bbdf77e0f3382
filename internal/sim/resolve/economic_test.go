package resolve

import (
	"testing"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

func TestParseGoldAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"50 gold", 50},
		{"50 gold coins", 50},
		{"five coins", 5},
		{"a gold coin", 1},
		{"twenty gold, for the trouble!", 20},
		{"gold", 1},
		{"3 gold or three gold", 3}, // digits beat words
	}
	for _, tc := range cases {
		if got := parseGoldAmount(tc.in); got != tc.want {
			t.Fatalf("parseGoldAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSplitTradeTarget(t *testing.T) {
	cases := []struct {
		in, item, partner string
	}{
		{"bread from Goren", "bread", "Goren"},
		{"50 gold to the guard", "50 gold", "the guard"},
		{"a sword with Durgan", "a sword", "Durgan"},
		{"bread", "bread", ""},
	}
	for _, tc := range cases {
		item, partner := splitTradeTarget(tc.in)
		if item != tc.item || partner != tc.partner {
			t.Fatalf("splitTradeTarget(%q) = (%q, %q), want (%q, %q)", tc.in, item, partner, tc.item, tc.partner)
		}
	}
}

func TestBuy_AtomicExchange(t *testing.T) {
	w := testWorld(t)
	buyer := addChar(t, w, "b", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	seller := addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 6, Y: 5})
	buyer.Gold = 15
	seller.Gold = 100
	seller.AddItem(world.NamedItem("bread"))
	r := newResolver(w, lowRoll())

	out := r.Apply(buyer, protocol.Decision{Action: "buy", Target: "bread from Goren"})
	if !out.OK {
		t.Fatalf("buy failed: %+v", out)
	}
	if buyer.Gold != 5 || seller.Gold != 110 {
		t.Fatalf("gold after trade: buyer %d seller %d", buyer.Gold, seller.Gold)
	}
	if _, ok := buyer.FindItem("bread"); !ok {
		t.Fatal("buyer did not receive the bread")
	}
	if _, ok := seller.FindItem("bread"); ok {
		t.Fatal("seller kept the bread")
	}
}

func TestBuy_InsufficientGoldChangesNothing(t *testing.T) {
	w := testWorld(t)
	buyer := addChar(t, w, "b", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	seller := addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 6, Y: 5})
	buyer.Gold = 3
	seller.AddItem(world.NamedItem("bread"))
	r := newResolver(w, lowRoll())

	out := r.Apply(buyer, protocol.Decision{Action: "buy", Target: "bread from Goren"})
	if out.OK {
		t.Fatal("buy should fail without funds")
	}
	if buyer.Gold != 3 {
		t.Fatalf("buyer gold changed: %d", buyer.Gold)
	}
	if _, ok := seller.FindItem("bread"); !ok {
		t.Fatal("seller lost the bread on a failed trade")
	}
}

func TestBuy_SellerLacksItem(t *testing.T) {
	w := testWorld(t)
	buyer := addChar(t, w, "b", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 6, Y: 5})
	buyer.Gold = 50
	r := newResolver(w, lowRoll())

	out := r.Apply(buyer, protocol.Decision{Action: "buy", Target: "dragon scale from Goren"})
	if out.OK {
		t.Fatal("buying a missing item should fail")
	}
	if buyer.Gold != 50 {
		t.Fatalf("buyer gold changed: %d", buyer.Gold)
	}
}

func TestSell_MirrorsBuy(t *testing.T) {
	w := testWorld(t)
	seller := addChar(t, w, "s", "Durgan", world.ClassMerchant, world.Vec2i{X: 5, Y: 5})
	buyer := addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 6, Y: 5})
	seller.AddItem(world.NamedItem("sword"))
	buyer.Gold = 50
	r := newResolver(w, lowRoll())

	out := r.Apply(seller, protocol.Decision{Action: "sell", Target: "sword to Goren"})
	if !out.OK {
		t.Fatalf("sell failed: %+v", out)
	}
	if _, ok := buyer.FindItem("sword"); !ok {
		t.Fatal("buyer did not receive the sword")
	}
	if seller.Gold != 10 {
		t.Fatalf("seller gold = %d, want 10", seller.Gold)
	}
}

func TestGive_GoldAmountParsed(t *testing.T) {
	w := testWorld(t)
	giver := addChar(t, w, "p", "Ish", world.ClassWarrior, world.Vec2i{X: 5, Y: 5})
	guard := addChar(t, w, "k", "Karim", world.ClassGuard, world.Vec2i{X: 6, Y: 5})
	giver.Gold = 100
	r := newResolver(w, lowRoll())

	out := r.Apply(giver, protocol.Decision{Action: "give", Target: "50 gold to the guard"})
	if !out.OK {
		t.Fatalf("give failed: %+v", out)
	}
	if giver.Gold != 50 || guard.Gold != 50 {
		t.Fatalf("gold after gift: giver %d guard %d", giver.Gold, guard.Gold)
	}
	if guard.Relationship(giver.ID) != 5 {
		t.Fatalf("gift did not improve relationship: %d", guard.Relationship(giver.ID))
	}
}

func TestGive_ShortOnGoldFails(t *testing.T) {
	w := testWorld(t)
	giver := addChar(t, w, "p", "Ish", world.ClassWarrior, world.Vec2i{X: 5, Y: 5})
	guard := addChar(t, w, "k", "Karim", world.ClassGuard, world.Vec2i{X: 6, Y: 5})
	giver.Gold = 10
	r := newResolver(w, lowRoll())

	out := r.Apply(giver, protocol.Decision{Action: "give", Target: "50 gold to the guard"})
	if out.OK {
		t.Fatal("gift beyond means should fail")
	}
	if giver.Gold != 10 || guard.Gold != 0 {
		t.Fatalf("gold moved on failed gift: giver %d guard %d", giver.Gold, guard.Gold)
	}
}

func TestGive_Item(t *testing.T) {
	w := testWorld(t)
	giver := addChar(t, w, "p", "Ish", world.ClassWarrior, world.Vec2i{X: 5, Y: 5})
	guard := addChar(t, w, "k", "Karim", world.ClassGuard, world.Vec2i{X: 6, Y: 5})
	giver.AddItem(world.NamedItem("apple"))
	r := newResolver(w, lowRoll())

	out := r.Apply(giver, protocol.Decision{Action: "give", Target: "apple to Karim"})
	if !out.OK {
		t.Fatalf("give failed: %+v", out)
	}
	if _, ok := guard.FindItem("apple"); !ok {
		t.Fatal("guard did not receive the apple")
	}
	if _, ok := giver.FindItem("apple"); ok {
		t.Fatal("giver kept the apple")
	}
}

func TestEconomic_NoPartnerNearby(t *testing.T) {
	w := testWorld(t)
	buyer := addChar(t, w, "b", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 25, Y: 15})
	buyer.Gold = 50
	r := newResolver(w, lowRoll())

	// No partner named and none within interaction range.
	out := r.Apply(buyer, protocol.Decision{Action: "buy", Target: "bread"})
	if out.OK {
		t.Fatal("trade with nobody near should fail")
	}
}

func TestEconomic_DistantNamedPartnerApproaches(t *testing.T) {
	w := testWorld(t)
	buyer := addChar(t, w, "b", "Aldric", world.ClassVillager, world.Vec2i{X: 5, Y: 5})
	addChar(t, w, "g", "Goren", world.ClassMerchant, world.Vec2i{X: 15, Y: 5})
	r := newResolver(w, lowRoll())

	out := r.Apply(buyer, protocol.Decision{Action: "buy", Target: "bread from Goren"})
	if !out.OK {
		t.Fatalf("approach should succeed: %+v", out)
	}
	if buyer.Pos != (world.Vec2i{X: 6, Y: 5}) {
		t.Fatalf("buyer at %v, want one step east", buyer.Pos)
	}
}
