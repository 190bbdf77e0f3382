// Demo runner: plays a short scripted session against the Oakvale roster
// without any oracle credentials, printing the narrative as it unfolds.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"oakvale.ai/internal/engine"
	"oakvale.ai/internal/npc"
	"oakvale.ai/internal/oracle"
	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/resolve"
	"oakvale.ai/internal/sim/roster"
	"oakvale.ai/internal/sim/tuning"
)

func main() {
	var (
		turns = flag.Int("turns", 30, "player turns to simulate")
		seed  = flag.Int64("seed", 1337, "rng seed")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	tune := tuning.Default()
	tune.NPCActionEvery = 3
	tune.Workers.PollIntervalMs = 1

	w, err := roster.BuildOakvale(tune)
	if err != nil {
		logger.Fatalf("build world: %v", err)
	}

	s := oracle.NewScripted()
	s.DialogLine = "Welcome to Oakvale, traveler."
	s.Script("tavernkeeper_01",
		protocol.Decision{Action: "work", Target: "the bar"},
		protocol.Decision{Action: "talk", Target: "Durgan"},
	)
	s.Script("blacksmith_01",
		protocol.Decision{Action: "forge", Target: "a new sword"},
	)
	s.Script("troll_brigand_01",
		protocol.Decision{Action: "move", Target: "west"},
		protocol.Decision{Action: "threaten", Target: "the stranger"},
	)

	rng := rand.New(rand.NewSource(*seed))
	sup := npc.NewSupervisor(func(string) oracle.Oracle { return s }, tune.Workers, logger)
	res := resolve.New(w, tune, rng, logger)
	eng := engine.New(w, sup, res, tune, logger)
	eng.Start()
	defer eng.Stop()

	steps := [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	seen := 0
	for i := 0; i < *turns && !eng.GameOver(); i++ {
		step := steps[rng.Intn(len(steps))]
		eng.MovePlayer(step[0], step[1])

		// Give the workers a moment, then resolve whatever is ready.
		time.Sleep(10 * time.Millisecond)
		eng.Tick()

		recent := w.Events.Recent(tune.MaxHistoryItems)
		if seen > len(recent) {
			seen = len(recent)
		}
		for _, line := range recent[seen:] {
			fmt.Println("  " + line)
		}
		seen = len(recent)
	}

	if reply := eng.InteractWithNPC("tavernkeeper_01", "Any rooms free tonight?"); reply != "" {
		fmt.Printf("  Goren replies: %q\n", reply)
	}
	logger.Printf("done after %d turns at %s", eng.Turns(), w.FormattedTime())
}
