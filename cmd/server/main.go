package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"oakvale.ai/internal/engine"
	"oakvale.ai/internal/npc"
	"oakvale.ai/internal/oracle"
	"oakvale.ai/internal/persistence/indexdb"
	persistlog "oakvale.ai/internal/persistence/log"
	"oakvale.ai/internal/sim/resolve"
	"oakvale.ai/internal/sim/roster"
	"oakvale.ai/internal/sim/tuning"
	"oakvale.ai/internal/sim/world"
	"oakvale.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		model      = flag.String("model", "", "oracle model name (default: gemini-2.5-flash)")
		extraNPCs  = flag.Int("extra_npcs", 0, "random wanderers added to the demo roster")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "rng seed for action resolution and the npc factory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	w, err := roster.BuildOakvale(tune)
	if err != nil {
		logger.Fatalf("build world: %v", err)
	}
	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *extraNPCs; i++ {
		n := roster.RandomNPC(rng, "", "", "Oakvale Village")
		pos, ok := freeTile(w, rng, tune)
		if !ok {
			logger.Printf("no free tile for random npc %s", n.ID)
			continue
		}
		n.Pos = pos
		if err := w.AddCharacter(n); err != nil {
			logger.Printf("random npc: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)
	journal := persistlog.NewEventJournal(*dataDir)
	defer journal.Close()
	w.Events.Attach(journal)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		w.Events.Attach(idx)
	}

	factory := oracleFactory(*model, logger)

	sup := npc.NewSupervisor(factory, tune.Workers, logger)
	res := resolve.New(w, tune, rng, logger)
	eng := engine.New(w, sup, res, tune, logger)
	if idx != nil {
		eng.SetRecorder(idx)
	}
	eng.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("engine stopped: %v", err)
		}
		cancel()
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/move", moveHandler(eng))
	mux.HandleFunc("/v1/interact", interactHandler(eng))
	obs := observer.NewServer(w, logger)
	obs.Routes(mux, tune.HistoryWindow)

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Printf("listening on %s, roster %d characters", *addr, len(w.Roster()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http: %v", err)
	}
	eng.Stop()
}

// freeTile picks a random passable, unoccupied position.
func freeTile(w *world.World, rng *rand.Rand, tune tuning.Tuning) (world.Vec2i, bool) {
	for i := 0; i < 200; i++ {
		p := world.Vec2i{X: rng.Intn(tune.MapWidth), Y: rng.Intn(tune.MapHeight)}
		if w.Map.TerrainAt(p).Passable() && w.Map.CharacterAt(p) == nil {
			return p, true
		}
	}
	return world.Vec2i{}, false
}

// oracleFactory hands each worker a private oracle client. Without an API
// key the simulation still runs on canned decisions.
func oracleFactory(model string, logger *log.Logger) npc.OracleFactory {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		logger.Printf("GEMINI_API_KEY not set; NPCs run on the scripted oracle")
		return func(string) oracle.Oracle { return oracle.NewScripted() }
	}
	return func(agentID string) oracle.Oracle {
		g, err := oracle.NewGemini(context.Background(), apiKey, model, logger)
		if err != nil {
			logger.Printf("oracle client for %s: %v; falling back to scripted", agentID, err)
			return oracle.NewScripted()
		}
		return g
	}
}

type moveRequest struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

func moveHandler(eng *engine.Engine) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req moveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(rw, "bad request", http.StatusBadRequest)
			return
		}
		if req.DX < -1 || req.DX > 1 || req.DY < -1 || req.DY > 1 || (req.DX == 0 && req.DY == 0) {
			http.Error(rw, "step must be one tile", http.StatusBadRequest)
			return
		}
		ok := eng.MovePlayer(req.DX, req.DY)
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": ok, "turn": eng.Turns()})
	}
}

type interactRequest struct {
	NPCID   string `json:"npc_id"`
	Message string `json:"message"`
}

func interactHandler(eng *engine.Engine) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req interactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(rw, "bad request", http.StatusBadRequest)
			return
		}
		if req.NPCID == "" {
			http.Error(rw, "npc_id required", http.StatusBadRequest)
			return
		}
		reply := eng.InteractWithNPC(req.NPCID, req.Message)
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"reply": reply, "turn": eng.Turns()})
	}
}
