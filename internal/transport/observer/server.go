// Package observer exposes a read-only view of the running simulation: a
// JSON state snapshot over plain HTTP and a live narrative event stream over
// websocket. It never mutates world state.
package observer

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"oakvale.ai/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// StateResponse is the bootstrap snapshot served to a connecting viewer.
type StateResponse struct {
	GameTime     string            `json:"game_time"`
	TimeOfDay    string            `json:"time_of_day"`
	Player       *CharacterState   `json:"player,omitempty"`
	Characters   []CharacterState  `json:"characters"`
	RecentEvents []string          `json:"recent_events"`
}

type CharacterState struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	Race     string `json:"race"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"max_hp"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

func (s *Server) characterState(c *world.Character) CharacterState {
	return CharacterState{
		ID:       c.ID,
		Name:     c.Name,
		Class:    string(c.Class),
		Race:     string(c.Race),
		HP:       c.HP,
		MaxHP:    c.MaxHP,
		X:        c.Pos.X,
		Y:        c.Pos.Y,
		Status:   string(c.Status),
		Location: s.world.LocationName(c.Pos),
	}
}

// StateHandler serves the current world snapshot. Loopback only.
func (s *Server) StateHandler(recentN int) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		resp := StateResponse{
			GameTime:     s.world.FormattedTime(),
			TimeOfDay:    s.world.TimeOfDay(),
			RecentEvents: s.world.Events.Recent(recentN),
		}
		if p := s.world.Player; p != nil {
			st := s.characterState(p)
			resp.Player = &st
		}
		for _, c := range s.world.NPCs() {
			resp.Characters = append(resp.Characters, s.characterState(c))
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades to websocket, replays the recent history, then streams
// every new narrative event as a JSON world.Event.
func (s *Server) WSHandler(backlogN int) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		s.log.Printf("observer %s connected from %s", sid, r.RemoteAddr)

		// Subscribe before the backlog replay so no event falls in the gap.
		// The viewer dedupes on seq.
		feed, unsubscribe := s.world.Events.Subscribe(256)
		defer unsubscribe()

		for _, text := range s.world.Events.Recent(backlogN) {
			b, _ := json.Marshal(world.Event{Text: text})
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}

		// Reader goroutine: the client sends nothing meaningful, but reads
		// are how we notice a dropped connection.
		readErr := make(chan error, 1)
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					readErr <- err
					return
				}
			}
		}()

		for {
			select {
			case err := <-readErr:
				s.log.Printf("observer %s disconnected: %v", sid, err)
				return
			case e, ok := <-feed:
				if !ok {
					return
				}
				b, err := json.Marshal(e)
				if err != nil {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					s.log.Printf("observer %s write failed: %v", sid, err)
					return
				}
			}
		}
	}
}

// Routes mounts the observer endpoints on a mux.
func (s *Server) Routes(mux *http.ServeMux, recentN int) {
	mux.HandleFunc("/observer/state", s.StateHandler(recentN))
	mux.HandleFunc("/observer/events", s.WSHandler(recentN))
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
