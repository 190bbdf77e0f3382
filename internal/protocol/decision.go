package protocol

import (
	"encoding/json"
	"strings"
)

// Decision is the structured output of the decision oracle for one agent
// turn. It is immutable once produced; the resolver re-validates everything
// against live world state before applying any mutation.
type Decision struct {
	AgentID    string `json:"agent_id,omitempty"`
	Action     string `json:"action"`
	Target     string `json:"target"`
	Dialog     string `json:"dialog,omitempty"`
	Thoughts   string `json:"thoughts,omitempty"`
	Emotion    string `json:"emotion,omitempty"`
	GoalUpdate string `json:"goal_update,omitempty"`
}

// WorldView is the read-only snapshot of surroundings passed into a decision
// request. It is rebuilt for every request and never shared across them.
type WorldView struct {
	VisibleArea  string   `json:"visible_area"`
	Location     string   `json:"location"`
	TimeOfDay    string   `json:"time_of_day"`
	RecentEvents []string `json:"recent_events"`

	// Filled in by the worker from the shared broadcast store.
	GameTime       string `json:"game_time,omitempty"`
	PlayerPosition string `json:"player_position,omitempty"`
}

// FallbackDecision is what a worker reports when its oracle fails. The
// simulation keeps moving on a shrug instead of surfacing the error.
func FallbackDecision(agentID string) Decision {
	return Decision{
		AgentID:  agentID,
		Action:   "wait",
		Target:   "patiently",
		Thoughts: "I'm a bit confused right now.",
		Emotion:  "confused",
	}
}

// FallbackDialog is the canned line used when dialog generation fails or
// times out.
const FallbackDialog = "Hmm... Let me think about that."

// DecodeDecision parses an oracle reply leniently. Raw may be a bare JSON
// object or free text with an embedded one. Missing fields decode to empty
// strings; a reply with no recognizable action defaults to "wait". The
// returned bool reports whether any JSON object was found at all.
func DecodeDecision(raw string) (Decision, bool) {
	var d Decision
	obj, ok := extractObject(raw)
	if ok {
		// Field-level tolerance: ignore unknown keys, accept partial objects.
		_ = json.Unmarshal([]byte(obj), &d)
	}
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	if d.Action == "" {
		d.Action = "wait"
	}
	d.Target = strings.TrimSpace(d.Target)
	d.Dialog = StripQuotes(d.Dialog)
	return d, ok
}

// extractObject finds the outermost {...} span in free text. Oracles wrap
// replies in prose or code fences often enough that this is the common case.
func extractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// StripQuotes removes a single pair of wrapping quote characters, if present.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
