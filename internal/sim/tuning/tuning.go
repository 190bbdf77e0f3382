package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries the operational knobs of the simulation. Zero values are
// replaced by defaults in ApplyDefaults, so a partial tuning.yaml is fine.
type Tuning struct {
	MapWidth  int `yaml:"map_width"`
	MapHeight int `yaml:"map_height"`

	VisibilityRange   int     `yaml:"visibility_range"`
	MaxHistoryItems   int     `yaml:"max_history_items"`
	HistoryWindow     int     `yaml:"history_window"`
	NPCActionEvery    int     `yaml:"npc_action_every"`
	TickIntervalMs    int     `yaml:"tick_interval_ms"`
	InteractionRadius float64 `yaml:"interaction_radius"`

	DefaultPrice int `yaml:"default_price"`

	Workers WorkerTuning `yaml:"workers"`
}

type WorkerTuning struct {
	PollIntervalMs  int `yaml:"poll_interval_ms"`
	SuspendFactor   int `yaml:"suspend_factor"`
	CommandBuffer   int `yaml:"command_buffer"`
	ResponseBuffer  int `yaml:"response_buffer"`
	OracleTimeoutMs int `yaml:"oracle_timeout_ms"`
	DialogTimeoutMs int `yaml:"dialog_timeout_ms"`
	JoinTimeoutMs   int `yaml:"join_timeout_ms"`
	MaxConcurrent   int `yaml:"max_concurrent"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

func Default() Tuning {
	var t Tuning
	t.ApplyDefaults()
	return t
}

func (t *Tuning) ApplyDefaults() {
	if t.MapWidth <= 0 {
		t.MapWidth = 30
	}
	if t.MapHeight <= 0 {
		t.MapHeight = 20
	}
	if t.VisibilityRange <= 0 {
		t.VisibilityRange = 5
	}
	if t.MaxHistoryItems <= 0 {
		t.MaxHistoryItems = 100
	}
	if t.HistoryWindow <= 0 {
		t.HistoryWindow = 10
	}
	if t.NPCActionEvery <= 0 {
		t.NPCActionEvery = 5
	}
	if t.TickIntervalMs <= 0 {
		t.TickIntervalMs = 100
	}
	if t.InteractionRadius <= 0 {
		t.InteractionRadius = 3.0
	}
	if t.DefaultPrice <= 0 {
		t.DefaultPrice = 10
	}
	if t.Workers.PollIntervalMs <= 0 {
		t.Workers.PollIntervalMs = 10
	}
	if t.Workers.SuspendFactor < 10 {
		t.Workers.SuspendFactor = 10
	}
	if t.Workers.CommandBuffer <= 0 {
		t.Workers.CommandBuffer = 16
	}
	if t.Workers.ResponseBuffer <= 0 {
		t.Workers.ResponseBuffer = 16
	}
	if t.Workers.OracleTimeoutMs <= 0 {
		t.Workers.OracleTimeoutMs = 30000
	}
	if t.Workers.DialogTimeoutMs <= 0 {
		t.Workers.DialogTimeoutMs = 5000
	}
	if t.Workers.JoinTimeoutMs <= 0 {
		t.Workers.JoinTimeoutMs = 1000
	}
	if t.Workers.MaxConcurrent <= 0 {
		t.Workers.MaxConcurrent = 8
	}
}
