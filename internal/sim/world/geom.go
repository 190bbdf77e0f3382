package world

import "math"

// Vec2i is a tile coordinate on the grid map.
type Vec2i struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vec2i) Add(o Vec2i) Vec2i { return Vec2i{v.X + o.X, v.Y + o.Y} }

func (v Vec2i) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Dist is the Euclidean distance between two tiles. Adjacency including
// diagonals is dist <= 1.5.
func Dist(a, b Vec2i) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// StepToward reduces the offset from -> to into a single-step, axis-aligned
// vector: each component is normalized to its sign, and a diagonal collapses
// to the axis with the larger absolute displacement.
func StepToward(from, to Vec2i) Vec2i {
	dx := to.X - from.X
	dy := to.Y - from.Y
	step := Vec2i{sign(dx), sign(dy)}
	if step.X != 0 && step.Y != 0 {
		if abs(dx) > abs(dy) {
			step.Y = 0
		} else {
			step.X = 0
		}
	}
	return step
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
