package world

// Location is a named rectangular area of the map.
type Location struct {
	Name        string
	Description string
	X, Y, W, H  int
}

func (l *Location) Contains(p Vec2i) bool {
	return p.X >= l.X && p.X < l.X+l.W && p.Y >= l.Y && p.Y < l.Y+l.H
}

func (l *Location) Center() Vec2i {
	return Vec2i{l.X + l.W/2, l.Y + l.H/2}
}
