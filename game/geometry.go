package game

import "math"

// Vec2 is a point or a displacement in world units. Y grows upwards.
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2    { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Mirror(d Direction) Vec2 { return Vec2{X: v.X * float64(d.Sign()), Y: v.Y} }

// Unit returns v scaled to length 1, or straight up when v has no length.
func (v Vec2) Unit() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{X: 0, Y: 1}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Circle is the only collision shape. Position is relative to its owner.
type Circle struct {
	Radius   float64 `json:"radius" msgpack:"radius"`
	Position Vec2    `json:"position" msgpack:"position"`
}

// At places the circle in the world for an owner standing at origin and facing d.
func (c Circle) At(origin Vec2, d Direction) Circle {
	return Circle{Radius: c.Radius, Position: origin.Add(c.Position.Mirror(d))}
}

// Overlaps reports whether two world-placed circles touch.
func (c Circle) Overlaps(o Circle) bool {
	return c.Position.Sub(o.Position).Len() <= c.Radius+o.Radius
}
