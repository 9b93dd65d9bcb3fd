package hexgrid

import "fmt"

// =============================================================================
// Vector3
// =============================================================================

// Vector3 is a displacement in redundant cube coordinates.
type Vector3 struct {
	X, Y, Z int
}

// Add returns v moved one step in direction d.
func (v Vector3) Add(d Direction) Vector3 {
	return v.Plus(d.Vector())
}

// Plus returns the component-wise sum of v and o.
func (v Vector3) Plus(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Manhattan returns the sum of the absolute components of v.
func (v Vector3) Manhattan() int {
	return abs(v.X) + abs(v.Y) + abs(v.Z)
}

// Canonical returns the minimal form of v, obtained by subtracting the median
// component from every component. At least one component of the result is zero.
func (v Vector3) Canonical() Vector3 {
	m := Median(v.X, v.Y, v.Z)
	return Vector3{v.X - m, v.Y - m, v.Z - m}
}

// Component returns the value of v along axis a.
func (v Vector3) Component(a Axis) int {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return 0
}

// XY projects v onto the 2D chip grid.
func (v Vector3) XY() Position {
	return Position{X: v.X - v.Z, Y: v.Y - v.Z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}

// Median returns the middle value of a, b and c.
func Median(a, b, c int) int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

// =============================================================================
// Position
// =============================================================================

// Position is the 2D coordinate of a chip.
type Position struct {
	X, Y int
}

// XYZ lifts p into cube coordinates with a zero Z component.
func (p Position) XYZ() Vector3 {
	return Vector3{p.X, p.Y, 0}
}

// Step returns the neighbouring position in direction d.
func (p Position) Step(d Direction) Position {
	return p.XYZ().Add(d).XY()
}

// Move returns p displaced by v.
func (p Position) Move(v Vector3) Position {
	return p.XYZ().Plus(v).XY()
}

// Sub returns the 2D difference p - o.
func (p Position) Sub(o Position) Position {
	return Position{p.X - o.X, p.Y - o.Y}
}

// Wrap reduces p modulo the bounds so both coordinates are non-negative.
func (p Position) Wrap(b Bounds) Position {
	return Position{mod(p.X, b.Width), mod(p.Y, b.Height)}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Bounds is the size of a rectangular chip grid or torus.
type Bounds struct {
	Width, Height int
}

// Contains reports whether p lies inside the bounds.
func (b Bounds) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.Width && p.Y < b.Height
}

// Empty reports whether the bounds enclose no positions.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
