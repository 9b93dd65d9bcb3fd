package hexgrid

import "fmt"

// Direction identifies one of the six links leaving a chip.
type Direction int

const (
	East Direction = iota
	NorthEast
	North
	West
	SouthWest
	South
)

// NumDirections is the number of links per chip.
const NumDirections = 6

// Directions lists every direction in enumeration order.
var Directions = [NumDirections]Direction{East, NorthEast, North, West, SouthWest, South}

var directionNames = [NumDirections]string{"east", "north_east", "north", "west", "south_west", "south"}

// Valid reports whether d is one of the six directions.
func (d Direction) Valid() bool {
	return d >= 0 && d < NumDirections
}

// Opposite returns the direction pointing back along the same link.
func (d Direction) Opposite() Direction {
	return Direction(mod(int(d)+3, NumDirections))
}

// NextCCW returns the next direction counter-clockwise.
func (d Direction) NextCCW() Direction {
	return Direction(mod(int(d)+1, NumDirections))
}

// NextCW returns the next direction clockwise.
func (d Direction) NextCW() Direction {
	return Direction(mod(int(d)-1, NumDirections))
}

// Vector returns the unit displacement for d.
func (d Direction) Vector() Vector3 {
	switch d {
	case East:
		return Vector3{1, 0, 0}
	case West:
		return Vector3{-1, 0, 0}
	case North:
		return Vector3{0, 1, 0}
	case South:
		return Vector3{0, -1, 0}
	case NorthEast:
		return Vector3{0, 0, -1}
	case SouthWest:
		return Vector3{0, 0, 1}
	}
	return Vector3{}
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection converts a name produced by [Direction.String] back into a Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("hexgrid: unknown direction %q", s)
}

// mod returns the non-negative remainder of a divided by n.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
