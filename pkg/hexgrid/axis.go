package hexgrid

import "fmt"

// Axis is one of the three cube-coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the three axes in X, Y, Z order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// Unit returns the cube-coordinate unit vector along a.
func (a Axis) Unit() Vector3 {
	switch a {
	case AxisX:
		return Vector3{1, 0, 0}
	case AxisY:
		return Vector3{0, 1, 0}
	case AxisZ:
		return Vector3{0, 0, 1}
	}
	return Vector3{}
}

// Direction returns the link followed when stepping along a in the positive
// (positive=true) or negative sense.
func (a Axis) Direction(positive bool) Direction {
	switch a {
	case AxisX:
		if positive {
			return East
		}
		return West
	case AxisY:
		if positive {
			return North
		}
		return South
	default:
		if positive {
			return SouthWest
		}
		return NorthEast
	}
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}
