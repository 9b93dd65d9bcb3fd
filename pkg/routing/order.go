package routing

import (
	"fmt"
	"strings"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
)

// Order is the sequence in which [DimensionOrder] exhausts the three axes.
// It must be a permutation of X, Y and Z.
type Order [3]hexgrid.Axis

// DefaultOrder routes along X, then Y, then Z.
var DefaultOrder = Order{hexgrid.AxisX, hexgrid.AxisY, hexgrid.AxisZ}

// ParseOrder parses a permutation written as three axis letters, such as "xyz"
// or "zyx". The empty string yields [DefaultOrder].
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return DefaultOrder, nil
	}
	if len(s) != 3 {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
	var o Order
	for i, r := range strings.ToLower(s) {
		switch r {
		case 'x':
			o[i] = hexgrid.AxisX
		case 'y':
			o[i] = hexgrid.AxisY
		case 'z':
			o[i] = hexgrid.AxisZ
		default:
			return Order{}, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
		}
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Validate reports whether o names every axis exactly once.
func (o Order) Validate() error {
	var seen [3]bool
	for _, a := range o {
		if a < hexgrid.AxisX || a > hexgrid.AxisZ || seen[a] {
			return fmt.Errorf("%w: %v", ErrInvalidOrder, o)
		}
		seen[a] = true
	}
	return nil
}

func (o Order) String() string {
	return o[0].String() + o[1].String() + o[2].String()
}
