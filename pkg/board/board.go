package board

import (
	"fmt"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

// forwardDirections are the links each chip wires itself; the other three are
// wired from the neighbouring chip.
var forwardDirections = [3]hexgrid.Direction{hexgrid.East, hexgrid.NorthEast, hexgrid.North}

// ConnectChips links every chip in n to its east, north-east and north
// neighbours when they exist. With wrap set, neighbour positions are reduced
// modulo [network.Network.Bounds].
func ConnectChips(n *network.Network, wrap bool) error {
	bounds := n.Bounds()
	for c := range n.Chips() {
		for _, d := range forwardDirections {
			next := c.Position.Step(d)
			if wrap {
				next = next.Wrap(bounds)
			}
			peer, ok := n.Chip(next)
			if !ok {
				continue
			}
			err := n.Connect(c.Router, network.ExternalPort(d), peer.Router, network.ExternalPort(d.Opposite()))
			if err != nil {
				return fmt.Errorf("connect %v %v: %w", c.Position, d, err)
			}
		}
	}
	return nil
}

// Rectangular builds a width x height grid of chips with the given number of
// cores each.
func Rectangular(width, height int, wrap bool, cores int) (*network.Network, error) {
	n := network.New()
	for y := range height {
		for x := range width {
			if _, err := n.AddChip(hexgrid.Position{X: x, Y: y}, hexgrid.Position{}, cores); err != nil {
				return nil, err
			}
		}
	}
	if err := ConnectChips(n, wrap); err != nil {
		return nil, err
	}
	return n, nil
}

// Hexagonal builds a single hexagonal board without wrap-around links. A
// board of l layers has 3*l*l chips.
func Hexagonal(layers, cores int) (*network.Network, error) {
	n := network.New()
	for p := range hexgrid.Hexagon(layers) {
		if _, err := n.AddChip(p, hexgrid.Position{}, cores); err != nil {
			return nil, err
		}
	}
	if err := ConnectChips(n, false); err != nil {
		return nil, err
	}
	return n, nil
}

// MultiBoardTorus builds a torus of width x height three-board units, each
// board a hexagon of the given number of layers. The torus spans
// 3*layers*width by 3*layers*height chips.
//
// Board (bx, by) is offset by (bx+by, 2*by-bx) board layers and positions are
// reduced modulo the torus size, which tiles the rectangle exactly.
func MultiBoardTorus(width, height, layers, cores int) (*network.Network, error) {
	n := network.New()
	size := hexgrid.Bounds{Width: 3 * layers * width, Height: 3 * layers * height}
	for b := range hexgrid.Threeboards(width, height) {
		board := hexgrid.Position{X: b.X, Y: b.Y}
		offset := hexgrid.Position{
			X: b.X*layers + b.Y*layers,
			Y: -b.X*layers + 2*b.Y*layers,
		}
		for p := range hexgrid.Hexagon(layers) {
			pos := hexgrid.Position{X: p.X + offset.X, Y: p.Y + offset.Y}.Wrap(size)
			if _, err := n.AddChip(pos, board, cores); err != nil {
				return nil, err
			}
		}
	}
	if err := ConnectChips(n, true); err != nil {
		return nil, err
	}
	return n, nil
}
