package hexgrid

import "iter"

// Hexagon yields the positions of a hexagonal board with the given number of
// layers, centred on (0, 0).
//
// Layer n (counting from zero) contributes 6n+3 positions, so Hexagon(l)
// yields 3*l*l positions in total. Each layer starts one step below-left of
// where the previous layer finished.
func Hexagon(layers int) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		var v Vector3
		for n := range max(layers, 0) {
			steps := [6]struct {
				delta Vector3
				count int
			}{
				{Vector3{0, -1, 0}, n},
				{Vector3{0, 0, 1}, n},
				{Vector3{-1, 0, 0}, n + 1},
				{Vector3{0, 1, 0}, n},
				{Vector3{0, 0, -1}, n + 1},
				{Vector3{1, 0, 0}, n + 1},
			}
			for _, s := range steps {
				for range s.count {
					if !yield(v.XY()) {
						return
					}
					v = v.Plus(s.delta)
				}
			}
		}
	}
}

// Threeboards yields the board origins for a width x height tiling of
// three-board units. Each unit places three hexagonal boards so that together
// they tile a torus without gaps.
func Threeboards(width, height int) iter.Seq[Vector3] {
	return func(yield func(Vector3) bool) {
		for y := range max(height, 0) {
			for x := range max(width, 0) {
				for z := range 3 {
					v := Vector3{
						X: 2*x - y + boolInt(z >= 2),
						Y: x + y + boolInt(z >= 1),
					}
					if !yield(v) {
						return
					}
				}
			}
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
