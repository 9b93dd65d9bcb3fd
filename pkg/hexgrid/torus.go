package hexgrid

// ShortestPath returns the minimal displacement from src to dst on an
// unwrapped mesh.
func ShortestPath(src, dst Position) Vector3 {
	return dst.Sub(src).XYZ().Canonical()
}

// TorusShortestPath returns a minimal-Manhattan displacement from src to dst
// on a torus of the given bounds.
//
// The torus is re-centered so that the source sits at the bottom-left corner,
// the middle and the top-right corner in turn. Each re-centering reduces the
// problem to a mesh shortest path; the first strictly shortest candidate wins,
// so ties resolve in that order.
//
// Empty bounds have nothing to wrap around; the mesh [ShortestPath] is
// returned.
func TorusShortestPath(src, dst Position, b Bounds) Vector3 {
	if b.Empty() {
		return ShortestPath(src, dst)
	}
	centers := [3]Position{
		{0, 0},
		{b.Width / 2, b.Height / 2},
		{b.Width - 1, b.Height - 1},
	}

	var best Vector3
	bestLen := -1
	for _, c := range centers {
		t := Position{
			X: mod(dst.X-src.X+c.X, b.Width),
			Y: mod(dst.Y-src.Y+c.Y, b.Height),
		}
		path := ShortestPath(c, t)
		if l := path.Manhattan(); bestLen < 0 || l < bestLen {
			best, bestLen = path, l
		}
	}
	return best
}
