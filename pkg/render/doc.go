// Package render draws networks and route trees as Graphviz diagrams.
//
// [RouteDOT] emits the multicast tree of a single route key: the source core,
// every router holding an entry for the key and every sink core, with edges
// labelled by the outgoing port. [TopologyDOT] emits the chip-level link graph
// with chips pinned to their hexagonal coordinates, suitable for neato.
//
// [RenderSVG] renders any DOT source to SVG using the embedded Graphviz
// library (github.com/goccy/go-graphviz).
//
//	dot, err := render.RouteDOT(n, 42)
//	if err != nil {
//		return err
//	}
//	svg, err := render.RenderSVG(ctx, dot)
package render
