package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

// ErrNoRoute is returned by [RouteDOT] when no node of the network carries the key.
var ErrNoRoute = errors.New("render: route not found")

const dotHeader = `  bgcolor="transparent";
  node [fontname="SF Mono, Menlo, monospace", fontsize=12, style=filled, fillcolor=white];
  edge [fontname="SF Mono, Menlo, monospace", fontsize=10];
`

// RouteDOT returns a DOT digraph of the multicast tree for key.
//
// Routers are boxes labelled with their position, cores are ellipses labelled
// with position and core ID; the source core is filled. Each edge follows an
// outgoing port of a forwarding entry and is labelled with the port name.
func RouteDOT(n *network.Network, key network.RouteKey) (string, error) {
	routes, err := n.AllRoutes()
	if err != nil {
		return "", err
	}
	ends, hasEnds := routes[key]

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph route_%d {\n", key)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString(dotHeader)
	buf.WriteString("\n")

	found := false
	declared := make(map[network.NodeID]bool)
	declare := func(id network.NodeID) {
		if declared[id] {
			return
		}
		declared[id] = true
		writeNode(&buf, n, id, hasEnds && id == ends.Source)
	}

	for r := range n.Routers() {
		e, ok := n.Entry(r, key)
		if !ok {
			continue
		}
		found = true
		declare(r)
		if !e.In.IsExternal() {
			if src, ok := n.Neighbor(r, e.In); ok {
				declare(src.Node)
				fmt.Fprintf(&buf, "  n%d -> n%d;\n", src.Node, r)
			}
		}
		for _, out := range e.Out {
			peer, ok := n.Neighbor(r, out)
			if !ok {
				continue
			}
			declare(peer.Node)
			fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", r, peer.Node, out.String())
		}
	}
	if !found {
		return "", fmt.Errorf("%w: key %d", ErrNoRoute, key)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeNode(buf *bytes.Buffer, n *network.Network, id network.NodeID, source bool) {
	if n.IsRouter(id) {
		pos, _ := n.Position(id)
		fmt.Fprintf(buf, "  n%d [label=%q, shape=box];\n", id, pos.String())
		return
	}
	label := fmt.Sprintf("core %d", n.CoreID(id))
	if r, err := n.CoreToRouter(id); err == nil {
		pos, _ := n.Position(r)
		label = fmt.Sprintf("%v core %d", pos, n.CoreID(id))
	}
	if source {
		fmt.Fprintf(buf, "  n%d [label=%q, shape=ellipse, fillcolor=\"#cde8e6\"];\n", id, label)
		return
	}
	fmt.Fprintf(buf, "  n%d [label=%q, shape=ellipse];\n", id, label)
}

// TopologyDOT returns an undirected DOT graph of the chips of n and the links
// between them. Chips are pinned at their hexagonal layout coordinates so the
// graph renders with neato.
func TopologyDOT(n *network.Network) string {
	var buf bytes.Buffer
	buf.WriteString("graph topology {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString(dotHeader)
	buf.WriteString("\n")

	for c := range n.Chips() {
		x, y := layoutXY(c.Position)
		fmt.Fprintf(&buf, "  n%d [label=%q, shape=hexagon, pos=\"%.2f,%.2f!\"];\n",
			c.Router, c.Position.String(), x, y)
	}
	buf.WriteString("\n")
	for c := range n.Chips() {
		for _, d := range hexgrid.Directions[:3] {
			peer, ok := n.Neighbor(c.Router, network.ExternalPort(d))
			if !ok {
				continue
			}
			fmt.Fprintf(&buf, "  n%d -- n%d;\n", c.Router, peer.Node)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// layoutXY maps a chip position to cartesian inches: Y steps lean half a
// column to the left, matching the hexagonal axes.
func layoutXY(p hexgrid.Position) (float64, float64) {
	const spacing = 1.2
	x := float64(p.X) - float64(p.Y)/2
	y := float64(p.Y) * math.Sqrt(3) / 2
	return x * spacing, y * spacing
}
