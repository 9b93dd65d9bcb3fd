package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

func routedBoard(t *testing.T) (*network.Network, *network.Chip, *network.Chip) {
	t.Helper()
	n, err := board.Rectangular(2, 1, false, 2)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := n.Chip(hexgrid.Position{X: 0, Y: 0})
	b, _ := n.Chip(hexgrid.Position{X: 1, Y: 0})
	if err := n.MergeRoute(3, []network.NodeID{a.Cores[0], a.Router, b.Router, b.Cores[1]}); err != nil {
		t.Fatal(err)
	}
	return n, a, b
}

func TestRouteDOT(t *testing.T) {
	n, _, _ := routedBoard(t)
	dot, err := RouteDOT(n, 3)
	if err != nil {
		t.Fatalf("RouteDOT: %v", err)
	}
	for _, want := range []string{
		"digraph route_3 {",
		`label="(0, 0)", shape=box`,
		`label="(1, 0)", shape=box`,
		`label="(0, 0) core 0", shape=ellipse, fillcolor=`,
		`label="(1, 0) core 1", shape=ellipse]`,
		`[label="east"]`,
		`[label="core1"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("RouteDOT missing %q in:\n%s", want, dot)
		}
	}
	if got := strings.Count(dot, "->"); got != 3 {
		t.Errorf("RouteDOT has %d edges, want 3", got)
	}
}

func TestRouteDOTMissing(t *testing.T) {
	n, _, _ := routedBoard(t)
	if _, err := RouteDOT(n, 99); !errors.Is(err, ErrNoRoute) {
		t.Errorf("RouteDOT error = %v, want ErrNoRoute", err)
	}
}

func TestTopologyDOT(t *testing.T) {
	n, err := board.Rectangular(2, 2, false, 1)
	if err != nil {
		t.Fatal(err)
	}
	dot := TopologyDOT(n)
	if got := strings.Count(dot, "shape=hexagon"); got != 4 {
		t.Errorf("TopologyDOT has %d chips, want 4", got)
	}
	// 2x2 mesh: two east, one north-east and two north links.
	if got := strings.Count(dot, " -- "); got != 5 {
		t.Errorf("TopologyDOT has %d links, want 5", got)
	}
}

func TestRenderSVG(t *testing.T) {
	n, _, _ := routedBoard(t)
	dot, err := RouteDOT(n, 3)
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Errorf("RenderSVG output is not an SVG document: %.60q", out)
	}
	if !strings.Contains(out, "core 1") {
		t.Error("RenderSVG output should contain the sink label")
	}
}
