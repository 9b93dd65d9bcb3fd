package routing

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

func mustRect(t *testing.T, w, h int, wrap bool) *network.Network {
	t.Helper()
	n, err := board.Rectangular(w, h, wrap, 2)
	if err != nil {
		t.Fatalf("Rectangular: %v", err)
	}
	return n
}

func chipAt(t *testing.T, n *network.Network, x, y int) *network.Chip {
	t.Helper()
	c, ok := n.Chip(hexgrid.Position{X: x, Y: y})
	if !ok {
		t.Fatalf("no chip at (%d, %d)", x, y)
	}
	return c
}

func TestDimensionOrderPaths(t *testing.T) {
	n := mustRect(t, 3, 3, false)
	src := chipAt(t, n, 0, 0)
	r := func(x, y int) network.NodeID { return chipAt(t, n, x, y).Router }

	tests := []struct {
		name  string
		order Order
		sink  *network.Chip
		want  []network.NodeID
	}{
		{
			name:  "xyz",
			order: DefaultOrder,
			sink:  chipAt(t, n, 2, 1),
			want:  []network.NodeID{r(0, 0), r(1, 0), r(2, 1)},
		},
		{
			name:  "zyx",
			order: Order{hexgrid.AxisZ, hexgrid.AxisY, hexgrid.AxisX},
			sink:  chipAt(t, n, 2, 1),
			want:  []network.NodeID{r(0, 0), r(1, 1), r(2, 1)},
		},
		{
			name:  "straight north",
			order: DefaultOrder,
			sink:  chipAt(t, n, 0, 2),
			want:  []network.NodeID{r(0, 0), r(0, 1), r(0, 2)},
		},
		{
			name:  "same chip",
			order: DefaultOrder,
			sink:  src,
			want:  []network.NodeID{r(0, 0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := tt.sink.Cores[1]
			res, err := DimensionOrder(n, src.Cores[0], []network.NodeID{sink}, Options{Order: tt.order})
			if err != nil {
				t.Fatalf("DimensionOrder: %v", err)
			}
			if len(res.Unrouted) != 0 {
				t.Fatalf("unrouted sinks: %v", res.Unrouted)
			}
			want := append([]network.NodeID{src.Cores[0]}, tt.want...)
			want = append(want, sink)
			if diff := cmp.Diff([][]network.NodeID{want}, res.Paths); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDimensionOrderWrapAround(t *testing.T) {
	n := mustRect(t, 4, 4, true)
	src := chipAt(t, n, 0, 0)
	dst := chipAt(t, n, 3, 0)

	res, err := DimensionOrder(n, src.Cores[0], []network.NodeID{dst.Cores[0]}, Options{WrapAround: true})
	if err != nil {
		t.Fatalf("DimensionOrder: %v", err)
	}
	want := [][]network.NodeID{{src.Cores[0], src.Router, dst.Router, dst.Cores[0]}}
	if diff := cmp.Diff(want, res.Paths); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}

	// Without wrap-around the same sink takes the long way.
	res, err = DimensionOrder(n, src.Cores[0], []network.NodeID{dst.Cores[0]}, Options{})
	if err != nil {
		t.Fatalf("DimensionOrder: %v", err)
	}
	if got := len(res.Paths[0]); got != 6 {
		t.Errorf("unwrapped path has %d nodes, want 6", got)
	}
}

func TestRouteSmallTorusPorts(t *testing.T) {
	// On a 2x2 torus every pair of neighbouring chips shares two links.
	n := mustRect(t, 2, 2, true)
	src := chipAt(t, n, 0, 0)
	var sinks []network.NodeID
	for c := range n.Chips() {
		sinks = append(sinks, c.Cores[1])
	}
	unrouted, err := Route(n, DimensionOrder, 1, src.Cores[0], sinks, Options{WrapAround: true})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(unrouted) != 0 {
		t.Fatalf("unrouted sinks: %v", unrouted)
	}

	for r := range n.Routers() {
		e, _ := n.Entry(r, 1)
		for _, out := range e.Out {
			if !out.IsExternal() {
				continue
			}
			peer, _ := n.Neighbor(r, out)
			pe, ok := n.Entry(peer.Node, 1)
			if !ok || pe.In != peer.Port {
				t.Errorf("router %d sends on %v to router %d port %v, entry %+v", r, out, peer.Node, peer.Port, pe)
			}
		}
	}
}

func TestDimensionOrderMinimalOnTorus(t *testing.T) {
	n := mustRect(t, 5, 4, true)
	bounds := n.Bounds()
	var cores []network.NodeID
	for c := range n.Chips() {
		cores = append(cores, c.Cores[0])
	}
	for _, src := range cores {
		res, err := DimensionOrder(n, src, cores, Options{WrapAround: true})
		if err != nil {
			t.Fatalf("DimensionOrder: %v", err)
		}
		if len(res.Unrouted) != 0 {
			t.Fatalf("unrouted on a healthy torus: %v", res.Unrouted)
		}
		for _, p := range res.Paths {
			from, _ := n.Position(p[1])
			to, _ := n.Position(p[len(p)-2])
			hops := len(p) - 3
			if want := hexgrid.TorusShortestPath(from, to, bounds).Manhattan(); hops != want {
				t.Errorf("%v -> %v: %d hops, want %d", from, to, hops, want)
			}
			if !n.IsPathConnected(p) {
				t.Errorf("%v -> %v: path not connected", from, to)
			}
		}
	}
}

func TestDimensionOrderUnrouted(t *testing.T) {
	t.Run("missing chip", func(t *testing.T) {
		n := network.New()
		for _, p := range []hexgrid.Position{{X: 0}, {X: 2}, {X: 0, Y: 1}} {
			if _, err := n.AddChip(p, hexgrid.Position{}, 1); err != nil {
				t.Fatal(err)
			}
		}
		if err := board.ConnectChips(n, false); err != nil {
			t.Fatal(err)
		}
		src := chipAt(t, n, 0, 0).Cores[0]
		far := chipAt(t, n, 2, 0).Cores[0]
		near := chipAt(t, n, 0, 1).Cores[0]

		res, err := DimensionOrder(n, src, []network.NodeID{far, near}, Options{})
		if err != nil {
			t.Fatalf("DimensionOrder: %v", err)
		}
		if diff := cmp.Diff([]network.NodeID{far}, res.Unrouted); diff != "" {
			t.Errorf("unrouted mismatch (-want +got):\n%s", diff)
		}
		if len(res.Paths) != 1 {
			t.Errorf("got %d paths, want 1", len(res.Paths))
		}
	})

	t.Run("dead link", func(t *testing.T) {
		n := mustRect(t, 3, 1, false)
		a := chipAt(t, n, 0, 0)
		b := chipAt(t, n, 1, 0)
		if err := n.Disconnect(a.Router, network.ExternalPort(hexgrid.East)); err != nil {
			t.Fatal(err)
		}
		res, err := DimensionOrder(n, a.Cores[0], []network.NodeID{b.Cores[0]}, Options{})
		if err != nil {
			t.Fatalf("DimensionOrder: %v", err)
		}
		if diff := cmp.Diff([]network.NodeID{b.Cores[0]}, res.Unrouted); diff != "" {
			t.Errorf("unrouted mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDimensionOrderErrors(t *testing.T) {
	n := mustRect(t, 2, 2, false)
	c := chipAt(t, n, 0, 0)

	_, err := DimensionOrder(n, c.Cores[0], []network.NodeID{c.Cores[1]}, Options{Order: Order{hexgrid.AxisX, hexgrid.AxisX, hexgrid.AxisY}})
	if !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("bad order error = %v, want ErrInvalidOrder", err)
	}
	_, err = DimensionOrder(n, c.Router, []network.NodeID{c.Cores[1]}, Options{})
	if !errors.Is(err, ErrNotCore) {
		t.Errorf("router source error = %v, want ErrNotCore", err)
	}
	_, err = DimensionOrder(n, c.Cores[0], []network.NodeID{c.Router}, Options{})
	if !errors.Is(err, ErrNotCore) {
		t.Errorf("router sink error = %v, want ErrNotCore", err)
	}
}

func TestDeterministic(t *testing.T) {
	n := mustRect(t, 6, 6, true)
	src := chipAt(t, n, 1, 1).Cores[0]
	sinks := []network.NodeID{chipAt(t, n, 4, 4).Cores[0], chipAt(t, n, 5, 0).Cores[1]}
	first, _ := DimensionOrder(n, src, sinks, Options{WrapAround: true})
	for range 5 {
		again, _ := DimensionOrder(n, src, sinks, Options{WrapAround: true})
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("non-deterministic routing (-first +again):\n%s", diff)
		}
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", DefaultOrder, false},
		{"xyz", DefaultOrder, false},
		{"ZYX", Order{hexgrid.AxisZ, hexgrid.AxisY, hexgrid.AxisX}, false},
		{"yzx", Order{hexgrid.AxisY, hexgrid.AxisZ, hexgrid.AxisX}, false},
		{"xxy", Order{}, true},
		{"xy", Order{}, true},
		{"abc", Order{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrder(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOrder(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoute(t *testing.T) {
	n := mustRect(t, 3, 3, false)
	f, err := Lookup(AlgorithmDOR)
	if err != nil {
		t.Fatal(err)
	}
	src := chipAt(t, n, 0, 0).Cores[0]
	sinks := []network.NodeID{chipAt(t, n, 2, 2).Cores[0], chipAt(t, n, 2, 0).Cores[1]}
	unrouted, err := Route(n, f, 5, src, sinks, Options{})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(unrouted) != 0 {
		t.Errorf("unrouted: %v", unrouted)
	}
	routes, err := n.AllRoutes()
	if err != nil {
		t.Fatal(err)
	}
	if got := routes[5]; got.Source != src || len(got.Sinks) != 2 {
		t.Errorf("AllRoutes[5] = %+v", got)
	}

	if _, err := Lookup("adaptive"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("Lookup error = %v, want ErrUnknownAlgorithm", err)
	}
}
