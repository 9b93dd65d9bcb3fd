package board

import (
	"testing"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

// externalLinks counts the connected external ports of a router.
func externalLinks(n *network.Network, r network.NodeID) int {
	count := 0
	for _, d := range hexgrid.Directions {
		if _, ok := n.Neighbor(r, network.ExternalPort(d)); ok {
			count++
		}
	}
	return count
}

// checkNeighbours verifies that every external link reaches the chip one step
// away in that direction, arriving on the opposite port.
func checkNeighbours(t *testing.T, n *network.Network, wrap bool) {
	t.Helper()
	bounds := n.Bounds()
	for c := range n.Chips() {
		for _, d := range hexgrid.Directions {
			ep, ok := n.Neighbor(c.Router, network.ExternalPort(d))
			if !ok {
				continue
			}
			want := c.Position.Step(d)
			if wrap {
				want = want.Wrap(bounds)
			}
			got, _ := n.Position(ep.Node)
			if got != want {
				t.Fatalf("chip %v %v reaches %v, want %v", c.Position, d, got, want)
			}
			if ep.Port != network.ExternalPort(d.Opposite()) {
				t.Fatalf("chip %v %v arrives on %v, want %v", c.Position, d, ep.Port, d.Opposite())
			}
		}
	}
}

func TestRectangular(t *testing.T) {
	n, err := Rectangular(3, 3, false, 2)
	if err != nil {
		t.Fatalf("Rectangular: %v", err)
	}
	if got := n.NumChips(); got != 9 {
		t.Fatalf("NumChips = %d, want 9", got)
	}
	checkNeighbours(t, n, false)

	tests := []struct {
		pos  hexgrid.Position
		want int
	}{
		{hexgrid.Position{X: 1, Y: 1}, 6},
		{hexgrid.Position{X: 0, Y: 0}, 3},
		{hexgrid.Position{X: 2, Y: 2}, 3},
		{hexgrid.Position{X: 2, Y: 0}, 2},
		{hexgrid.Position{X: 1, Y: 0}, 4},
	}
	for _, tt := range tests {
		r, _ := n.RouterAt(tt.pos)
		if got := externalLinks(n, r); got != tt.want {
			t.Errorf("chip %v has %d links, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestRectangularWrapped(t *testing.T) {
	for _, size := range []hexgrid.Bounds{{Width: 1, Height: 1}, {Width: 2, Height: 3}, {Width: 4, Height: 4}} {
		n, err := Rectangular(size.Width, size.Height, true, 1)
		if err != nil {
			t.Fatalf("Rectangular(%v): %v", size, err)
		}
		checkNeighbours(t, n, true)
		for r := range n.Routers() {
			if got := externalLinks(n, r); got != 6 {
				pos, _ := n.Position(r)
				t.Errorf("%v: chip %v has %d links, want 6", size, pos, got)
			}
		}
	}
}

func TestHexagonal(t *testing.T) {
	n, err := Hexagonal(4, 1)
	if err != nil {
		t.Fatalf("Hexagonal: %v", err)
	}
	if got := n.NumChips(); got != 48 {
		t.Fatalf("NumChips = %d, want 48", got)
	}
	checkNeighbours(t, n, false)
	r, _ := n.RouterAt(hexgrid.Position{})
	if got := externalLinks(n, r); got != 6 {
		t.Errorf("centre chip has %d links, want 6", got)
	}
}

func TestMultiBoardTorus(t *testing.T) {
	tests := []struct {
		width, height, layers int
	}{
		{1, 1, 4},
		{2, 1, 4},
		{1, 2, 2},
		{2, 2, 1},
		{1, 1, 3},
	}
	for _, tt := range tests {
		n, err := MultiBoardTorus(tt.width, tt.height, tt.layers, 1)
		if err != nil {
			t.Fatalf("MultiBoardTorus(%d, %d, %d): %v", tt.width, tt.height, tt.layers, err)
		}
		w, h := 3*tt.layers*tt.width, 3*tt.layers*tt.height
		if got := n.NumChips(); got != w*h {
			t.Fatalf("NumChips = %d, want %d", got, w*h)
		}
		if got := n.Bounds(); got != (hexgrid.Bounds{Width: w, Height: h}) {
			t.Fatalf("Bounds = %v, want %dx%d", got, w, h)
		}
		checkNeighbours(t, n, true)
		for r := range n.Routers() {
			if got := externalLinks(n, r); got != 6 {
				pos, _ := n.Position(r)
				t.Fatalf("chip %v has %d links, want 6", pos, got)
			}
		}
	}
}

func TestMultiBoardTorusBoards(t *testing.T) {
	n, err := MultiBoardTorus(1, 1, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	perBoard := make(map[hexgrid.Position]int)
	for c := range n.Chips() {
		perBoard[c.Board]++
	}
	if len(perBoard) != 3 {
		t.Fatalf("got %d boards, want 3", len(perBoard))
	}
	for b, count := range perBoard {
		if count != 48 {
			t.Errorf("board %v has %d chips, want 48", b, count)
		}
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		chips   int
		wantErr bool
	}{
		{"defaults", Spec{}, 4, false},
		{"rectangular", Spec{Kind: KindRectangular, Width: 5, Height: 3, Cores: 1}, 15, false},
		{"hexagonal", Spec{Kind: KindHexagonal, Layers: 2, Cores: 1}, 12, false},
		{"torus", Spec{Kind: KindTorus, Width: 1, Height: 1, Layers: 2, Cores: 1}, 36, false},
		{"unknown kind", Spec{Kind: "triangle"}, 0, true},
		{"too many cores", Spec{Cores: 19}, 0, true},
		{"negative width", Spec{Width: -1}, 0, true},
		{"wrapped hexagon", Spec{Kind: KindHexagonal, WrapAround: true}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Build(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && n.NumChips() != tt.chips {
				t.Errorf("NumChips = %d, want %d", n.NumChips(), tt.chips)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{Spec{Kind: KindRectangular, Width: 2, Height: 3}, "rectangular 2x3"},
		{Spec{Kind: KindRectangular, Width: 2, Height: 3, WrapAround: true}, "rectangular 2x3 (wrapped)"},
		{Spec{Kind: KindHexagonal, Layers: 4}, "hexagonal (4 layers)"},
		{Spec{Kind: KindTorus, Width: 1, Height: 2, Layers: 4}, "torus 1x2 (4 layers)"},
	}
	for _, tt := range tests {
		if got := tt.spec.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
