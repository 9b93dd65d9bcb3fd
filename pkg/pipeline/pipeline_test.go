package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/cache"
	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/routing"
	"github.com/matzehuels/hexroute/pkg/table"
	"github.com/matzehuels/hexroute/pkg/traffic"
)

// lineRoute sends key 1 from core 0 of (0,0) to core 1 of (1,0).
const lineRoute = `{"routes":[{"key":1,"source":{"x":0,"y":0,"core":0},"sinks":[{"x":1,"y":0,"core":1}]}]}`

func lineOptions() Options {
	return Options{
		Board:     board.Spec{Kind: board.KindRectangular, Width: 2, Height: 1, Cores: 2},
		RouteFile: []byte(lineRoute),
		Formats:   []table.Format{table.FormatLoader, table.FormatRuntime},
		Workers:   2,
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []table.Format
		wantErr bool
	}{
		{"loader", []table.Format{table.FormatLoader}, false},
		{"both", []table.Format{table.FormatLoader, table.FormatRuntime}, false},
		{"empty", nil, false},
		{"unknown", []table.Format{"ybug"}, true},
		{"repeated", []table.Format{table.FormatRuntime, table.FormatRuntime}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"runtime", " Loader"})
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	want := []table.Format{table.FormatRuntime, table.FormatLoader}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFormats mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseFormats([]string{"svg"}); err == nil {
		t.Error("ParseFormats(svg) should fail")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Algorithm != DefaultAlgorithm {
		t.Errorf("Algorithm = %q, want %q", opts.Algorithm, DefaultAlgorithm)
	}
	if opts.Order != "xyz" {
		t.Errorf("Order = %q, want xyz", opts.Order)
	}
	if opts.Probability != traffic.DefaultProbability {
		t.Errorf("Probability = %v", opts.Probability)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d", opts.Seed)
	}
	if diff := cmp.Diff(DefaultFormats, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Workers < 1 {
		t.Errorf("Workers = %d, want positive", opts.Workers)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if opts.Board.Kind != board.KindRectangular {
		t.Errorf("Board.Kind = %q", opts.Board.Kind)
	}
	if got := opts.RoutingOptions(); got.Order != routing.DefaultOrder {
		t.Errorf("RoutingOptions().Order = %v", got.Order)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad board", Options{Board: board.Spec{Kind: "cube"}}},
		{"bad algorithm", Options{Algorithm: "adaptive"}},
		{"bad order", Options{Order: "xxy"}},
		{"bad probability", Options{Probability: 1.5}},
		{"bad format", Options{Formats: []table.Format{"hex"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected an error")
			}
		})
	}
	var orderErr Options
	orderErr.Order = "xyx"
	if err := orderErr.ValidateAndSetDefaults(); !errors.Is(err, routing.ErrInvalidOrder) {
		t.Errorf("order error = %v, want ErrInvalidOrder", err)
	}
}

func TestExecuteRouteFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), lineOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if res.Stats.Chips != 2 || res.Stats.Routes != 1 || res.Stats.Sinks != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Unrouted) != 0 {
		t.Errorf("Unrouted = %v, want none", res.Unrouted)
	}
	if res.Stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", res.Stats.Entries)
	}

	tests := []struct {
		pos   hexgrid.Position
		route uint32
	}{
		{hexgrid.Position{X: 0, Y: 0}, 1 << 0},       // east link
		{hexgrid.Position{X: 1, Y: 0}, 1 << (6 + 1)}, // core 1
	}
	for _, tt := range tests {
		want := []table.Row{{Key: 1, Mask: table.ExactMask, Route: tt.route}}
		for _, f := range table.Formats {
			data := res.Tables[tt.pos][f]
			rows, err := table.Decode(f, data)
			if err != nil {
				t.Fatalf("%s %s: %v", tt.pos, f, err)
			}
			if diff := cmp.Diff(want, rows); diff != "" {
				t.Errorf("%s %s rows mismatch (-want +got):\n%s", tt.pos, f, diff)
			}
		}
		if n := len(res.Tables[tt.pos][table.FormatLoader]); n != 2*table.LoaderRowSize {
			t.Errorf("%s loader size = %d, want %d", tt.pos, n, 2*table.LoaderRowSize)
		}
	}
}

func TestRouteReportsUnrouted(t *testing.T) {
	// (1,0) has no chip, so the eastbound hop towards (2,0) fails.
	n := network.New()
	for _, p := range []hexgrid.Position{{X: 0}, {X: 2}, {X: 0, Y: 1}} {
		if _, err := n.AddChip(p, hexgrid.Position{}, 1); err != nil {
			t.Fatal(err)
		}
	}
	if err := board.ConnectChips(n, false); err != nil {
		t.Fatal(err)
	}
	core := func(x, y int) network.NodeID {
		chip, ok := n.Chip(hexgrid.Position{X: x, Y: y})
		if !ok {
			t.Fatalf("no chip at (%d, %d)", x, y)
		}
		return chip.Cores[0]
	}
	far, near := core(2, 0), core(0, 1)

	specs := []traffic.Spec{{Key: 3, Source: core(0, 0), Sinks: []network.NodeID{far, near}}}
	unrouted, err := Route(n, specs, Options{})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	want := map[network.RouteKey][]network.NodeID{3: {far}}
	if diff := cmp.Diff(want, unrouted); diff != "" {
		t.Errorf("unrouted mismatch (-want +got):\n%s", diff)
	}
	if got := n.Sinks(near); len(got) != 1 || got[0] != 3 {
		t.Errorf("near sink keys = %v, want [3]", got)
	}
}

func TestExecuteBadRouteFile(t *testing.T) {
	opts := lineOptions()
	opts.RouteFile = []byte(`{"routes":[{"key":1,"source":{"x":9,"y":9,"core":0},"sinks":[]}]}`)
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts); err == nil {
		t.Error("Execute with an unknown chip should fail")
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	opts := Options{
		Board:       board.Spec{Kind: board.KindRectangular, Width: 2, Height: 2, Cores: 2, WrapAround: true},
		Probability: 0.3,
		Seed:        7,
		Formats:     []table.Format{table.FormatRuntime},
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.RoutesHit || first.CacheInfo.TablesHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.RoutesHit || !second.CacheInfo.TablesHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own ID")
	}
	if first.RoutingHash != second.RoutingHash {
		t.Error("identical runs should hash identically")
	}
	if diff := cmp.Diff(first.Tables, second.Tables); diff != "" {
		t.Errorf("cached tables mismatch (-first +second):\n%s", diff)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RoutesHit || third.CacheInfo.TablesHit {
		t.Errorf("refresh should bypass the cache: %+v", third.CacheInfo)
	}
}

func TestExecuteCacheSeparatesBoards(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)

	// Both boards have three chips and route the same key inside (0,0), so
	// their routing exports are identical.
	const local = `{"routes":[{"key":1,"source":{"x":0,"y":0,"core":0},"sinks":[{"x":0,"y":0,"core":1}]}]}`
	boards := []board.Spec{
		{Kind: board.KindRectangular, Width: 3, Height: 1, Cores: 2},
		{Kind: board.KindHexagonal, Layers: 1, Cores: 2},
	}

	var hashes []string
	for _, spec := range boards {
		result, err := r.Execute(ctx, Options{Board: spec, RouteFile: []byte(local)})
		if err != nil {
			t.Fatalf("Execute(%s): %v", spec.Describe(), err)
		}
		if result.CacheInfo.TablesHit {
			t.Errorf("%s: tables should not come from another board", spec.Describe())
		}
		for chip := range result.Network.Chips() {
			if _, ok := result.Tables[chip.Position]; !ok {
				t.Errorf("%s: chip %s has no table", spec.Describe(), chip.Position)
			}
		}
		if len(result.Tables) != result.Network.NumChips() {
			t.Errorf("%s: %d tables for %d chips", spec.Describe(), len(result.Tables), result.Network.NumChips())
		}
		hashes = append(hashes, result.RoutingHash)
	}
	if hashes[0] == hashes[1] {
		t.Error("boards with different chips should hash differently")
	}
}

func TestCoversChips(t *testing.T) {
	n, err := board.Build(board.Spec{Kind: board.KindRectangular, Width: 2, Height: 1, Cores: 1})
	if err != nil {
		t.Fatal(err)
	}
	full := Tables{{X: 0, Y: 0}: nil, {X: 1, Y: 0}: nil}
	if !coversChips(full, n) {
		t.Error("coversChips should accept tables for every chip")
	}
	shifted := Tables{{X: 0, Y: 0}: nil, {X: 0, Y: 1}: nil}
	if coversChips(shifted, n) {
		t.Error("coversChips should reject tables for missing chips")
	}
}

func TestRouteMatchesRandomWorkload(t *testing.T) {
	n, err := board.Build(board.Spec{Kind: board.KindTorus, Width: 1, Height: 1, Layers: 2, Cores: 3})
	if err != nil {
		t.Fatal(err)
	}
	specs := traffic.Random(n, 0.2, 3)
	unrouted, err := Route(n, specs, Options{Board: board.Spec{Kind: board.KindTorus}})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(unrouted) != 0 {
		t.Errorf("a full torus should reach every sink, unrouted = %v", unrouted)
	}
	routes, err := n.AllRoutes()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range specs {
		ends, ok := routes[s.Key]
		if !ok {
			t.Errorf("key %d missing from AllRoutes", s.Key)
			continue
		}
		if ends.Source != s.Source {
			t.Errorf("key %d source = %d, want %d", s.Key, ends.Source, s.Source)
		}
	}
}

func TestGenerateTablesNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	n, err := board.Build(board.Spec{Kind: board.KindHexagonal, Layers: 2, Cores: 2})
	if err != nil {
		t.Fatal(err)
	}
	tables, err := GenerateTables(context.Background(), n, []table.Format{table.FormatLoader}, 3)
	if err != nil {
		t.Fatalf("GenerateTables: %v", err)
	}
	if len(tables) != n.NumChips() {
		t.Errorf("tables for %d chips, want %d", len(tables), n.NumChips())
	}
	for pos, byFormat := range tables {
		// No routes: only the terminator row.
		if got := len(byFormat[table.FormatLoader]); got != table.LoaderRowSize {
			t.Errorf("%s: %d bytes, want %d", pos, got, table.LoaderRowSize)
		}
	}
}

func TestGenerateTablesCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	n, err := board.Build(board.Spec{Kind: board.KindRectangular, Width: 3, Height: 3, Cores: 1})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GenerateTables(ctx, n, DefaultFormats, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateTables error = %v, want context.Canceled", err)
	}
}

func TestWriteTables(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), lineOptions())
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "tables")
	paths, err := WriteTables(dir, res)
	if err != nil {
		t.Fatalf("WriteTables: %v", err)
	}

	want := []string{
		filepath.Join(dir, "routing_table_0_0.bin"),
		filepath.Join(dir, "routing_table_0_0.rtab"),
		filepath.Join(dir, "routing_table_1_0.bin"),
		filepath.Join(dir, "routing_table_1_0.rtab"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res.Tables[hexgrid.Position{}][table.FormatLoader], data); diff != "" {
		t.Errorf("written bytes mismatch:\n%s", diff)
	}
}

func TestTableFileName(t *testing.T) {
	if got := TableFileName(hexgrid.Position{X: 3, Y: 11}, table.FormatRuntime); got != "routing_table_3_11.rtab" {
		t.Errorf("TableFileName = %q", got)
	}
}
