package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hexroute/pkg/cache"
	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/table"
)

// Tables maps each chip position to its encoded tables, per format.
type Tables = map[hexgrid.Position]map[table.Format][]byte

// chipTables is the cached form of one chip's tables.
type chipTables struct {
	X      int                     `json:"x"`
	Y      int                     `json:"y"`
	Tables map[table.Format][]byte `json:"tables"`
}

// TablesWithCacheInfo encodes the tables of every chip of n and reports
// whether they came from the cache. routingHash must identify the
// forwarding state of n.
func (r *Runner) TablesWithCacheInfo(ctx context.Context, n *network.Network, routingHash string, opts Options) (Tables, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.TablesKey(routingHash, opts.TablesKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			tables, err := unmarshalTables(data)
			if err == nil && coversChips(tables, n) {
				return tables, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	tables, err := GenerateTables(ctx, n, opts.Formats, opts.Workers)
	if err != nil {
		return nil, false, err
	}
	if data, err := marshalTables(tables); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTables)
	}
	return tables, false, nil
}

// coversChips reports whether tables holds every chip of n and nothing else.
func coversChips(tables Tables, n *network.Network) bool {
	if len(tables) != n.NumChips() {
		return false
	}
	for chip := range n.Chips() {
		if _, ok := tables[chip.Position]; !ok {
			return false
		}
	}
	return true
}

// GenerateTables encodes every chip's table in each format using up to
// workers goroutines. n must not be modified while this runs.
func GenerateTables(ctx context.Context, n *network.Network, formats []table.Format, workers int) (Tables, error) {
	chips := slices.Collect(n.Chips())
	encoded := make([]map[table.Format][]byte, len(chips))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, chip := range chips {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			byFormat := make(map[table.Format][]byte, len(formats))
			for _, f := range formats {
				data, err := table.Generate(n, chip.Router, f)
				if err != nil {
					return fmt.Errorf("chip %s: %w", chip.Position, err)
				}
				byFormat[f] = data
			}
			encoded[i] = byFormat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make(Tables, len(chips))
	for i, chip := range chips {
		tables[chip.Position] = encoded[i]
	}
	return tables, nil
}

// TableFileName returns the file name for the table of the chip at pos.
func TableFileName(pos hexgrid.Position, f table.Format) string {
	return fmt.Sprintf("routing_table_%d_%d%s", pos.X, pos.Y, f.Extension())
}

// WriteTables writes every table of result into dir, creating it if needed.
// It returns the paths written in chip order.
func WriteTables(dir string, result *Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	positions := make([]hexgrid.Position, 0, len(result.Tables))
	for pos := range result.Tables {
		positions = append(positions, pos)
	}
	slices.SortFunc(positions, comparePositions)

	var paths []string
	for _, pos := range positions {
		byFormat := result.Tables[pos]
		for _, f := range table.Formats {
			data, ok := byFormat[f]
			if !ok {
				continue
			}
			path := filepath.Join(dir, TableFileName(pos, f))
			if err := os.WriteFile(path, data, 0644); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func comparePositions(a, b hexgrid.Position) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

func marshalTables(t Tables) ([]byte, error) {
	out := make([]chipTables, 0, len(t))
	for pos, byFormat := range t {
		out = append(out, chipTables{X: pos.X, Y: pos.Y, Tables: byFormat})
	}
	slices.SortFunc(out, func(a, b chipTables) int {
		return comparePositions(hexgrid.Position{X: a.X, Y: a.Y}, hexgrid.Position{X: b.X, Y: b.Y})
	})
	return json.Marshal(out)
}

func unmarshalTables(data []byte) (Tables, error) {
	var in []chipTables
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	t := make(Tables, len(in))
	for _, c := range in {
		t[hexgrid.Position{X: c.X, Y: c.Y}] = c.Tables
	}
	return t, nil
}

func formatNames(formats []table.Format) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}
