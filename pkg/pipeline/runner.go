package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/cache"
	pkgio "github.com/matzehuels/hexroute/pkg/io"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/observability"
	"github.com/matzehuels/hexroute/pkg/routing"
	"github.com/matzehuels/hexroute/pkg/traffic"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → traffic → route → tables pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Build
	buildStart := time.Now()
	n, err := board.Build(opts.Board)
	result.Stats.BuildTime = time.Since(buildStart)
	chips := 0
	if err == nil {
		chips = n.NumChips()
	}
	observability.Pipeline().OnBuild(ctx, opts.Board.Describe(), chips, result.Stats.BuildTime, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Network = n
	result.Stats.Chips = n.NumChips()
	logger.Info("built board",
		"board", opts.Board.Describe(),
		"chips", n.NumChips(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Traffic
	trafficStart := time.Now()
	specs, routesHit, err := r.TrafficWithCacheInfo(ctx, n, opts)
	if err != nil {
		return nil, fmt.Errorf("traffic: %w", err)
	}
	result.Specs = specs
	result.Stats.TrafficTime = time.Since(trafficStart)
	result.CacheInfo.RoutesHit = routesHit
	ts := traffic.Summarize(specs)
	result.Stats.Routes, result.Stats.Sinks = ts.Routes, ts.Sinks
	logger.Info("prepared traffic",
		"routes", ts.Routes,
		"sinks", ts.Sinks,
		"cached", routesHit)

	// Stage 3: Route
	routeStart := time.Now()
	unrouted, err := Route(n, specs, opts)
	result.Stats.RouteTime = time.Since(routeStart)
	for _, sinks := range unrouted {
		result.Stats.UnroutedSinks += len(sinks)
	}
	observability.Pipeline().OnRoute(ctx, opts.Algorithm, len(specs), result.Stats.UnroutedSinks, result.Stats.RouteTime, err)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Unrouted = unrouted
	for router := range n.Routers() {
		result.Stats.Entries += n.NumEntries(router)
	}
	if result.Stats.UnroutedSinks > 0 {
		logger.Warn("some sinks are unreachable",
			"routes", len(unrouted),
			"sinks", result.Stats.UnroutedSinks)
	}
	logger.Info("routed traffic",
		"algorithm", opts.Algorithm,
		"order", opts.Order,
		"entries", result.Stats.Entries,
		"duration", result.Stats.RouteTime)

	// Stage 4: Tables
	tableStart := time.Now()
	if result.RoutingHash, err = routingHash(n); err != nil {
		return nil, fmt.Errorf("hash routing state: %w", err)
	}
	tables, tablesHit, err := r.TablesWithCacheInfo(ctx, n, result.RoutingHash, opts)
	result.Stats.TableTime = time.Since(tableStart)
	observability.Pipeline().OnTables(ctx, n.NumChips(), formatNames(opts.Formats), result.Stats.TableTime, err)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	result.Tables = tables
	result.CacheInfo.TablesHit = tablesHit
	for _, byFormat := range tables {
		for _, data := range byFormat {
			result.Stats.TableBytes += len(data)
		}
	}
	logger.Info("encoded tables",
		"chips", len(tables),
		"formats", opts.Formats,
		"bytes", result.Stats.TableBytes,
		"cached", tablesHit,
		"duration", result.Stats.TableTime)

	return result, nil
}

// TrafficWithCacheInfo returns the route specs for n and whether they came
// from the cache. Route files are parsed directly and never cached.
func (r *Runner) TrafficWithCacheInfo(ctx context.Context, n *network.Network, opts Options) ([]traffic.Spec, bool, error) {
	if len(opts.RouteFile) > 0 {
		specs, err := pkgio.ReadRoutes(bytes.NewReader(opts.RouteFile), n)
		return specs, false, err
	}

	boardKey, err := json.Marshal(opts.Board)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.RoutesKey(string(boardKey), opts.RoutesKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			specs, err := pkgio.ReadRoutes(bytes.NewReader(data), n)
			if err == nil {
				return specs, true, nil
			}
			// Stale entry for a different board; regenerate.
		}
	}

	specs := traffic.Random(n, opts.Probability, opts.Seed)

	var buf bytes.Buffer
	if err := pkgio.WriteRoutes(specs, n, &buf); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLRoutes)
	}
	return specs, false, nil
}

// Route routes every spec over n with the algorithm named in opts and
// merges the paths. It returns the unreachable sinks per route key.
func Route(n *network.Network, specs []traffic.Spec, opts Options) (map[network.RouteKey][]network.NodeID, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	f, err := routing.Lookup(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	unrouted := make(map[network.RouteKey][]network.NodeID)
	for _, s := range specs {
		missed, err := routing.Route(n, f, s.Key, s.Source, s.Sinks, opts.RoutingOptions())
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", s.Key, err)
		}
		if len(missed) > 0 {
			unrouted[s.Key] = missed
			opts.Logger.Debug("unrouted sinks", "key", s.Key, "count", len(missed))
		}
	}
	return unrouted, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// routingHash identifies the forwarding state of n together with its chip
// positions. Chips without entries are absent from the routing export, so
// the positions are hashed separately.
func routingHash(n *network.Network) (string, error) {
	var state bytes.Buffer
	if err := pkgio.WriteRouting(n, &state); err != nil {
		return "", err
	}
	state.WriteString("\nchips:")
	for chip := range n.Chips() {
		fmt.Fprintf(&state, "%d,%d;", chip.Position.X, chip.Position.Y)
	}
	return cache.Hash(state.Bytes()), nil
}
