// Package pipeline runs the complete build → traffic → route → tables flow.
//
// It is shared by every hexroute entry point (the tables command, the table
// server, tests) so that all of them build identical tables from identical
// options.
//
// # Stages
//
//  1. Build: construct the board network from a [board.Spec]
//  2. Traffic: load route specs from a route file, or draw a random workload
//  3. Route: run the routing algorithm per spec and merge each path
//  4. Tables: encode every router's forwarding table, in parallel
//
// The traffic and tables stages are cached through a [cache.Cache]. The
// tables cache key is the content hash of the routed network, so any change
// to the board, the workload or the algorithm produces a new key.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Board:   board.Spec{Kind: board.KindTorus, Width: 1, Height: 1},
//	    Formats: []table.Format{table.FormatLoader},
//	})
//	if err != nil {
//	    return err
//	}
//	err = pipeline.WriteTables(dir, result)
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/cache"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/routing"
	"github.com/matzehuels/hexroute/pkg/table"
	"github.com/matzehuels/hexroute/pkg/traffic"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultAlgorithm is the routing algorithm used when none is named.
	DefaultAlgorithm = routing.AlgorithmDOR

	// DefaultSeed is the random seed for generated workloads.
	DefaultSeed = uint64(42)
)

// DefaultFormats is the encoding set used when none is requested.
var DefaultFormats = []table.Format{table.FormatLoader}

// DefaultWorkers returns the table worker count used when none is set.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Build options
	Board board.Spec `json:"board"`

	// Traffic options. RouteFile, when set, holds a JSON route file and
	// replaces the random workload.
	RouteFile   []byte  `json:"-"`
	Probability float64 `json:"probability,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`

	// Routing options. Wrap-around follows Board.WrapAround.
	Algorithm string `json:"algorithm,omitempty"`
	Order     string `json:"order,omitempty"`

	// Table options
	Formats []table.Format `json:"formats,omitempty"`
	Workers int            `json:"workers,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// order is the parsed form of Order.
	order     routing.Order
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution in logs and API responses.
	RunID string

	// Network is the routed board. Its forwarding entries are complete.
	Network *network.Network

	// Specs are the routes that were requested.
	Specs []traffic.Spec

	// Unrouted lists, per route key, the sinks no path could reach.
	Unrouted map[network.RouteKey][]network.NodeID

	// RoutingHash is the content hash of the network's forwarding state.
	RoutingHash string

	// Tables holds the encoded table of every chip, per format.
	Tables Tables

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Chips         int
	Routes        int
	Sinks         int
	UnroutedSinks int
	Entries       int
	TableBytes    int
	BuildTime     time.Duration
	TrafficTime   time.Duration
	RouteTime     time.Duration
	TableTime     time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	RoutesHit bool // Whether the random workload came from cache
	TablesHit bool // Whether all tables came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that formats are known and not repeated.
func ValidateFormats(formats []table.Format) error {
	seen := make(map[table.Format]bool, len(formats))
	for _, f := range formats {
		if _, err := table.ParseFormat(string(f)); err != nil {
			return err
		}
		if seen[f] {
			return fmt.Errorf("format %q requested twice", f)
		}
		seen[f] = true
	}
	return nil
}

// ParseFormats converts format names into table formats.
func ParseFormats(names []string) ([]table.Format, error) {
	formats := make([]table.Format, 0, len(names))
	for _, name := range names {
		f, err := table.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, ValidateFormats(formats)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Board.SetDefaults()
	if err := o.Board.Validate(); err != nil {
		return err
	}

	if o.Probability == 0 {
		o.Probability = traffic.DefaultProbability
	}
	if o.Probability < 0 || o.Probability > 1 {
		return fmt.Errorf("probability %v outside [0, 1]", o.Probability)
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}

	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if _, err := routing.Lookup(o.Algorithm); err != nil {
		return err
	}
	order, err := routing.ParseOrder(o.Order)
	if err != nil {
		return err
	}
	o.order = order
	o.Order = order.String()

	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RoutingOptions returns the options passed to the routing algorithm.
func (o *Options) RoutingOptions() routing.Options {
	return routing.Options{WrapAround: o.Board.WrapAround, Order: o.order}
}

// RoutesKeyOpts returns cache key options for the random workload.
func (o *Options) RoutesKeyOpts() cache.RoutesKeyOpts {
	return cache.RoutesKeyOpts{Probability: o.Probability, Seed: o.Seed}
}

// TablesKeyOpts returns cache key options for the encoded tables.
func (o *Options) TablesKeyOpts() cache.TablesKeyOpts {
	return cache.TablesKeyOpts{Formats: formatNames(o.Formats)}
}
