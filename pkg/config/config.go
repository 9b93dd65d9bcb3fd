// Package config loads hexroute's TOML configuration file.
//
// A configuration file mirrors the pipeline stages:
//
//	[board]
//	kind = "torus"
//	width = 2
//	height = 1
//	layers = 4
//
//	[routing]
//	algorithm = "dor"
//	order = "xyz"
//
//	[traffic]
//	probability = 0.0005
//	seed = 42
//	routes_file = "routes.json"
//
//	[output]
//	dir = "tables"
//	formats = ["loader", "runtime"]
//
//	[cache]
//	disabled = false
//	redis = { addr = "localhost:6379", prefix = "hexroute:" }
//
//	[pipeline]
//	workers = 8
//
// Every key is optional. Unknown keys are rejected so that typos surface
// instead of being silently ignored.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/cache"
	"github.com/matzehuels/hexroute/pkg/errors"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/pipeline"
	"github.com/matzehuels/hexroute/pkg/routing"
	"github.com/matzehuels/hexroute/pkg/table"
	"github.com/matzehuels/hexroute/pkg/traffic"
)

// DefaultOutputDir is where tables are written when no directory is set.
const DefaultOutputDir = "tables"

// Config is the decoded configuration file.
type Config struct {
	Board    board.Spec `toml:"board"`
	Routing  Routing    `toml:"routing"`
	Traffic  Traffic    `toml:"traffic"`
	Output   Output     `toml:"output"`
	Cache    Cache      `toml:"cache"`
	Pipeline Pipeline   `toml:"pipeline"`
}

// Routing selects the routing algorithm.
type Routing struct {
	Algorithm string `toml:"algorithm"`
	Order     string `toml:"order"`
}

// Traffic selects the workload. RoutesFile takes precedence over the random
// workload and is resolved relative to the configuration file.
type Traffic struct {
	Probability float64 `toml:"probability"`
	Seed        uint64  `toml:"seed"`
	RoutesFile  string  `toml:"routes_file"`
}

// Output selects where and how tables are written.
type Output struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

// Cache configures the table cache. Redis is used when Redis.Addr is set,
// the file cache otherwise.
type Cache struct {
	Disabled bool              `toml:"disabled"`
	Dir      string            `toml:"dir"`
	Redis    cache.RedisConfig `toml:"redis"`
}

// Pipeline tunes pipeline execution.
type Pipeline struct {
	Workers int `toml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{
		Board: board.Spec{Kind: board.KindRectangular},
		Routing: Routing{
			Algorithm: pipeline.DefaultAlgorithm,
			Order:     routing.DefaultOrder.String(),
		},
		Traffic: Traffic{
			Probability: traffic.DefaultProbability,
			Seed:        pipeline.DefaultSeed,
		},
		Output: Output{
			Dir:     DefaultOutputDir,
			Formats: []string{string(table.FormatLoader)},
		},
	}
	cfg.Board.SetDefaults()
	return cfg
}

// Load reads and validates the configuration file at path. Relative paths
// inside the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s", path)
	}
	defer f.Close()

	cfg, md, err := decode(f)
	if err != nil {
		return Config{}, err
	}
	cfg.resolvePaths(filepath.Dir(path), md)
	return cfg, nil
}

// Decode reads a configuration from r on top of [Default] and validates it.
func Decode(r io.Reader) (Config, error) {
	cfg, _, err := decode(r)
	return cfg, err
}

func decode(r io.Reader) (Config, toml.MetaData, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, md, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, md, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Board.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, md, err
	}
	return cfg, md, nil
}

// Validate checks every section and returns a coded error for the first
// problem found.
func (c Config) Validate() error {
	if err := errors.ValidateRange(errors.ErrCodeInvalidBoard, "board.cores", c.Board.Cores, 1, network.MaxCores); err != nil {
		return err
	}
	if c.Board.Kind != board.KindRectangular {
		if err := errors.ValidatePositive(errors.ErrCodeInvalidBoard, "board.layers", c.Board.Layers); err != nil {
			return err
		}
	}
	if err := c.Board.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBoard, err, "board")
	}
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidConfig, "routing.algorithm", c.Routing.Algorithm, routing.Algorithms()); err != nil {
		return err
	}
	if _, err := routing.ParseOrder(c.Routing.Order); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, err, "routing.order %q", c.Routing.Order)
	}
	if err := errors.ValidateProbability("traffic.probability", c.Traffic.Probability); err != nil {
		return err
	}
	names := FormatNames()
	for _, f := range c.Output.Formats {
		if err := errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "output.formats", f, names); err != nil {
			return err
		}
	}
	if c.Pipeline.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "pipeline.workers must not be negative, got %d", c.Pipeline.Workers)
	}
	return nil
}

// PipelineOptions converts the configuration into pipeline options. The
// routes file, when set, is read here.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	formats, err := pipeline.ParseFormats(c.Output.Formats)
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "output.formats")
	}
	opts := pipeline.Options{
		Board:       c.Board,
		Probability: c.Traffic.Probability,
		Seed:        c.Traffic.Seed,
		Algorithm:   c.Routing.Algorithm,
		Order:       c.Routing.Order,
		Formats:     formats,
		Workers:     c.Pipeline.Workers,
	}
	if c.Traffic.RoutesFile != "" {
		data, err := os.ReadFile(c.Traffic.RoutesFile)
		if os.IsNotExist(err) {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "routes file %s not found", c.Traffic.RoutesFile)
		}
		if err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidRoutes, err, "read routes file")
		}
		opts.RouteFile = data
	}
	return opts, nil
}

// UseRedis reports whether the cache section selects Redis.
func (c Config) UseRedis() bool {
	return !c.Cache.Disabled && c.Cache.Redis.Addr != ""
}

// resolvePaths rebases relative paths set in the file onto base. Defaults
// stay relative to the working directory.
func (c *Config) resolvePaths(base string, md toml.MetaData) {
	paths := []struct {
		key  []string
		path *string
	}{
		{[]string{"traffic", "routes_file"}, &c.Traffic.RoutesFile},
		{[]string{"output", "dir"}, &c.Output.Dir},
		{[]string{"cache", "dir"}, &c.Cache.Dir},
	}
	for _, p := range paths {
		if !md.IsDefined(p.key...) {
			continue
		}
		if *p.path != "" && !filepath.IsAbs(*p.path) {
			*p.path = filepath.Join(base, *p.path)
		}
	}
}

// FormatNames returns the supported output format names.
func FormatNames() []string {
	names := make([]string, 0, len(table.Formats))
	for _, f := range table.Formats {
		names = append(names, string(f))
	}
	return names
}
