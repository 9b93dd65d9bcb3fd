package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/config"
	"github.com/matzehuels/hexroute/pkg/errors"
	"github.com/matzehuels/hexroute/pkg/pipeline"
	"github.com/matzehuels/hexroute/pkg/routing"
)

// runFlags are the flags shared by every command that runs the pipeline.
// Flags the user set explicitly override the configuration file.
type runFlags struct {
	configPath string

	kind   string
	width  int
	height int
	layers int
	cores  int
	wrap   bool

	algorithm   string
	order       string
	probability float64
	seed        uint64
	routesFile  string
	workers     int
	refresh     bool

	cache cacheFlags
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")

	fs.StringVar(&f.kind, "kind", string(board.KindRectangular), "board kind: rectangular, hexagonal, torus")
	fs.IntVar(&f.width, "width", board.DefaultWidth, "board width (chips, or three-board units for a torus)")
	fs.IntVar(&f.height, "height", board.DefaultHeight, "board height (chips, or three-board units for a torus)")
	fs.IntVar(&f.layers, "layers", board.DefaultLayers, "layers per hexagonal board")
	fs.IntVar(&f.cores, "cores", board.DefaultCores, "cores per chip")
	fs.BoolVar(&f.wrap, "wrap", false, "wrap a rectangular board into a torus")

	fs.StringVar(&f.algorithm, "algorithm", pipeline.DefaultAlgorithm, "routing algorithm: "+strings.Join(routing.Algorithms(), ", "))
	fs.StringVar(&f.order, "order", routing.DefaultOrder.String(), "dimension order, a permutation of xyz")
	fs.Float64Var(&f.probability, "probability", 0, "per-core sink probability of the random workload")
	fs.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random workload seed")
	fs.StringVarP(&f.routesFile, "routes", "r", "", "JSON route file replacing the random workload")
	fs.IntVar(&f.workers, "workers", 0, "parallel table workers (default: GOMAXPROCS)")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")

	f.cache.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("kind", cobra.FixedCompletions(
		[]string{string(board.KindRectangular), string(board.KindHexagonal), string(board.KindTorus)},
		cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("algorithm", cobra.FixedCompletions(
		routing.Algorithms(), cobra.ShellCompDirectiveNoFileComp))
}

// load reads the configuration file, if any, and applies explicit flags.
func (f *runFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("kind") {
		cfg.Board.Kind = board.Kind(f.kind)
	}
	if fs.Changed("width") {
		cfg.Board.Width = f.width
	}
	if fs.Changed("height") {
		cfg.Board.Height = f.height
	}
	if fs.Changed("layers") {
		cfg.Board.Layers = f.layers
	}
	if fs.Changed("cores") {
		cfg.Board.Cores = f.cores
	}
	if fs.Changed("wrap") {
		cfg.Board.WrapAround = f.wrap
	}
	if fs.Changed("algorithm") {
		cfg.Routing.Algorithm = f.algorithm
	}
	if fs.Changed("order") {
		cfg.Routing.Order = f.order
	}
	if fs.Changed("probability") {
		cfg.Traffic.Probability = f.probability
	}
	if fs.Changed("seed") {
		cfg.Traffic.Seed = f.seed
	}
	if fs.Changed("routes") {
		cfg.Traffic.RoutesFile = f.routesFile
	}
	if fs.Changed("workers") {
		cfg.Pipeline.Workers = f.workers
	}
	f.cache.apply(&cfg)

	cfg.Board.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// options loads the configuration and converts it to pipeline options.
func (f *runFlags) options(cmd *cobra.Command) (config.Config, pipeline.Options, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return config.Config{}, pipeline.Options{}, err
	}
	opts.Refresh = f.refresh
	return cfg, opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// validateFormats rejects unknown table formats with a coded error.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", f, config.FormatNames()); err != nil {
			return err
		}
	}
	return nil
}
