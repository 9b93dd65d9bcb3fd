package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexroute/pkg/config"
	"github.com/matzehuels/hexroute/pkg/errors"
	pkgio "github.com/matzehuels/hexroute/pkg/io"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/pipeline"
)

// tablesOpts holds the command-line flags for the tables command.
type tablesOpts struct {
	run          runFlags
	output       string // output directory
	formats      string // comma-separated table formats
	exportRoutes string // write the workload as a route file
	dumpRouting  string // write every router's entries as JSON
}

// tablesCommand creates the tables command, which runs the full pipeline and
// writes one table file per chip and format.
func (c *CLI) tablesCommand() *cobra.Command {
	var opts tablesOpts

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Build, route and write routing tables for a board",
		Long: `Build a board, route a multicast workload over it and write the routing
table of every chip.

The workload is either a JSON route file (--routes) or a random pattern in
which every core sinks every route with --probability. Files are named
routing_table_<x>_<y>.bin (loader format) and routing_table_<x>_<y>.rtab
(runtime format).`,
		Example: `  hexroute tables --kind torus --width 1 --height 1 -o tables/
  hexroute tables -c hexroute.toml --format loader,runtime
  hexroute tables --kind hexagonal --layers 3 --routes routes.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTables(cmd, &opts)
		},
	}

	opts.run.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default \""+config.DefaultOutputDir+"\")")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "table format(s): loader (default), runtime (comma-separated)")
	cmd.Flags().StringVar(&opts.exportRoutes, "export-routes", "", "also write the routed workload as a route file")
	cmd.Flags().StringVar(&opts.dumpRouting, "dump-routing", "", "also write every router's forwarding entries as JSON")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(config.FormatNames(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runTables(cmd *cobra.Command, opts *tablesOpts) error {
	ctx := cmd.Context()

	if err := validateFormats(parseFormats(opts.formats)); err != nil {
		return err
	}

	cfg, popts, err := opts.run.options(cmd)
	if err != nil {
		return err
	}
	if opts.formats != "" {
		if popts.Formats, err = pipeline.ParseFormats(parseFormats(opts.formats)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "--format")
		}
	}
	dir := cfg.Output.Dir
	if opts.output != "" {
		dir = opts.output
	}

	result, err := c.execute(ctx, cfg, popts)
	if err != nil {
		return err
	}

	paths, err := pipeline.WriteTables(dir, result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write tables to %s", dir)
	}

	if opts.exportRoutes != "" {
		if err := pkgio.ExportRoutes(result.Specs, result.Network, opts.exportRoutes); err != nil {
			return fmt.Errorf("export routes: %w", err)
		}
		paths = append(paths, opts.exportRoutes)
	}
	if opts.dumpRouting != "" {
		if err := dumpRouting(result.Network, opts.dumpRouting); err != nil {
			return fmt.Errorf("dump routing: %w", err)
		}
		paths = append(paths, opts.dumpRouting)
	}

	printSuccess("Wrote %d table files for %s", len(paths), cfg.Board.Describe())
	printStats(result.Stats.Chips, result.Stats.Routes, result.Stats.Entries, result.CacheInfo.TablesHit)
	if result.Stats.UnroutedSinks > 0 {
		printWarning("%d sinks across %d routes were unreachable", result.Stats.UnroutedSinks, len(result.Unrouted))
		keys := slices.Sorted(maps.Keys(result.Unrouted))
		for _, k := range keys[:min(len(keys), 5)] {
			printDetail("key %d: %d sinks", k, len(result.Unrouted[k]))
		}
	}
	for _, p := range paths[:min(len(paths), 4)] {
		printFile(p)
	}
	if len(paths) > 4 {
		printDetail("... and %d more in %s", len(paths)-4, dir)
	}
	printNewline()
	printNextStep("Inspect a table", fmt.Sprintf("%s inspect %s", appName, paths[0]))
	return nil
}

// execute runs the pipeline with the cache selected by cfg.
func (c *CLI) execute(ctx context.Context, cfg config.Config, opts pipeline.Options) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRoutingFailed, err, "run pipeline")
	}
	prog.done(fmt.Sprintf("Routed %d chips", result.Stats.Chips))
	return result, nil
}

func dumpRouting(n *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pkgio.WriteRouting(n, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
