package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexroute/pkg/errors"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/render"
)

const (
	renderDOT = "dot" // Graphviz source
	renderSVG = "svg" // laid out by the embedded Graphviz
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	run      runFlags
	key      uint32 // route key to draw
	topology bool   // draw the board instead of a route
	format   string // dot or svg
	output   string // output file; stdout when empty
}

// renderCommand creates the render command for drawing route trees and
// board topologies.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a route tree or board topology as DOT or SVG",
		Example: `  hexroute render --kind torus --key 12 -o route12.svg
  hexroute render --kind hexagonal --layers 2 --topology --format dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("key") && !opts.topology {
				return errors.New(errors.ErrCodeInvalidInput, "one of --key or --topology is required")
			}
			if opts.format == "" {
				opts.format = renderDOT
				if filepath.Ext(opts.output) == ".svg" {
					opts.format = renderSVG
				}
			}
			if err := errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", opts.format, []string{renderDOT, renderSVG}); err != nil {
				return err
			}
			return c.runRender(cmd, &opts)
		},
	}

	opts.run.register(cmd)
	cmd.Flags().Uint32VarP(&opts.key, "key", "k", 0, "route key to draw")
	cmd.Flags().BoolVar(&opts.topology, "topology", false, "draw the board links instead of a route")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg (default: from output extension, else dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("key", "topology")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	cfg, popts, err := opts.run.options(cmd)
	if err != nil {
		return err
	}
	result, err := c.execute(ctx, cfg, popts)
	if err != nil {
		return err
	}

	var dot string
	if opts.topology {
		dot = render.TopologyDOT(result.Network)
	} else {
		dot, err = render.RouteDOT(result.Network, network.RouteKey(opts.key))
		if err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, err, "route key %d", opts.key)
		}
	}

	data := []byte(dot)
	if opts.format == renderSVG {
		if data, err = render.RenderSVG(ctx, dot); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return err
	}
	what := "board topology"
	if !opts.topology {
		what = fmt.Sprintf("route %d", opts.key)
	}
	printSuccess("Rendered %s", what)
	printFile(opts.output)
	return nil
}
