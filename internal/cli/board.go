package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexroute/pkg/board"
	"github.com/matzehuels/hexroute/pkg/errors"
	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

// boardCommand creates the board command, which builds a board and prints a
// summary without routing anything.
func (c *CLI) boardCommand() *cobra.Command {
	var run runFlags
	var listChips bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Build a board and summarise its chips and links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := run.load(cmd)
			if err != nil {
				return err
			}
			n, err := board.Build(cfg.Board)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidBoard, err, "build board")
			}
			summary := summarizeBoard(n)
			c.Logger.Debug("built board", "board", cfg.Board.Describe(), "chips", summary.chips)

			fmt.Println(StyleTitle.Render(cfg.Board.Describe()))
			printKeyValue("chips", fmt.Sprint(summary.chips))
			printKeyValue("cores", fmt.Sprint(summary.cores))
			printKeyValue("links", fmt.Sprint(summary.links))
			printKeyValue("bounds", fmt.Sprintf("%dx%d", summary.bounds.Width, summary.bounds.Height))
			printKeyValue("wrap", fmt.Sprint(cfg.Board.WrapAround))
			if listChips {
				fmt.Println(renderTable([]string{"Chip", "Board", "Cores", "Links"}, chipRows(n)))
			}
			return nil
		},
	}

	run.register(cmd)
	cmd.Flags().BoolVar(&listChips, "chips", false, "list every chip")
	return cmd
}

type boardSummary struct {
	chips  int
	cores  int
	links  int
	bounds hexgrid.Bounds
}

// summarizeBoard counts chips, cores and bidirectional chip-to-chip links.
func summarizeBoard(n *network.Network) boardSummary {
	var s boardSummary
	ends := 0
	for chip := range n.Chips() {
		s.chips++
		s.cores += len(chip.Cores)
		ends += externalLinks(n, chip.Router)
	}
	s.links = ends / 2
	s.bounds = n.Bounds()
	return s
}

func externalLinks(n *network.Network, router network.NodeID) int {
	count := 0
	for port := range n.Links(router) {
		if port.IsExternal() {
			count++
		}
	}
	return count
}

func chipRows(n *network.Network) [][]string {
	var rows [][]string
	for chip := range n.Chips() {
		rows = append(rows, []string{
			chip.Position.String(),
			chip.Board.String(),
			fmt.Sprint(len(chip.Cores)),
			fmt.Sprint(externalLinks(n, chip.Router)),
		})
	}
	return rows
}
