package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hexroute/pkg/config"
	"github.com/matzehuels/hexroute/pkg/errors"
	"github.com/matzehuels/hexroute/pkg/table"
)

// inspectCommand creates the inspect command, which decodes a table file.
func (c *CLI) inspectCommand() *cobra.Command {
	var format string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Decode and print a routing table file",
		Long: `Decode a routing table file and print its rows.

The format is taken from --format, or from the file extension when unset:
.rtab files are runtime tables, everything else is read as a loader table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := inspectFormat(args[0], format)
			if err != nil {
				return err
			}
			rows, err := readTable(args[0], f)
			if err != nil {
				return err
			}
			c.Logger.Debug("decoded table", "file", args[0], "format", f, "rows", len(rows))
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printTable(args[0], f, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "table format: loader, runtime (default: from extension)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(config.FormatNames(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// inspectFormat resolves the explicit format or infers it from path.
func inspectFormat(path, explicit string) (table.Format, error) {
	if explicit != "" {
		f, err := table.ParseFormat(explicit)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "--format")
		}
		return f, nil
	}
	if filepath.Ext(path) == table.FormatRuntime.Extension() {
		return table.FormatRuntime, nil
	}
	return table.FormatLoader, nil
}

// readTable reads and decodes the table at path.
func readTable(path string, f table.Format) ([]table.Row, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "table file %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	rows, err := table.Decode(f, data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTable, err, "decode %s as %s", path, f)
	}
	return rows, nil
}

func printTable(path string, f table.Format, rows []table.Row) {
	fmt.Println(StyleTitle.Render(filepath.Base(path)))
	printKeyValue("format", string(f))
	printKeyValue("rows", StyleNumber.Render(fmt.Sprint(len(rows))))
	if len(rows) == 0 {
		return
	}
	fmt.Println(renderTable([]string{"#", "Key", "Mask", "Route", "Ports"}, tableRows(rows)))
}

// tableRows formats rows for display, naming the ports of each route.
func tableRows(rows []table.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		ports := table.Ports(r.Route)
		names := make([]string, len(ports))
		for j, p := range ports {
			names[j] = p.String()
		}
		out[i] = []string{
			fmt.Sprint(i),
			fmt.Sprintf("0x%08x", r.Key),
			fmt.Sprintf("0x%08x", r.Mask),
			fmt.Sprintf("0x%06x", r.Route),
			strings.Join(names, ", "),
		}
	}
	return out
}
