package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codecontext/internal/extract"
	"github.com/mvp-joe/codecontext/internal/mcp"
)

var dialectsJSON bool

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the declaration dialects in the order they are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printDialects(cmd.OutOrStdout(), extract.DefaultRegistry(), dialectsJSON)
	},
}

func init() {
	rootCmd.AddCommand(dialectsCmd)
	dialectsCmd.Flags().BoolVar(&dialectsJSON, "json", false, "Output as JSON")
}

func printDialects(w io.Writer, registry extract.Registry, asJSON bool) error {
	dialects := mcp.Dialects(registry)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dialects)
	}

	for _, d := range dialects {
		fmt.Fprintf(w, "%d. %s\n", d.Position, d.Tag)
		fmt.Fprintf(w, "   gate:    %s\n", d.Gate)
		fmt.Fprintf(w, "   pattern: %s\n", d.Pattern)
	}
	return nil
}
