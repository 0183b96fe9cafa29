package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <key>",
	Short: "List every documented occurrence of a search key",
	Example: `  tguidoc lookup remove
  tguidoc lookup removeItem --json
  tguidoc lookup reload --dir html/search`,
	Args: cobra.ExactArgs(1),
	Run:  runLookup,
}

func runLookup(cmd *cobra.Command, args []string) {
	catalog, err := loadCatalog(context.Background())
	if err != nil {
		fail("failed to load search data", err)
	}
	if err := printMatches(cmd.OutOrStdout(), catalog.Lookup(args[0]), jsonOutput); err != nil {
		fail("failed to write output", err)
	}
}

func printMatches(w io.Writer, matches []searchdata.Match, asJSON bool) error {
	if asJSON {
		return writeJSON(w, matches)
	}
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "no matches")
		return err
	}

	for _, m := range matches {
		where := m.Scope
		if where == "" {
			where = "-"
		}
		line := fmt.Sprintf("%-24s %-32s %s", m.Label, where, m.Target)
		if !m.Local {
			line += " (external)"
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
