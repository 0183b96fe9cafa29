package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

var completeCmd = &cobra.Command{
	Use:   "complete <prefix>",
	Short: "Complete a partially typed search key",
	Example: `  tguidoc complete removeit
  tguidoc complete --substring menu
  tguidoc complete --limit 5 set`,
	Args: cobra.ExactArgs(1),
	Run:  runComplete,
}

var (
	completeLimit     int
	completeSubstring bool
)

func init() {
	completeCmd.Flags().IntVar(&completeLimit, "limit", 20, "max completions (0 for all)")
	completeCmd.Flags().BoolVar(&completeSubstring, "substring", false, "match anywhere in the key")
}

func runComplete(cmd *cobra.Command, args []string) {
	catalog, err := loadCatalog(context.Background())
	if err != nil {
		fail("failed to load search data", err)
	}
	if err := printCompletions(cmd.OutOrStdout(), complete(catalog, args[0], completeLimit, completeSubstring), jsonOutput); err != nil {
		fail("failed to write output", err)
	}
}

func complete(catalog *searchdata.Catalog, text string, limit int, substring bool) []searchdata.Entry {
	if substring {
		return catalog.Contains(text, limit)
	}
	return catalog.Prefix(text, limit)
}

type completion struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Occurrences int    `json:"occurrences"`
}

func printCompletions(w io.Writer, entries []searchdata.Entry, asJSON bool) error {
	if asJSON {
		out := make([]completion, 0, len(entries))
		for _, e := range entries {
			out = append(out, completion{Key: e.Key, Label: e.Label, Occurrences: len(e.Occurrences)})
		}
		return writeJSON(w, out)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%-28s %s (%d)\n", e.Key, e.Label, len(e.Occurrences)); err != nil {
			return err
		}
	}
	return nil
}
