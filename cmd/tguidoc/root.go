package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tgui-docs/mcp-server/internal/config"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
	"github.com/tgui-docs/mcp-server/tools"
)

var (
	searchDir  string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tguidoc",
	Short: "Look up TGUI symbols in Doxygen search data",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&searchDir, "dir", "", "directory with search/*.js files (default: local cache, then embedded data)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fmtCmd)
}

// loadCatalog reads shards from --dir, or from the server's cache and
// embedded data when no directory is given
func loadCatalog(ctx context.Context) (*searchdata.Catalog, error) {
	if searchDir != "" {
		slog.Debug("loading search data", "dir", searchDir)
		return searchdata.LoadCatalog(ctx, os.DirFS(searchDir), ".")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	tools.Configure(cfg)

	// The server logs through the standard logger
	if !verbose {
		log.SetOutput(io.Discard)
	}
	catalog, source, err := tools.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded catalog", "source", source, "keys", catalog.Len())
	return catalog, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
