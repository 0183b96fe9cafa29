package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a search data file in the generator's layout",
	Example: `  tguidoc fmt html/search/all_f.js
  tguidoc fmt --check html/search/all_f.js
  tguidoc fmt -w html/search/all_f.js`,
	Args: cobra.ExactArgs(1),
	Run:  runFmt,
}

var (
	fmtCheck bool
	fmtWrite bool
)

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "exit non-zero if the file is not in canonical layout")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the result back to the file")
}

func runFmt(cmd *cobra.Command, args []string) {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fail("failed to read file", err)
	}

	formatted, err := canonical(data)
	if err != nil {
		fail("failed to parse search data", err)
	}

	switch {
	case fmtCheck:
		if !bytes.Equal(data, formatted) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not in canonical layout\n", path)
			os.Exit(1)
		}
	case fmtWrite:
		if bytes.Equal(data, formatted) {
			return
		}
		if err := os.WriteFile(path, formatted, 0644); err != nil {
			fail("failed to write file", err)
		}
	default:
		cmd.OutOrStdout().Write(formatted)
	}
}

// canonical parses data and re-serializes it
func canonical(data []byte) ([]byte, error) {
	shard, err := searchdata.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return shard.MarshalText()
}
