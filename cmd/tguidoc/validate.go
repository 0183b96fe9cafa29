package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Check search data files for syntax and layout problems",
	Example: `  tguidoc validate html/search/all_f.js
  tguidoc validate html/search/*.js`,
	Args: cobra.MinimumNArgs(1),
	Run:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		if !reportFile(out, path, checkFile(path)) {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(out, "%d of %d file(s) invalid\n", failed, len(args))
		os.Exit(1)
	}
}

// checkFile returns every problem found in the shard at path
func checkFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{err.Error()}
	}

	shard, err := searchdata.ParseBytes(data)
	if err != nil {
		return []string{err.Error()}
	}
	shard.ID = searchdata.ParseShardID(filepath.Base(path))

	var problems []string
	for _, ve := range searchdata.ValidationErrors(shard.Validate()) {
		problems = append(problems, ve.Error())
	}
	for _, v := range searchdata.SchemaViolations(searchdata.ValidateSchema(data)) {
		problems = append(problems, fmt.Sprintf("%s: %s", v.Path, v.Message))
	}
	return problems
}

func reportFile(w io.Writer, path string, problems []string) bool {
	if len(problems) == 0 {
		fmt.Fprintf(w, "ok    %s\n", path)
		return true
	}
	fmt.Fprintf(w, "FAIL  %s\n", path)
	for _, p := range problems {
		fmt.Fprintf(w, "      %s\n", p)
	}
	return false
}
