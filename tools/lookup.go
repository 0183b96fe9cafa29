package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

// maxCompletions caps the limit accepted by complete_symbol
const maxCompletions = 200

// LookupSymbolInput defines input for lookup_symbol tool
type LookupSymbolInput struct {
	Key string `json:"key" jsonschema:"Search key to resolve, e.g. 'remove' or 'removeItem' (case-insensitive)"`
}

// LookupSymbolOutput defines output for lookup_symbol tool
type LookupSymbolOutput struct {
	Key     string             `json:"key"`
	Found   bool               `json:"found"`
	Matches []searchdata.Match `json:"matches"`
	Shards  []string           `json:"shards,omitempty"`
}

// CompleteSymbolInput defines input for complete_symbol tool
type CompleteSymbolInput struct {
	Prefix    string `json:"prefix" jsonschema:"Typed text to complete, e.g. 'removeit'"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of completions (optional, defaults to the configured search.complete_limit)"`
	Substring bool   `json:"substring,omitempty" jsonschema:"Match keys containing the text anywhere instead of only at the start (optional)"`
}

// Completion is one autocomplete candidate
type Completion struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Occurrences int    `json:"occurrences"`
}

// CompleteSymbolOutput defines output for complete_symbol tool
type CompleteSymbolOutput struct {
	Prefix      string       `json:"prefix"`
	Substring   bool         `json:"substring"`
	Completions []Completion `json:"completions"`
}

// ensureCatalog returns the loaded catalog, loading it on first use.
// Lookups stay available even when the full-text index failed to build.
func ensureCatalog(ctx context.Context) (*searchdata.Catalog, error) {
	if catalog := indexMgr.catalog.Load(); catalog != nil {
		return catalog, nil
	}

	catalog, _, err := LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	indexMgr.catalog.CompareAndSwap(nil, catalog)
	return indexMgr.catalog.Load(), nil
}

// LookupSymbol resolves an exact search key to all of its documented occurrences.
// Unknown keys are not an error: the result is simply empty.
func LookupSymbol(ctx context.Context, req *mcp.CallToolRequest, input LookupSymbolInput) (*mcp.CallToolResult, LookupSymbolOutput, error) {
	catalog, err := ensureCatalog(ctx)
	if err != nil {
		return nil, LookupSymbolOutput{}, fmt.Errorf("failed to load symbol catalog: %w", err)
	}

	key := strings.TrimSpace(input.Key)
	output := LookupSymbolOutput{
		Key:     strings.ToLower(key),
		Matches: catalog.Lookup(key),
	}
	output.Found = len(output.Matches) > 0

	for _, id := range catalog.Sources(key) {
		output.Shards = append(output.Shards, id.String())
	}

	return nil, output, nil
}

// CompleteSymbol lists keys starting with (or containing) the typed text
func CompleteSymbol(ctx context.Context, req *mcp.CallToolRequest, input CompleteSymbolInput) (*mcp.CallToolResult, CompleteSymbolOutput, error) {
	catalog, err := ensureCatalog(ctx)
	if err != nil {
		return nil, CompleteSymbolOutput{}, fmt.Errorf("failed to load symbol catalog: %w", err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = currentConfig().Search.CompleteLimit
	}
	if limit <= 0 || limit > maxCompletions {
		limit = maxCompletions
	}

	var entries []searchdata.Entry
	if input.Substring {
		entries = catalog.Contains(input.Prefix, limit)
	} else {
		entries = catalog.Prefix(input.Prefix, limit)
	}

	output := CompleteSymbolOutput{
		Prefix:      input.Prefix,
		Substring:   input.Substring,
		Completions: make([]Completion, 0, len(entries)),
	}
	for _, e := range entries {
		output.Completions = append(output.Completions, Completion{
			Key:         e.Key,
			Label:       e.Label,
			Occurrences: len(e.Occurrences),
		})
	}

	return nil, output, nil
}

// RegisterLookupTools registers lookup_symbol and complete_symbol
func RegisterLookupTools(server *mcp.Server) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "lookup_symbol",
			Description: "Resolve a TGUI search key (e.g. 'remove') to every documented occurrence: display label, documentation target with anchor, and the enclosing scope such as 'tgui::Container'. Unknown keys return an empty list.",
		},
		LookupSymbol,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "complete_symbol",
			Description: "Autocomplete TGUI search keys the way the documentation search box does. Prefix match by default; set substring for matches anywhere in the key.",
		},
		CompleteSymbol,
	)
}
