package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

// Error codes reported by validate_search_shard
const (
	CodeFileRead  = "FILE_READ_ERROR"
	CodeSyntax    = "SYNTAX_ERROR"
	CodeShape     = "SHAPE_ERROR"
	CodeInvariant = "INVARIANT_VIOLATION"
	CodeSchema    = "SCHEMA_VALIDATION_ERROR"
)

// ValidationResult represents the result of search data validation
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Shard       string            `json:"shard,omitempty"`    // e.g. "all_f" when validating a file
	Variable    string            `json:"variable,omitempty"` // Global name of the table literal
	Entries     int               `json:"entries"`
	Occurrences int               `json:"occurrences"`
	Errors      []ValidationError `json:"errors"`
	Summary     string            `json:"summary"`
}

// ValidationError represents a validation error with location
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code"`
}

// ValidateSearchShardInput defines input for validate_search_shard tool
type ValidateSearchShardInput struct {
	Content string `json:"content,omitempty" jsonschema:"Search data file content, e.g. \"var searchData=[...];\""`
	Path    string `json:"path,omitempty" jsonschema:"Path to a search data file such as search/all_f.js (used when content is empty)"`
}

// ValidateSearchShardOutput defines output for validate_search_shard tool
type ValidateSearchShardOutput struct {
	ValidationResult
}

// isFilePath determines if a string is a file path rather than shard content
func isFilePath(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.ContainsAny(trimmed, "\n[") {
		return false
	}
	for _, kw := range []string{"var ", "let ", "const "} {
		if strings.HasPrefix(trimmed, kw) {
			return false
		}
	}

	// Windows absolute path (C:\, D:\, etc.)
	if len(trimmed) >= 3 && trimmed[1] == ':' && (trimmed[2] == '\\' || trimmed[2] == '/') {
		return true
	}
	return strings.HasPrefix(trimmed, "/") ||
		strings.HasPrefix(trimmed, "./") ||
		strings.HasPrefix(trimmed, "../") ||
		strings.HasSuffix(trimmed, ".js")
}

// validateShardData runs the parser, invariant checks and the JSON schema over data
func validateShardData(data []byte) ValidationResult {
	result := ValidationResult{Errors: []ValidationError{}}

	shard, err := searchdata.ParseBytes(data)
	if err != nil {
		result.Errors = append(result.Errors, parseFailure(err))
		if errors.Is(err, searchdata.ErrShape) {
			// The literal is readable: the schema pinpoints every bad entry
			result.Errors = append(result.Errors, schemaFailures(searchdata.ValidateSchema(data))...)
		}
		result.Summary = "Search data could not be parsed"
		return result
	}

	result.Variable = shard.Variable
	result.Entries = shard.Len()
	for _, e := range shard.Entries {
		result.Occurrences += len(e.Occurrences)
	}

	for _, ve := range searchdata.ValidationErrors(shard.Validate()) {
		path := "$"
		if ve.Index >= 0 {
			path = "$[" + strconv.Itoa(ve.Index) + "]"
		}
		result.Errors = append(result.Errors, ValidationError{
			Path:    path + "." + ve.Field,
			Message: ve.Error(),
			Code:    CodeInvariant,
		})
	}
	result.Errors = append(result.Errors, schemaFailures(searchdata.ValidateSchema(data))...)

	result.Valid = len(result.Errors) == 0
	if result.Valid {
		result.Summary = fmt.Sprintf("Search data is valid: %d entries, %d occurrences", result.Entries, result.Occurrences)
	} else {
		result.Summary = fmt.Sprintf("Search data validation failed with %d error(s)", len(result.Errors))
	}
	return result
}

func parseFailure(err error) ValidationError {
	code := CodeSyntax
	if errors.Is(err, searchdata.ErrShape) {
		code = CodeShape
	}
	out := ValidationError{Message: err.Error(), Code: code}

	var pe *searchdata.ParseError
	if errors.As(err, &pe) {
		out.Line = pe.Line
		out.Column = pe.Column
	}
	return out
}

func schemaFailures(err error) []ValidationError {
	if err == nil {
		return nil
	}
	var out []ValidationError
	for _, v := range searchdata.SchemaViolations(err) {
		out = append(out, ValidationError{Path: v.Path, Message: v.Message, Code: CodeSchema})
	}
	// Parse errors are already reported by parseFailure
	var pe *searchdata.ParseError
	if len(out) == 0 && !errors.As(err, &pe) {
		out = append(out, ValidationError{Message: err.Error(), Code: CodeSchema})
	}
	return out
}

// ValidateSearchShard checks a Doxygen search data file
func ValidateSearchShard(ctx context.Context, req *mcp.CallToolRequest, input ValidateSearchShardInput) (*mcp.CallToolResult, ValidateSearchShardOutput, error) {
	content, path := input.Content, input.Path
	if path == "" && isFilePath(content) {
		content, path = "", content
	}
	if content == "" && path == "" {
		return nil, ValidateSearchShardOutput{}, fmt.Errorf("either content or path is required")
	}

	data := []byte(content)
	if content == "" {
		fileContent, err := os.ReadFile(path)
		if err != nil {
			var msg string
			switch {
			case os.IsNotExist(err):
				msg = fmt.Sprintf("Search data file not found: %s", path)
			case os.IsPermission(err):
				msg = fmt.Sprintf("Permission denied reading file: %s", path)
			default:
				msg = fmt.Sprintf("Failed to read search data file '%s': %s", path, err.Error())
			}
			result := ValidationResult{
				Errors:  []ValidationError{{Path: path, Message: msg, Code: CodeFileRead}},
				Summary: "Search data file could not be read",
			}
			return nil, ValidateSearchShardOutput{ValidationResult: result}, nil
		}
		data = fileContent
	}

	result := validateShardData(data)
	if path != "" {
		result.Shard = searchdata.ParseShardID(filepath.Base(path)).String()
	}
	return nil, ValidateSearchShardOutput{ValidationResult: result}, nil
}

// RegisterValidationTools registers validate_search_shard
func RegisterValidationTools(server *mcp.Server) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_search_shard",
			Description: "Validate a Doxygen search data file (e.g. search/all_f.js): syntax, entry layout, key and target invariants, and the JSON schema of the table. Errors carry line/column for syntax problems and a JSON path for entry problems.",
		},
		ValidateSearchShard,
	)
}
