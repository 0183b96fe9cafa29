package searchdata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://tgui-docs.local/schema/searchdata.json"

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search data schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add search data schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile search data schema: %w", err)
	}
	return schema, nil
})

// SchemaViolation is one flattened JSON Schema error
type SchemaViolation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Literal parses the table without interpreting it. Arrays become []any,
// strings stay strings and integers become json.Number so the result can be
// fed to a JSON Schema validator.
func Literal(data []byte) (any, error) {
	p := &parser{src: string(data)}
	if _, err := p.header(); err != nil {
		return nil, err
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	return toJSONValue(v), nil
}

// ValidateSchema checks the shape of a search data file against the
// embedded JSON Schema. Syntax errors are returned as *ParseError; shape
// problems wrap ErrShape and a *jsonschema.ValidationError.
func ValidateSchema(data []byte) error {
	v, err := Literal(data)
	if err != nil {
		return err
	}
	return validateValue(v)
}

// ValidateWire checks the shard's own encoding against the schema
func (s *Shard) ValidateWire() error {
	return validateValue(s.wireValue())
}

func validateValue(v any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrShape, err)
	}
	return nil
}

// SchemaViolations flattens the error returned by ValidateSchema
func SchemaViolations(err error) []SchemaViolation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return flattenViolations(ve)
}

func flattenViolations(ve *jsonschema.ValidationError) []SchemaViolation {
	var out []SchemaViolation
	if len(ve.Causes) == 0 {
		path := "$"
		if len(ve.InstanceLocation) > 0 {
			path = "$[" + strings.Join(ve.InstanceLocation, "][") + "]"
		}
		out = append(out, SchemaViolation{Path: path, Message: ve.Error()})
	}
	for _, cause := range ve.Causes {
		out = append(out, flattenViolations(cause)...)
	}
	return out
}

func (s *Shard) wireValue() []any {
	table := make([]any, 0, len(s.Entries))
	for _, e := range s.Entries {
		body := []any{e.Label}
		for _, occ := range e.Occurrences {
			flag := json.Number("0")
			if occ.Local {
				flag = json.Number("1")
			}
			o := []any{occ.Target, flag}
			if occ.Context != "" {
				o = append(o, occ.Context)
			}
			body = append(body, o)
		}
		table = append(table, []any{e.Key, body})
	}
	return table
}

func toJSONValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toJSONValue(item)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(t))
	default:
		return v
	}
}
