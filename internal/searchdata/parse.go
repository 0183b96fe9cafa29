package searchdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parse reads a Doxygen search data file.
//
// The expected layout is
//
//	var searchData=
//	[
//	  ['key',['Label',['target.html#anchor',1,'context'],...]],
//	  ...
//	];
//
// Occurrences may omit the context element. Comments and a missing trailing
// semicolon are tolerated.
func Parse(r io.Reader) (*Shard, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read search data: %w", err)
	}
	return ParseBytes(data)
}

// ParseFile parses the shard at path and derives its ID from the file name
func ParseFile(path string) (*Shard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search data: %w", err)
	}
	shard, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	shard.ID = ParseShardID(filepath.Base(path))
	return shard, nil
}

// ParseBytes parses an in-memory search data file
func ParseBytes(data []byte) (*Shard, error) {
	p := &parser{src: string(data)}

	name, err := p.header()
	if err != nil {
		return nil, err
	}

	start := p.pos
	root, err := p.value()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.peek() == ';' {
		p.pos++
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf(ErrSyntax, "unexpected trailing content")
	}

	list, ok := root.([]any)
	if !ok {
		return nil, p.errorAt(ErrShape, start, "table must be an array")
	}

	shard := &Shard{
		Variable: name,
		Entries:  make([]Entry, 0, len(list)),
		keys:     make(map[string]int, len(list)),
	}
	for i, raw := range list {
		entry, err := toEntry(raw)
		if err != nil {
			return nil, p.errorAt(ErrShape, p.offsets[i], fmt.Sprintf("entry %d: %v", i, err))
		}
		shard.add(entry)
	}
	return shard, nil
}

// toEntry converts ['key',['Label',[...],...]] into an Entry
func toEntry(raw any) (Entry, error) {
	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		return Entry{}, fmt.Errorf("want [key, [label, occurrences...]]")
	}
	key, ok := pair[0].(string)
	if !ok {
		return Entry{}, fmt.Errorf("key must be a string")
	}
	body, ok := pair[1].([]any)
	if !ok || len(body) < 1 {
		return Entry{}, fmt.Errorf("key %q: want [label, occurrences...]", key)
	}
	label, ok := body[0].(string)
	if !ok {
		return Entry{}, fmt.Errorf("key %q: label must be a string", key)
	}

	entry := Entry{Key: key, Label: label, Occurrences: make([]Occurrence, 0, len(body)-1)}
	for j, rawOcc := range body[1:] {
		occ, err := toOccurrence(rawOcc)
		if err != nil {
			return Entry{}, fmt.Errorf("key %q occurrence %d: %v", key, j, err)
		}
		entry.Occurrences = append(entry.Occurrences, occ)
	}
	return entry, nil
}

func toOccurrence(raw any) (Occurrence, error) {
	fields, ok := raw.([]any)
	if !ok || len(fields) < 2 || len(fields) > 3 {
		return Occurrence{}, fmt.Errorf("want [target, flag, context?]")
	}
	target, ok := fields[0].(string)
	if !ok {
		return Occurrence{}, fmt.Errorf("target must be a string")
	}
	flag, ok := fields[1].(int)
	if !ok {
		return Occurrence{}, fmt.Errorf("flag must be an integer")
	}
	occ := Occurrence{Target: target, Local: flag != 0}
	if len(fields) == 3 {
		ctx, ok := fields[2].(string)
		if !ok {
			return Occurrence{}, fmt.Errorf("context must be a string")
		}
		occ.Context = ctx
	}
	return occ, nil
}

// maxDepth bounds array nesting. Generator output is four levels deep.
const maxDepth = 16

// parser is a small recursive descent reader for the subset of JavaScript
// literals the generator emits: arrays, quoted strings and integers.
type parser struct {
	src   string
	pos   int
	depth int

	// offsets holds where each element of the outermost array starts
	offsets []int
}

func (p *parser) header() (string, error) {
	p.skipSpace()
	for _, kw := range []string{"var", "let", "const"} {
		rest := p.src[p.pos:]
		if strings.HasPrefix(rest, kw) && len(rest) > len(kw) && isSpace(rest[len(kw)]) {
			p.pos += len(kw)
			break
		}
	}
	p.skipSpace()

	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf(ErrSyntax, "expected variable name")
	}
	name := p.src[start:p.pos]

	p.skipSpace()
	if p.peek() != '=' {
		return "", p.errorf(ErrSyntax, "expected '='")
	}
	p.pos++
	p.skipSpace()
	return name, nil
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '[':
		return p.array()
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	case c == 0:
		return nil, p.errorf(ErrSyntax, "unexpected end of input")
	default:
		return nil, p.errorf(ErrSyntax, fmt.Sprintf("unexpected character %q", c))
	}
}

func (p *parser) array() ([]any, error) {
	if p.depth >= maxDepth {
		return nil, p.errorf(ErrShape, "nesting too deep")
	}
	p.depth++
	defer func() { p.depth-- }()
	outermost := p.depth == 1

	p.pos++ // [
	items := []any{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return items, nil
		}
		if outermost {
			p.offsets = append(p.offsets, p.pos)
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return items, nil
		case 0:
			return nil, p.errorf(ErrSyntax, "unterminated array")
		default:
			return nil, p.errorf(ErrSyntax, "expected ',' or ']'")
		}
	}
}

func (p *parser) str() (string, error) {
	quote := p.src[p.pos]
	start := p.pos
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorAt(ErrSyntax, start, "unterminated string")
			}
			b.WriteByte(unescape(p.src[p.pos+1]))
			p.pos += 2
		case c == '\n':
			return "", p.errorAt(ErrSyntax, start, "newline in string")
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorAt(ErrSyntax, start, "unterminated string")
}

func (p *parser) number() (int, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorAt(ErrSyntax, start, "invalid number")
	}
	return n, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case isSpace(c):
			p.pos++
		case strings.HasPrefix(p.src[p.pos:], "//"):
			if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
				p.pos += i + 1
			} else {
				p.pos = len(p.src)
			}
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			if i := strings.Index(p.src[p.pos+2:], "*/"); i >= 0 {
				p.pos += i + 4
			} else {
				p.pos = len(p.src)
			}
		default:
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(cause error, msg string) error {
	return p.errorAt(cause, p.pos, msg)
}

func (p *parser) errorAt(cause error, offset int, msg string) error {
	if offset > len(p.src) {
		offset = len(p.src)
	}
	line := 1 + strings.Count(p.src[:offset], "\n")
	col := offset + 1
	if i := strings.LastIndexByte(p.src[:offset], '\n'); i >= 0 {
		col = offset - i
	}
	return &ParseError{Offset: offset, Line: line, Column: col, Msg: msg, cause: cause}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
