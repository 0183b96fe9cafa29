package searchdata

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)

// Encode writes the shard in the generator's layout. Output of the generator
// round-trips byte for byte.
func (s *Shard) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	name := s.Variable
	if name == "" {
		name = DefaultVariable
	}
	fmt.Fprintf(bw, "var %s=\n[\n", name)

	for i, e := range s.Entries {
		bw.WriteString("  ")
		writeEntry(bw, e)
		if i < len(s.Entries)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("];\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write search data: %w", err)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (s *Shard) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Shard) UnmarshalText(data []byte) error {
	parsed, err := ParseBytes(data)
	if err != nil {
		return err
	}
	id := s.ID
	*s = *parsed
	s.ID = id
	return nil
}

func writeEntry(w *bufio.Writer, e Entry) {
	w.WriteByte('[')
	writeString(w, e.Key)
	w.WriteString(",[")
	writeString(w, e.Label)
	for _, occ := range e.Occurrences {
		w.WriteString(",[")
		writeString(w, occ.Target)
		if occ.Local {
			w.WriteString(",1")
		} else {
			w.WriteString(",0")
		}
		if occ.Context != "" {
			w.WriteByte(',')
			writeString(w, occ.Context)
		}
		w.WriteByte(']')
	}
	w.WriteString("]]")
}

func writeString(w *bufio.Writer, s string) {
	w.WriteByte('\'')
	quoteReplacer.WriteString(w, s)
	w.WriteByte('\'')
}
