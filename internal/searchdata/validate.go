package searchdata

import (
	"errors"
	"strconv"
	"strings"
)

// Validate checks the shard invariants and returns every violation joined
// into one error, or nil.
func (s *Shard) Validate() error {
	var errs []error
	seen := make(map[string]int, len(s.Entries))

	if len(s.Entries) == 0 {
		errs = append(errs, &ValidationError{Index: -1, Field: "entries", Msg: "shard is empty"})
	}

	for i, e := range s.Entries {
		bad := func(field, msg string) {
			errs = append(errs, &ValidationError{Index: i, Key: e.Key, Field: field, Msg: msg})
		}

		switch {
		case e.Key == "":
			bad("key", "empty")
		case e.Key != strings.ToLower(e.Key):
			bad("key", "not lowercase")
		}
		if first, dup := seen[e.Key]; dup && e.Key != "" {
			bad("key", "duplicate of entry "+strconv.Itoa(first))
		} else {
			seen[e.Key] = i
		}

		if e.Label == "" {
			bad("label", "empty")
		}
		if len(e.Occurrences) == 0 {
			bad("occurrences", "none")
		}
		for j, occ := range e.Occurrences {
			if occ.Target == "" {
				bad("occurrences["+strconv.Itoa(j)+"].target", "empty")
			}
		}
	}

	return errors.Join(errs...)
}

// ValidationErrors unpacks the result of Validate
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, ValidationErrors(e)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		out = append(out, ve)
	}
	return out
}
