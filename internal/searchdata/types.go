package searchdata

import (
	"html"
	"strings"
)

// DefaultVariable is the global name Doxygen assigns to the table literal
const DefaultVariable = "searchData"

// Occurrence is one documentation location a search key points to
type Occurrence struct {
	Target  string `json:"target"`            // Relative URL plus optional #anchor
	Local   bool   `json:"local"`             // Doxygen flag: 1 opens in the doc frame, 0 is an external tag-file link
	Context string `json:"context,omitempty"` // Enclosing scope or full member signature
}

// Entry maps one lowercase search key to its occurrences
type Entry struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Match is a flattened lookup result
type Match struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Target  string `json:"target"`
	Local   bool   `json:"local"`
	Context string `json:"context,omitempty"`
	Scope   string `json:"scope,omitempty"`
}

// Scope returns the context with the member part removed.
//
//	"tgui::Container::remove()"              -> "tgui::Container"
//	"tgui::Theme::reload(const std::string)" -> "tgui::Theme"
//	"tgui::DefaultThemeLoader"               -> "tgui::DefaultThemeLoader" (label "readFile")
//	"tgui::RadioButton"                      -> "tgui" (label "RadioButton")
func (o Occurrence) Scope(label string) string {
	ctx := html.UnescapeString(o.Context)
	if i := strings.IndexByte(ctx, '('); i >= 0 {
		ctx = ctx[:i]
	}
	ctx = strings.TrimSpace(ctx)

	i := strings.LastIndex(ctx, "::")
	if i < 0 {
		if ctx == label {
			return ""
		}
		return ctx
	}
	if ctx[i+2:] == label {
		return ctx[:i]
	}
	return ctx
}

// DisplayContext returns the context with HTML entities decoded
func (o Occurrence) DisplayContext() string {
	return html.UnescapeString(o.Context)
}

// Matches flattens the entry into lookup results
func (e Entry) Matches() []Match {
	matches := make([]Match, 0, len(e.Occurrences))
	for _, occ := range e.Occurrences {
		matches = append(matches, Match{
			Key:     e.Key,
			Label:   e.Label,
			Target:  occ.Target,
			Local:   occ.Local,
			Context: occ.DisplayContext(),
			Scope:   occ.Scope(e.Label),
		})
	}
	return matches
}

func (e Entry) clone() Entry {
	out := e
	out.Occurrences = append([]Occurrence(nil), e.Occurrences...)
	return out
}
