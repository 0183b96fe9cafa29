package indexing

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// SplitTarget separates a target into page and anchor
// Example: "../classtgui_1_1Tab.html#ae769" -> "../classtgui_1_1Tab.html", "ae769"
func SplitTarget(target string) (page, anchor string) {
	page, anchor, _ = strings.Cut(target, "#")
	return page, anchor
}

// ResolveURL resolves a shard-relative target against the documentation base URL.
// Shards live in <docs>/search/, so targets start with "../".
// Returns the target unchanged if baseURL is empty or unparsable.
func ResolveURL(baseURL, target string) string {
	if baseURL == "" {
		return target
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return target
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	// Targets are relative to the search/ directory
	searchDir := base.ResolveReference(&url.URL{Path: "search/"})
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return searchDir.ResolveReference(ref).String()
}

// SplitIdentifier breaks a C++ identifier or qualified name into lowercase words
// Example: "tgui::ListBox::removeItemById" -> ["tgui", "list", "box", "remove", "item", "by", "id"]
func SplitIdentifier(name string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			// Start a new word on lower->Upper and on the last capital of an acronym ("HTMLParser")
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			if prevLower || (prevUpper && nextLower) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	return words
}

// ExtractKeywords extracts distinct identifier words from label and context
func ExtractKeywords(label, context string) []string {
	// Parameter lists only add type noise ("const std::string &filename")
	if i := strings.IndexByte(context, '('); i >= 0 {
		context = context[:i]
	}

	stopWords := map[string]bool{
		"tgui": true, "std": true, "const": true, "override": true,
		"the": true, "a": true, "an": true,
	}

	seen := make(map[string]bool)
	keywords := make([]string, 0, MaxKeywords)
	for _, word := range append(SplitIdentifier(label), SplitIdentifier(context)...) {
		if len(word) < 2 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}

	return keywords
}

// DocumentID builds a stable document ID from shard, key and position
// Example: ("all_f", "remove", 2) -> "all_f/remove/2"
func DocumentID(shard, key string, position int) string {
	return fmt.Sprintf("%s/%s/%d", shard, key, position)
}
