package indexing

// SymbolDoc represents one search key occurrence in the full-text index
type SymbolDoc struct {
	ID       string   `json:"id"`
	Key      string   `json:"key"`               // Lowercase search key
	Label    string   `json:"label"`             // Display label, e.g. "removeItem"
	Context  string   `json:"context,omitempty"` // Decoded context, e.g. "tgui::ListBox::removeItem()"
	Scope    string   `json:"scope,omitempty"`   // Enclosing class or namespace
	Page     string   `json:"page"`              // Target page without anchor
	Anchor   string   `json:"anchor,omitempty"`  // Target anchor without '#'
	URL      string   `json:"url,omitempty"`     // Target resolved against the docs base URL
	Local    bool     `json:"local"`
	Shard    string   `json:"shard"`              // Source shard, e.g. "all_f"
	Keywords []string `json:"keywords,omitempty"` // Identifier parts for matching "remove item"
}
