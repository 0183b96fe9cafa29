package indexing

const (
	// BatchSize is the number of documents submitted per bleve batch
	BatchSize = 100

	// MaxKeywords caps the keywords stored per document
	MaxKeywords = 10

	// IndexSchemaVersion increments when the document layout or mapping changes
	// v1: flat occurrence documents, v2: scope and keyword fields with keyword analyzer
	IndexSchemaVersion = 2
)
