package store

const (
	SourceTenantDocument      = "document"
	SourceDevelopmentDocument = "development_document"
	SourceRegulation          = "regulation"
	SourceLiveData            = "live_data"
)

// DocumentChunk is one retrieved excerpt. Score is cosine similarity, higher is better.
type DocumentChunk struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
	CorpusID   string  `json:"corpus_id"`
	SourceType string  `json:"source_type"`
}
