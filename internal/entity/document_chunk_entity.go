package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one embedded slice of a document. CorpusId is a
// development id, a tenant id or the shared regulatory corpus id.
type DocumentChunk struct {
	Id         uuid.UUID
	CorpusId   string
	DocumentId uuid.UUID
	Title      string
	Content    string
	SourceType string
	ChunkIndex int
	Embedding  []float32
	CreatedAt  time.Time
}
