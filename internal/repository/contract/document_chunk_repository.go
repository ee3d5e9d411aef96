package contract

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk wraps a chunk with its cosine similarity (1.0 = identical).
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocument(ctx context.Context, corpusID string, documentID uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore only ever looks inside corpusID.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, corpusID string, limit int, threshold float64) ([]*ScoredDocumentChunk, error)
}
