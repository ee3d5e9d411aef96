package pgvector

import (
	"context"
	"fmt"

	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/search"
)

// ChunkSearcher is the slice of the chunk repository the store needs.
type ChunkSearcher interface {
	SearchSimilarWithScore(ctx context.Context, embedding []float32, corpusID string, limit int, threshold float64) ([]*contract.ScoredDocumentChunk, error)
}

// Store serves vector search from the document_chunks table.
type Store struct {
	repo      ChunkSearcher
	threshold float64
}

var _ search.VectorStore = &Store{}

func NewStore(repo ChunkSearcher, threshold float64) *Store {
	return &Store{repo: repo, threshold: threshold}
}

func (s *Store) SearchSimilar(ctx context.Context, vector []float32, corpusID string, k int) ([]search.VectorMatch, error) {
	scored, err := s.repo.SearchSimilarWithScore(ctx, vector, corpusID, k, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}

	matches := make([]search.VectorMatch, 0, len(scored))
	for _, sc := range scored {
		if sc == nil || sc.Chunk == nil {
			continue
		}
		matches = append(matches, search.VectorMatch{
			ID:         sc.Chunk.Id.String(),
			Title:      sc.Chunk.Title,
			Content:    sc.Chunk.Content,
			CorpusID:   sc.Chunk.CorpusId,
			SourceType: sc.Chunk.SourceType,
			Similarity: sc.Similarity,
		})
	}
	return matches, nil
}
