package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/metrics"
	"github.com/sam-evolv/property-assistant-sub010/pkg/embedding"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

// VectorMatch is one raw hit from a vector store.
type VectorMatch struct {
	ID         string
	Title      string
	Content    string
	CorpusID   string
	SourceType string
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// VectorStore searches one corpus. Implementations must filter by corpusID
// in the store query itself.
type VectorStore interface {
	SearchSimilar(ctx context.Context, vector []float32, corpusID string, k int) ([]VectorMatch, error)
}

type Config struct {
	Threshold float64
}

func DefaultConfig() Config {
	return Config{Threshold: 0.0}
}

// Client embeds a query and searches a single corpus. It never returns an
// error: any failure degrades to an empty result.
type Client struct {
	embeddingProvider embedding.EmbeddingProvider
	vectorStore       VectorStore
	config            Config
	logger            logger.ILogger
}

func NewClient(embeddingProvider embedding.EmbeddingProvider, vectorStore VectorStore, config Config, log logger.ILogger) *Client {
	return &Client{
		embeddingProvider: embeddingProvider,
		vectorStore:       vectorStore,
		config:            config,
		logger:            log,
	}
}

func (c *Client) Search(ctx context.Context, query, corpusID string, k int) []store.DocumentChunk {
	start := time.Now()
	chunks, outcome := c.search(ctx, query, corpusID, k)
	metrics.RetrievalDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	metrics.RetrievalChunks.Observe(float64(len(chunks)))
	return chunks
}

func (c *Client) search(ctx context.Context, query, corpusID string, k int) ([]store.DocumentChunk, string) {
	query = strings.TrimSpace(query)
	if query == "" || corpusID == "" || k <= 0 {
		c.logger.Warn("SEARCH", "Skipping search with empty query or corpus", map[string]interface{}{
			"corpus_id": corpusID,
			"k":         k,
		})
		return []store.DocumentChunk{}, "skipped"
	}

	embeddingRes, err := c.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		c.logger.Error("SEARCH", "Embedding generation failed", map[string]interface{}{
			"error":     err.Error(),
			"corpus_id": corpusID,
		})
		return []store.DocumentChunk{}, "embedding_error"
	}

	matches, err := c.vectorStore.SearchSimilar(ctx, embeddingRes.Embedding.Values, corpusID, k)
	if err != nil {
		c.logger.Error("SEARCH", "Vector search failed", map[string]interface{}{
			"error":     err.Error(),
			"corpus_id": corpusID,
		})
		return []store.DocumentChunk{}, "search_error"
	}

	chunks := make([]store.DocumentChunk, 0, len(matches))
	for _, m := range matches {
		if m.CorpusID != corpusID {
			c.logger.Error("SEARCH", "Vector store returned chunk from another corpus", map[string]interface{}{
				"requested": corpusID,
				"returned":  m.CorpusID,
				"chunk_id":  m.ID,
			})
			continue
		}
		if m.Similarity < c.config.Threshold {
			continue
		}
		chunks = append(chunks, store.DocumentChunk{
			ID:         m.ID,
			Title:      m.Title,
			Content:    m.Content,
			Score:      float32(m.Similarity),
			CorpusID:   m.CorpusID,
			SourceType: m.SourceType,
		})
	}

	SortByScore(chunks)
	if len(chunks) > k {
		chunks = chunks[:k]
	}

	c.logger.Debug("SEARCH", "Search complete", map[string]interface{}{
		"corpus_id": corpusID,
		"raw":       len(matches),
		"kept":      len(chunks),
	})
	return chunks, "ok"
}

// SortByScore orders chunks by descending score, keeping input order for ties.
func SortByScore(chunks []store.DocumentChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}
