package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/pkg/embedding"
	"github.com/sam-evolv/property-assistant-sub010/pkg/utils"

	"github.com/google/uuid"
)

const (
	// ~375 tokens per chunk keeps every embedding model in range.
	ingestChunkSize    = 1500
	ingestChunkOverlap = 200
)

var ErrEmptyDocument = errors.New("document has no content")

// IngestDocument is one document to index into a corpus.
type IngestDocument struct {
	CorpusID   string
	DocumentID uuid.UUID
	Title      string
	Content    string
	SourceType string
}

type IDocumentIngestService interface {
	// Ingest replaces every chunk of the document in its corpus and returns
	// the number of chunks written.
	Ingest(ctx context.Context, doc IngestDocument) (int, error)
}

type documentIngestService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewDocumentIngestService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IDocumentIngestService {
	return &documentIngestService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (s *documentIngestService) Ingest(ctx context.Context, doc IngestDocument) (int, error) {
	if doc.CorpusID == "" {
		return 0, errors.New("corpus id is required")
	}
	texts := utils.SplitText(doc.Content, ingestChunkSize, ingestChunkOverlap)
	if len(texts) == 0 {
		return 0, ErrEmptyDocument
	}

	// Embed before opening the transaction so a slow model never holds it.
	now := time.Now()
	chunks := make([]*entity.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		res, err := s.embeddingProvider.Generate(ctx, embeddingInput(doc.Title, text), embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d of %s: %w", i, doc.DocumentID, err)
		}
		chunks = append(chunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			CorpusId:   doc.CorpusID,
			DocumentId: doc.DocumentID,
			Title:      doc.Title,
			Content:    text,
			SourceType: doc.SourceType,
			ChunkIndex: i,
			Embedding:  res.Embedding.Values,
			CreatedAt:  now,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocument(ctx, doc.CorpusID, doc.DocumentID); err != nil {
		return 0, fmt.Errorf("delete old chunks: %w", err)
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return 0, fmt.Errorf("create chunks: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("INGEST", "Document indexed", map[string]interface{}{
		"corpus_id":   doc.CorpusID,
		"document_id": doc.DocumentID.String(),
		"chunks":      len(chunks),
	})
	return len(chunks), nil
}

func embeddingInput(title, text string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return text
	}
	return "Title: " + title + "\n\n" + text
}
