package mapper

import (
	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	return &entity.DocumentChunk{
		Id:         c.Id,
		CorpusId:   c.CorpusId,
		DocumentId: c.DocumentId,
		Title:      c.Title,
		Content:    c.Content,
		SourceType: c.SourceType,
		ChunkIndex: c.ChunkIndex,
		Embedding:  c.EmbeddingValue.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	return &model.DocumentChunk{
		Id:             c.Id,
		CorpusId:       c.CorpusId,
		DocumentId:     c.DocumentId,
		Title:          c.Title,
		Content:        c.Content,
		SourceType:     c.SourceType,
		ChunkIndex:     c.ChunkIndex,
		EmbeddingValue: pgvector.NewVector(c.Embedding),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
