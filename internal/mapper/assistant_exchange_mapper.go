package mapper

import (
	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"

	"gorm.io/datatypes"
)

type AssistantExchangeMapper struct{}

func NewAssistantExchangeMapper() *AssistantExchangeMapper {
	return &AssistantExchangeMapper{}
}

func (m *AssistantExchangeMapper) ToEntity(e *model.AssistantExchange) *entity.AssistantExchange {
	if e == nil {
		return nil
	}
	return &entity.AssistantExchange{
		Id:            e.Id,
		TenantId:      e.TenantId,
		UserId:        e.UserId,
		DevelopmentId: e.DevelopmentId,
		Question:      e.Question,
		Answer:        e.Answer,
		Layers:        []string(e.Layers),
		Functions:     []string(e.Functions),
		RouteSource:   e.RouteSource,
		IsRegulatory:  e.IsRegulatory,
		SourceCount:   e.SourceCount,
		Outcome:       e.Outcome,
		DurationMs:    e.DurationMs,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *AssistantExchangeMapper) ToModel(e *entity.AssistantExchange) *model.AssistantExchange {
	if e == nil {
		return nil
	}
	return &model.AssistantExchange{
		Id:            e.Id,
		TenantId:      e.TenantId,
		UserId:        e.UserId,
		DevelopmentId: e.DevelopmentId,
		Question:      e.Question,
		Answer:        e.Answer,
		Layers:        datatypes.JSONSlice[string](e.Layers),
		Functions:     datatypes.JSONSlice[string](e.Functions),
		RouteSource:   e.RouteSource,
		IsRegulatory:  e.IsRegulatory,
		SourceCount:   e.SourceCount,
		Outcome:       e.Outcome,
		DurationMs:    e.DurationMs,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *AssistantExchangeMapper) ToEntities(exchanges []*model.AssistantExchange) []*entity.AssistantExchange {
	entities := make([]*entity.AssistantExchange, len(exchanges))
	for i, e := range exchanges {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
