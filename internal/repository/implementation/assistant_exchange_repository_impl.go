package implementation

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/mapper"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"

	"gorm.io/gorm"
)

type AssistantExchangeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssistantExchangeMapper
}

func NewAssistantExchangeRepository(db *gorm.DB) contract.AssistantExchangeRepository {
	return &AssistantExchangeRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssistantExchangeMapper(),
	}
}

func (r *AssistantExchangeRepositoryImpl) Create(ctx context.Context, exchange *entity.AssistantExchange) error {
	m := r.mapper.ToModel(exchange)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*exchange = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssistantExchangeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistantExchange, error) {
	var models []*model.AssistantExchange
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
