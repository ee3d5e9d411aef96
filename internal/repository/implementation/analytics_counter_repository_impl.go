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

type AnalyticsCounterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalyticsCounterMapper
}

func NewAnalyticsCounterRepository(db *gorm.DB) contract.AnalyticsCounterRepository {
	return &AnalyticsCounterRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalyticsCounterMapper(),
	}
}

func (r *AnalyticsCounterRepositoryImpl) Create(ctx context.Context, counter *entity.AnalyticsCounter) error {
	m := r.mapper.ToModel(counter)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*counter = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnalyticsCounterRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsCounter, error) {
	var models []*model.AnalyticsCounter
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
