package implementation

import (
	"context"
	"errors"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/mapper"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"

	"gorm.io/gorm"
)

type DevelopmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DevelopmentMapper
}

func NewDevelopmentRepository(db *gorm.DB) contract.DevelopmentRepository {
	return &DevelopmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDevelopmentMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DevelopmentRepositoryImpl) Create(ctx context.Context, development *entity.Development) error {
	m := r.mapper.ToModel(development)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*development = *r.mapper.ToEntity(m)
	return nil
}

func (r *DevelopmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Development, error) {
	var m model.Development
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DevelopmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Development, error) {
	var models []*model.Development
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
