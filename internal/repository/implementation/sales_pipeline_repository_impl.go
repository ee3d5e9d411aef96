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

// Stages in funnel order. Unknown stages sort last.
var pipelineStageOrder = `CASE stage
	WHEN 'enquiry' THEN 1
	WHEN 'viewing' THEN 2
	WHEN 'reserved' THEN 3
	WHEN 'contracts_issued' THEN 4
	WHEN 'contracts_signed' THEN 5
	WHEN 'closed' THEN 6
	ELSE 7 END`

type SalesPipelineRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SalesPipelineMapper
}

func NewSalesPipelineRepository(db *gorm.DB) contract.SalesPipelineRepository {
	return &SalesPipelineRepositoryImpl{
		db:     db,
		mapper: mapper.NewSalesPipelineMapper(),
	}
}

func (r *SalesPipelineRepositoryImpl) Create(ctx context.Context, entry *entity.SalesPipelineEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *SalesPipelineRepositoryImpl) CountByStage(ctx context.Context, specs ...specification.Specification) ([]contract.StageTotal, error) {
	var rows []contract.StageTotal
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.SalesPipelineEntry{}), specs...)
	err := query.
		Select("stage, COUNT(*) AS count, COALESCE(SUM(value), 0) AS value").
		Group("stage").
		Order(gorm.Expr("MIN(" + pipelineStageOrder + ")")).
		Scan(&rows).Error
	return rows, err
}
