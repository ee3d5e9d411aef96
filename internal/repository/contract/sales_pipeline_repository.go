package contract

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
)

type StageTotal struct {
	Stage string
	Count int
	Value float64
}

type SalesPipelineRepository interface {
	Create(ctx context.Context, entry *entity.SalesPipelineEntry) error
	CountByStage(ctx context.Context, specs ...specification.Specification) ([]StageTotal, error)
}
