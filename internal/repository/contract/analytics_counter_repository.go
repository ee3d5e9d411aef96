package contract

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
)

type AnalyticsCounterRepository interface {
	Create(ctx context.Context, counter *entity.AnalyticsCounter) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsCounter, error)
}
