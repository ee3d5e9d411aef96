package contract

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
)

type DevelopmentRepository interface {
	Create(ctx context.Context, development *entity.Development) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Development, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Development, error)
}
