package contract

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
)

type AssistantExchangeRepository interface {
	Create(ctx context.Context, exchange *entity.AssistantExchange) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistantExchange, error)
}
