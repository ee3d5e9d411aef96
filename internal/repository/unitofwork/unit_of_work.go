package unitofwork

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DevelopmentRepository() contract.DevelopmentRepository
	UnitRepository() contract.UnitRepository
	SalesPipelineRepository() contract.SalesPipelineRepository
	AnalyticsCounterRepository() contract.AnalyticsCounterRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	AssistantExchangeRepository() contract.AssistantExchangeRepository
}
