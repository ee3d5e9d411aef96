package unitofwork

import (
	"context"
	"errors"

	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTransactionActive = errors.New("transaction already started")
	ErrNoTransaction     = errors.New("no active transaction")
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTransactionActive
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is a no-op after Commit, so it can be deferred unconditionally.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) DevelopmentRepository() contract.DevelopmentRepository {
	return implementation.NewDevelopmentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UnitRepository() contract.UnitRepository {
	return implementation.NewUnitRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SalesPipelineRepository() contract.SalesPipelineRepository {
	return implementation.NewSalesPipelineRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AnalyticsCounterRepository() contract.AnalyticsCounterRepository {
	return implementation.NewAnalyticsCounterRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentChunkRepository() contract.DocumentChunkRepository {
	return implementation.NewDocumentChunkRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssistantExchangeRepository() contract.AssistantExchangeRepository {
	return implementation.NewAssistantExchangeRepository(u.getDB())
}
