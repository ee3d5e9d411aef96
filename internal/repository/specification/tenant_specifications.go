package specification

import (
	"time"

	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"gorm.io/gorm"
)

// TenantOwnedBy restricts a query to one tenant's rows. Every query over
// tenant data must carry it.
type TenantOwnedBy struct {
	TenantID string
}

func (s TenantOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantID)
}

type ByDevelopment struct {
	DevelopmentID string
}

func (s ByDevelopment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("development_id = ?", s.DevelopmentID)
}

type ByUser struct {
	UserID string
}

func (s ByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByCorpus struct {
	CorpusID string
}

func (s ByCorpus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("corpus_id = ?", s.CorpusID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type SoldSince struct {
	Since time.Time
}

func (s SoldSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sold_at IS NOT NULL AND sold_at >= ?", s.Since)
}

// ForScope returns the tenant filter plus the development filter when the
// scope names one.
func ForScope(scope store.Scope) []Specification {
	specs := []Specification{TenantOwnedBy{TenantID: scope.TenantID}}
	if scope.HasDevelopment() {
		specs = append(specs, ByDevelopment{DevelopmentID: scope.DevelopmentID})
	}
	return specs
}
