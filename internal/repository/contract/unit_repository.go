package contract

import (
	"context"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
)

type StatusTotal struct {
	Status string
	Count  int
}

type PeriodTotal struct {
	Period string
	Count  int
}

type PriceStats struct {
	Currency string
	Listed   int
	Min      float64
	Max      float64
	Average  float64
}

type HouseTypeTotal struct {
	HouseType string
	Count     int
	Average   float64
}

type UnitRepository interface {
	CreateBulk(ctx context.Context, units []*entity.Unit) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Unit, error)
	CountByStatus(ctx context.Context, specs ...specification.Specification) ([]StatusTotal, error)
	// SoldPerWeek buckets sales since the given time by ISO week, oldest first.
	SoldPerWeek(ctx context.Context, since time.Time, specs ...specification.Specification) ([]PeriodTotal, error)
	PriceStats(ctx context.Context, specs ...specification.Specification) (*PriceStats, error)
	PriceByHouseType(ctx context.Context, specs ...specification.Specification) ([]HouseTypeTotal, error)
}
