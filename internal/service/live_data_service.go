package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/google/uuid"
)

// liveDataService reads tenant records for the function registry. Every
// query is built from specification.ForScope, so rows of other tenants and
// other developments are never selected.
type liveDataService struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

var _ functions.LiveDataSource = &liveDataService{}

func NewLiveDataService(uowFactory unitofwork.RepositoryFactory) functions.LiveDataSource {
	return &liveDataService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *liveDataService) DevelopmentOverview(ctx context.Context, scope store.Scope) (*functions.DevelopmentOverview, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	devSpecs := []specification.Specification{specification.TenantOwnedBy{TenantID: scope.TenantID}}
	if scope.HasDevelopment() {
		id, err := uuid.Parse(scope.DevelopmentID)
		if err != nil {
			return nil, ErrInvalidDevelopment
		}
		devSpecs = append(devSpecs, specification.ByID{ID: id})
	}

	developments, err := uow.DevelopmentRepository().FindAll(ctx, devSpecs...)
	if err != nil {
		return nil, fmt.Errorf("load developments: %w", err)
	}
	statuses, err := uow.UnitRepository().CountByStatus(ctx, specification.ForScope(scope)...)
	if err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}

	overview := &functions.DevelopmentOverview{
		Developments: make([]functions.DevelopmentInfo, 0, len(developments)),
	}
	for _, d := range developments {
		overview.Developments = append(overview.Developments, developmentInfo(d))
	}
	for _, st := range statuses {
		overview.TotalUnits += st.Count
		if st.Status == entity.UnitStatusSold {
			overview.UnitsSold += st.Count
		}
	}
	return overview, nil
}

func developmentInfo(d *entity.Development) functions.DevelopmentInfo {
	return functions.DevelopmentInfo{
		ID:         d.Id.String(),
		Name:       d.Name,
		Location:   d.Location,
		Status:     d.Status,
		TotalUnits: d.TotalUnits,
	}
}

func (s *liveDataService) UnitStatusCounts(ctx context.Context, scope store.Scope) ([]functions.StatusCount, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	totals, err := uow.UnitRepository().CountByStatus(ctx, specification.ForScope(scope)...)
	if err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}

	counts := make([]functions.StatusCount, len(totals))
	for i, t := range totals {
		counts[i] = functions.StatusCount{Status: t.Status, Count: t.Count}
	}
	return counts, nil
}

func (s *liveDataService) SalesPipeline(ctx context.Context, scope store.Scope) ([]functions.StageCount, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	totals, err := uow.SalesPipelineRepository().CountByStage(ctx, specification.ForScope(scope)...)
	if err != nil {
		return nil, fmt.Errorf("count pipeline: %w", err)
	}

	stages := make([]functions.StageCount, len(totals))
	for i, t := range totals {
		stages[i] = functions.StageCount{Stage: t.Stage, Count: t.Count, Value: t.Value}
	}
	return stages, nil
}

func (s *liveDataService) SalesVelocity(ctx context.Context, scope store.Scope, weeks int) ([]functions.PeriodCount, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	since := s.now().UTC().AddDate(0, 0, -7*weeks)
	totals, err := uow.UnitRepository().SoldPerWeek(ctx, since, specification.ForScope(scope)...)
	if err != nil {
		return nil, fmt.Errorf("sales per week: %w", err)
	}

	periods := make([]functions.PeriodCount, len(totals))
	for i, t := range totals {
		periods[i] = functions.PeriodCount{Period: t.Period, Count: t.Count}
	}
	return periods, nil
}

func (s *liveDataService) PricingSummary(ctx context.Context, scope store.Scope) (*functions.PricingSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := specification.ForScope(scope)

	stats, err := uow.UnitRepository().PriceStats(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("price stats: %w", err)
	}
	byType, err := uow.UnitRepository().PriceByHouseType(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("price by house type: %w", err)
	}

	summary := &functions.PricingSummary{
		Currency:    stats.Currency,
		Listed:      stats.Listed,
		Min:         stats.Min,
		Max:         stats.Max,
		Average:     stats.Average,
		ByHouseType: make([]functions.HouseTypePrice, len(byType)),
	}
	for i, h := range byType {
		summary.ByHouseType[i] = functions.HouseTypePrice{HouseType: h.HouseType, Count: h.Count, Average: h.Average}
	}
	return summary, nil
}

func (s *liveDataService) AnalyticsCounters(ctx context.Context, scope store.Scope) ([]functions.Counter, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := append(specification.ForScope(scope), specification.OrderBy{Field: "recorded_at", Desc: true})
	rows, err := uow.AnalyticsCounterRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}

	// Latest value per counter name and period.
	seen := make(map[string]bool, len(rows))
	counters := make([]functions.Counter, 0, len(rows))
	for _, r := range rows {
		key := r.Name + "|" + r.Period
		if seen[key] {
			continue
		}
		seen[key] = true
		counters = append(counters, functions.Counter{Name: r.Name, Value: r.Value, Period: r.Period})
	}
	return counters, nil
}
