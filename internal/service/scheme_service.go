package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var (
	ErrDevelopmentNotFound = errors.New("development not found")
	ErrInvalidDevelopment  = errors.New("development id is not a valid uuid")

	// ErrScopeUnverified means the development's owner could not be checked.
	ErrScopeUnverified = errors.New("development ownership could not be verified")
)

const schemeCachePrefix = "assistant:scheme:"

type ISchemeService interface {
	// Get returns the scheme context for scope. A development that does not
	// belong to the scope's tenant yields ErrDevelopmentNotFound.
	Get(ctx context.Context, scope store.Scope) (*store.SchemeContext, error)
}

type schemeService struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
	local      *cache.Cache
	ttl        time.Duration
	logger     logger.ILogger
}

// NewSchemeService caches summaries in Redis when rdb is set, and always in
// process memory. Both tiers use the same short TTL.
func NewSchemeService(uowFactory unitofwork.RepositoryFactory, rdb *redis.Client, ttl time.Duration, log logger.ILogger) ISchemeService {
	return &schemeService{
		uowFactory: uowFactory,
		rdb:        rdb,
		local:      cache.New(ttl, 2*ttl),
		ttl:        ttl,
		logger:     log,
	}
}

func schemeCacheKey(scope store.Scope) string {
	return schemeCachePrefix + scope.TenantID + ":" + scope.DevelopmentID
}

func (s *schemeService) Get(ctx context.Context, scope store.Scope) (*store.SchemeContext, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	key := schemeCacheKey(scope)

	if x, found := s.local.Get(key); found {
		return x.(*store.SchemeContext), nil
	}
	if cached := s.fromRedis(ctx, key); cached != nil {
		s.local.Set(key, cached, cache.DefaultExpiration)
		return cached, nil
	}

	scheme, err := s.build(ctx, scope)
	if err != nil {
		return nil, err
	}

	s.local.Set(key, scheme, cache.DefaultExpiration)
	s.toRedis(ctx, key, scheme)
	return scheme, nil
}

func (s *schemeService) fromRedis(ctx context.Context, key string) *store.SchemeContext {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("SCHEME", "Redis read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return nil
	}
	var scheme store.SchemeContext
	if err := json.Unmarshal(raw, &scheme); err != nil {
		return nil
	}
	return &scheme
}

func (s *schemeService) toRedis(ctx context.Context, key string, scheme *store.SchemeContext) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(scheme)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("SCHEME", "Redis write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (s *schemeService) build(ctx context.Context, scope store.Scope) (*store.SchemeContext, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tenant := specification.TenantOwnedBy{TenantID: scope.TenantID}

	var developments []*entity.Development
	if scope.HasDevelopment() {
		id, err := uuid.Parse(scope.DevelopmentID)
		if err != nil {
			return nil, ErrInvalidDevelopment
		}
		dev, err := uow.DevelopmentRepository().FindOne(ctx, tenant, specification.ByID{ID: id})
		if err != nil {
			return nil, fmt.Errorf("load development: %w", err)
		}
		if dev == nil {
			return nil, ErrDevelopmentNotFound
		}
		developments = []*entity.Development{dev}
	} else {
		all, err := uow.DevelopmentRepository().FindAll(ctx, tenant)
		if err != nil {
			return nil, fmt.Errorf("load developments: %w", err)
		}
		developments = all
	}

	specs := specification.ForScope(scope)
	statuses, err := uow.UnitRepository().CountByStatus(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}
	stages, err := uow.SalesPipelineRepository().CountByStage(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("count pipeline: %w", err)
	}

	snapshot := store.SchemeSnapshot{
		TenantID:         scope.TenantID,
		DevelopmentID:    scope.DevelopmentID,
		DevelopmentCount: len(developments),
		UnitsByStatus:    make(map[string]int, len(statuses)),
		PipelineByStage:  make(map[string]int, len(stages)),
	}
	if scope.HasDevelopment() {
		snapshot.DevelopmentName = developments[0].Name
	}
	for _, st := range statuses {
		snapshot.UnitsByStatus[st.Status] = st.Count
		snapshot.TotalUnits += st.Count
	}
	stageOrder := make([]string, 0, len(stages))
	for _, st := range stages {
		snapshot.PipelineByStage[st.Stage] = st.Count
		stageOrder = append(stageOrder, st.Stage)
	}

	return &store.SchemeContext{
		Summary:  summarize(developments, snapshot, stageOrder),
		Snapshot: snapshot,
	}, nil
}

func summarize(developments []*entity.Development, snap store.SchemeSnapshot, stageOrder []string) string {
	var b strings.Builder

	switch {
	case snap.HasDevelopment():
		d := developments[0]
		fmt.Fprintf(&b, "Development: %s", d.Name)
		if d.Location != "" {
			fmt.Fprintf(&b, " (%s)", d.Location)
		}
		if d.Status != "" {
			fmt.Fprintf(&b, ", status %s", d.Status)
		}
		b.WriteString(".\n")
	case len(developments) == 0:
		b.WriteString("No developments on record for this account.\n")
	default:
		names := make([]string, len(developments))
		for i, d := range developments {
			names[i] = d.Name
		}
		fmt.Fprintf(&b, "Portfolio: %d developments (%s).\n", len(developments), strings.Join(names, ", "))
	}

	statuses := make([]string, 0, len(snap.UnitsByStatus))
	for status := range snap.UnitsByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = fmt.Sprintf("%d %s", snap.UnitsByStatus[status], status)
	}
	fmt.Fprintf(&b, "Units: %d total", snap.TotalUnits)
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString(".\n")

	if len(stageOrder) > 0 {
		parts = parts[:0]
		for _, stage := range stageOrder {
			parts = append(parts, fmt.Sprintf("%s %d", stage, snap.PipelineByStage[stage]))
		}
		fmt.Fprintf(&b, "Sales pipeline: %s.", strings.Join(parts, ", "))
	}

	return strings.TrimSpace(b.String())
}
