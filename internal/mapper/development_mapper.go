package mapper

import (
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"

	"gorm.io/datatypes"
)

type DevelopmentMapper struct{}

func NewDevelopmentMapper() *DevelopmentMapper {
	return &DevelopmentMapper{}
}

func (m *DevelopmentMapper) ToEntity(d *model.Development) *entity.Development {
	if d == nil {
		return nil
	}
	return &entity.Development{
		Id:         d.Id,
		TenantId:   d.TenantId,
		Name:       d.Name,
		Location:   d.Location,
		Status:     d.Status,
		TotalUnits: d.TotalUnits,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  optionalTime(d.UpdatedAt),
	}
}

func (m *DevelopmentMapper) ToModel(d *entity.Development) *model.Development {
	if d == nil {
		return nil
	}
	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}
	return &model.Development{
		Id:         d.Id,
		TenantId:   d.TenantId,
		Name:       d.Name,
		Location:   d.Location,
		Status:     d.Status,
		TotalUnits: d.TotalUnits,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DevelopmentMapper) ToEntities(devs []*model.Development) []*entity.Development {
	entities := make([]*entity.Development, len(devs))
	for i, d := range devs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type UnitMapper struct{}

func NewUnitMapper() *UnitMapper {
	return &UnitMapper{}
}

func (m *UnitMapper) ToEntity(u *model.Unit) *entity.Unit {
	if u == nil {
		return nil
	}
	return &entity.Unit{
		Id:            u.Id,
		TenantId:      u.TenantId,
		DevelopmentId: u.DevelopmentId,
		UnitNumber:    u.UnitNumber,
		HouseType:     u.HouseType,
		Status:        u.Status,
		Price:         u.Price,
		Currency:      u.Currency,
		SoldAt:        u.SoldAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     optionalTime(u.UpdatedAt),
	}
}

func (m *UnitMapper) ToModel(u *entity.Unit) *model.Unit {
	if u == nil {
		return nil
	}
	var updatedAt time.Time
	if u.UpdatedAt != nil {
		updatedAt = *u.UpdatedAt
	}
	return &model.Unit{
		Id:            u.Id,
		TenantId:      u.TenantId,
		DevelopmentId: u.DevelopmentId,
		UnitNumber:    u.UnitNumber,
		HouseType:     u.HouseType,
		Status:        u.Status,
		Price:         u.Price,
		Currency:      u.Currency,
		SoldAt:        u.SoldAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *UnitMapper) ToEntities(units []*model.Unit) []*entity.Unit {
	entities := make([]*entity.Unit, len(units))
	for i, u := range units {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

type SalesPipelineMapper struct{}

func NewSalesPipelineMapper() *SalesPipelineMapper {
	return &SalesPipelineMapper{}
}

func (m *SalesPipelineMapper) ToEntity(p *model.SalesPipelineEntry) *entity.SalesPipelineEntry {
	if p == nil {
		return nil
	}
	return &entity.SalesPipelineEntry{
		Id:             p.Id,
		TenantId:       p.TenantId,
		DevelopmentId:  p.DevelopmentId,
		UnitId:         p.UnitId,
		BuyerName:      p.BuyerName,
		Stage:          p.Stage,
		Value:          p.Value,
		StageChangedAt: p.StageChangedAt,
		CreatedAt:      p.CreatedAt,
	}
}

func (m *SalesPipelineMapper) ToModel(p *entity.SalesPipelineEntry) *model.SalesPipelineEntry {
	if p == nil {
		return nil
	}
	return &model.SalesPipelineEntry{
		Id:             p.Id,
		TenantId:       p.TenantId,
		DevelopmentId:  p.DevelopmentId,
		UnitId:         p.UnitId,
		BuyerName:      p.BuyerName,
		Stage:          p.Stage,
		Value:          p.Value,
		StageChangedAt: p.StageChangedAt,
		CreatedAt:      p.CreatedAt,
	}
}

type AnalyticsCounterMapper struct{}

func NewAnalyticsCounterMapper() *AnalyticsCounterMapper {
	return &AnalyticsCounterMapper{}
}

func (m *AnalyticsCounterMapper) ToEntity(c *model.AnalyticsCounter) *entity.AnalyticsCounter {
	if c == nil {
		return nil
	}
	return &entity.AnalyticsCounter{
		Id:            c.Id,
		TenantId:      c.TenantId,
		DevelopmentId: c.DevelopmentId,
		Name:          c.Name,
		Value:         c.Value,
		Period:        c.Period,
		Dimensions:    c.Dimensions.Data(),
		RecordedAt:    c.RecordedAt,
	}
}

func (m *AnalyticsCounterMapper) ToModel(c *entity.AnalyticsCounter) *model.AnalyticsCounter {
	if c == nil {
		return nil
	}
	return &model.AnalyticsCounter{
		Id:            c.Id,
		TenantId:      c.TenantId,
		DevelopmentId: c.DevelopmentId,
		Name:          c.Name,
		Value:         c.Value,
		Period:        c.Period,
		Dimensions:    datatypes.NewJSONType(c.Dimensions),
		RecordedAt:    c.RecordedAt,
	}
}

func (m *AnalyticsCounterMapper) ToEntities(counters []*model.AnalyticsCounter) []*entity.AnalyticsCounter {
	entities := make([]*entity.AnalyticsCounter, len(counters))
	for i, c := range counters {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
