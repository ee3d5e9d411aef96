package implementation

import (
	"context"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/mapper"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/contract"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"

	"gorm.io/gorm"
)

type UnitRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UnitMapper
}

func NewUnitRepository(db *gorm.DB) contract.UnitRepository {
	return &UnitRepositoryImpl{
		db:     db,
		mapper: mapper.NewUnitMapper(),
	}
}

func (r *UnitRepositoryImpl) scoped(ctx context.Context, specs ...specification.Specification) *gorm.DB {
	return applySpecifications(r.db.WithContext(ctx).Model(&model.Unit{}), specs...)
}

func (r *UnitRepositoryImpl) CreateBulk(ctx context.Context, units []*entity.Unit) error {
	models := make([]*model.Unit, len(units))
	for i, u := range units {
		models[i] = r.mapper.ToModel(u)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*units[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *UnitRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Unit, error) {
	var models []*model.Unit
	if err := r.scoped(ctx, specs...).Order("unit_number ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *UnitRepositoryImpl) CountByStatus(ctx context.Context, specs ...specification.Specification) ([]contract.StatusTotal, error) {
	var rows []contract.StatusTotal
	err := r.scoped(ctx, specs...).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *UnitRepositoryImpl) SoldPerWeek(ctx context.Context, since time.Time, specs ...specification.Specification) ([]contract.PeriodTotal, error) {
	var rows []contract.PeriodTotal
	specs = append(specs, specification.SoldSince{Since: since})
	err := r.scoped(ctx, specs...).
		Select(`to_char(date_trunc('week', sold_at), 'IYYY-"W"IW') AS period, COUNT(*) AS count`).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *UnitRepositoryImpl) PriceStats(ctx context.Context, specs ...specification.Specification) (*contract.PriceStats, error) {
	var row struct {
		Currency string
		Listed   int
		Min      float64
		Max      float64
		Average  float64
	}
	err := r.scoped(ctx, specs...).
		Select("COALESCE(MAX(currency), 'EUR') AS currency, COUNT(*) AS listed, COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max, COALESCE(AVG(price), 0) AS average").
		Where("price > 0").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &contract.PriceStats{
		Currency: row.Currency,
		Listed:   row.Listed,
		Min:      row.Min,
		Max:      row.Max,
		Average:  row.Average,
	}, nil
}

func (r *UnitRepositoryImpl) PriceByHouseType(ctx context.Context, specs ...specification.Specification) ([]contract.HouseTypeTotal, error) {
	var rows []contract.HouseTypeTotal
	err := r.scoped(ctx, specs...).
		Select("house_type, COUNT(*) AS count, AVG(price) AS average").
		Where("price > 0").
		Group("house_type").
		Order("house_type ASC").
		Scan(&rows).Error
	return rows, err
}
