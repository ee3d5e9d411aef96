package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	UnitStatusAvailable = "available"
	UnitStatusReserved  = "reserved"
	UnitStatusSold      = "sold"
)

type Development struct {
	Id         uuid.UUID
	TenantId   uuid.UUID
	Name       string
	Location   string
	Status     string
	TotalUnits int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type Unit struct {
	Id            uuid.UUID
	TenantId      uuid.UUID
	DevelopmentId uuid.UUID
	UnitNumber    string
	HouseType     string
	Status        string
	Price         float64
	Currency      string
	SoldAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type SalesPipelineEntry struct {
	Id             uuid.UUID
	TenantId       uuid.UUID
	DevelopmentId  uuid.UUID
	UnitId         uuid.UUID
	BuyerName      string
	Stage          string
	Value          float64
	StageChangedAt time.Time
	CreatedAt      time.Time
}

type AnalyticsCounter struct {
	Id            uuid.UUID
	TenantId      uuid.UUID
	DevelopmentId *uuid.UUID
	Name          string
	Value         int64
	Period        string
	Dimensions    map[string]string
	RecordedAt    time.Time
}
