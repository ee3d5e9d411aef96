package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Development struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name       string         `gorm:"type:varchar(255);not null"`
	Location   string         `gorm:"type:varchar(255)"`
	Status     string         `gorm:"type:varchar(32);default:'planning'"`
	TotalUnits int            `gorm:"default:0"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Development) TableName() string {
	return "developments"
}

type Unit struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	DevelopmentId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UnitNumber    string         `gorm:"type:varchar(32);not null"`
	HouseType     string         `gorm:"type:varchar(64)"`
	Status        string         `gorm:"type:varchar(32);not null;default:'available';index"`
	Price         float64        `gorm:"type:numeric(12,2);default:0"`
	Currency      string         `gorm:"type:varchar(3);default:'EUR'"`
	SoldAt        *time.Time     `gorm:"index"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Unit) TableName() string {
	return "units"
}

type SalesPipelineEntry struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	DevelopmentId  uuid.UUID      `gorm:"type:uuid;not null;index"`
	UnitId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	BuyerName      string         `gorm:"type:varchar(255)"`
	Stage          string         `gorm:"type:varchar(32);not null;index"`
	Value          float64        `gorm:"type:numeric(12,2);default:0"`
	StageChangedAt time.Time      `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (SalesPipelineEntry) TableName() string {
	return "sales_pipeline_entries"
}

type AnalyticsCounter struct {
	Id            uuid.UUID                             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId      uuid.UUID                             `gorm:"type:uuid;not null;index"`
	DevelopmentId *uuid.UUID                            `gorm:"type:uuid;index"`
	Name          string                                `gorm:"type:varchar(64);not null"`
	Value         int64                                 `gorm:"default:0"`
	Period        string                                `gorm:"type:varchar(16);default:'30d'"`
	Dimensions    datatypes.JSONType[map[string]string] `gorm:"type:jsonb"`
	RecordedAt    time.Time                             `gorm:"autoCreateTime"`
}

func (AnalyticsCounter) TableName() string {
	return "analytics_counters"
}
