package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssistantExchange struct {
	Id            uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	UserId        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	DevelopmentId *uuid.UUID                  `gorm:"type:uuid;index"`
	Question      string                      `gorm:"type:text;not null"`
	Answer        string                      `gorm:"type:text"`
	Layers        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Functions     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	RouteSource   string                      `gorm:"type:varchar(16)"`
	IsRegulatory  bool                        `gorm:"default:false"`
	SourceCount   int                         `gorm:"default:0"`
	Outcome       string                      `gorm:"type:varchar(16);index"`
	DurationMs    int64                       `gorm:"default:0"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime;index"`
}

func (AssistantExchange) TableName() string {
	return "assistant_exchanges"
}
