package entity

import (
	"time"

	"github.com/google/uuid"
)

// AssistantExchange is the audit record of one question and its answer.
type AssistantExchange struct {
	Id            uuid.UUID
	TenantId      uuid.UUID
	UserId        uuid.UUID
	DevelopmentId *uuid.UUID
	Question      string
	Answer        string
	Layers        []string
	Functions     []string
	RouteSource   string
	IsRegulatory  bool
	SourceCount   int
	Outcome       string
	DurationMs    int64
	CreatedAt     time.Time
}
