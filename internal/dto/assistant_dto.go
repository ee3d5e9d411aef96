package dto

import (
	"time"

	"github.com/google/uuid"
)

const MaxHistoryTurns = 50

type ChatTurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Message       string        `json:"message" validate:"required,notblank,max=4000"`
	DevelopmentId *uuid.UUID    `json:"development_id,omitempty"`
	History       []ChatTurnDTO `json:"history,omitempty" validate:"max=50,dive"`
}

type LayersResponse struct {
	Layers    []string `json:"layers"`
	Functions []string `json:"functions"`
	Prefixes  []string `json:"prefixes"`
}

type ExchangeResponse struct {
	Id            uuid.UUID  `json:"id"`
	DevelopmentId *uuid.UUID `json:"development_id,omitempty"`
	Question      string     `json:"question"`
	Answer        string     `json:"answer"`
	Layers        []string   `json:"layers"`
	Functions     []string   `json:"functions"`
	RouteSource   string     `json:"route_source"`
	IsRegulatory  bool       `json:"is_regulatory"`
	SourceCount   int        `json:"source_count"`
	Outcome       string     `json:"outcome"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Exchange history paging. Larger limits are clamped, not rejected.
const (
	DefaultExchangesLimit = 20
	MaxExchangesLimit     = 100
)

type GetExchangesRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// ExchangeCompletedMessage is published on the in-process bus once an answer
// stream has ended.
type ExchangeCompletedMessage struct {
	TenantId      uuid.UUID  `json:"tenant_id"`
	UserId        uuid.UUID  `json:"user_id"`
	DevelopmentId *uuid.UUID `json:"development_id,omitempty"`
	Question      string     `json:"question"`
	Answer        string     `json:"answer"`
	Layers        []string   `json:"layers"`
	Functions     []string   `json:"functions"`
	RouteSource   string     `json:"route_source"`
	IsRegulatory  bool       `json:"is_regulatory"`
	SourceCount   int        `json:"source_count"`
	Outcome       string     `json:"outcome"`
	DurationMs    int64      `json:"duration_ms"`
	CompletedAt   time.Time  `json:"completed_at"`
}
