package functions

import (
	"context"

	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

const (
	ChartPie  = "pie"
	ChartBar  = "bar"
	ChartLine = "line"
)

type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Chart is a renderer-agnostic chart payload.
type Chart struct {
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Result is the output of one live data function.
type Result struct {
	Name      string      `json:"name"`
	Title     string      `json:"title"`
	Summary   string      `json:"summary"`
	Data      interface{} `json:"data"`
	ChartData *Chart      `json:"chart_data,omitempty"`
}

type Action struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Records returned by a LiveDataSource. All are already restricted to the
// scope they were requested with.

type DevelopmentInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	TotalUnits int    `json:"total_units"`
}

type DevelopmentOverview struct {
	Developments []DevelopmentInfo `json:"developments"`
	TotalUnits   int               `json:"total_units"`
	UnitsSold    int               `json:"units_sold"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type StageCount struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

type HouseTypePrice struct {
	HouseType string  `json:"house_type"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
}

type PricingSummary struct {
	Currency    string           `json:"currency"`
	Listed      int              `json:"listed"`
	Min         float64          `json:"min"`
	Max         float64          `json:"max"`
	Average     float64          `json:"average"`
	ByHouseType []HouseTypePrice `json:"by_house_type"`
}

type Counter struct {
	Name   string `json:"name"`
	Value  int64  `json:"value"`
	Period string `json:"period"`
}

// LiveDataSource reads tenant records. Every method must restrict its
// query to scope.TenantID, and to scope.DevelopmentID when set.
type LiveDataSource interface {
	DevelopmentOverview(ctx context.Context, scope store.Scope) (*DevelopmentOverview, error)
	UnitStatusCounts(ctx context.Context, scope store.Scope) ([]StatusCount, error)
	SalesPipeline(ctx context.Context, scope store.Scope) ([]StageCount, error)
	SalesVelocity(ctx context.Context, scope store.Scope, weeks int) ([]PeriodCount, error)
	PricingSummary(ctx context.Context, scope store.Scope) (*PricingSummary, error)
	AnalyticsCounters(ctx context.Context, scope store.Scope) ([]Counter, error)
}
