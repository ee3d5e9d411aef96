package functions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

const (
	FnDevelopmentOverview = "get_development_overview"
	FnUnitStatusBreakdown = "get_unit_status_breakdown"
	FnSalesPipeline       = "get_sales_pipeline"
	FnSalesVelocity       = "get_sales_velocity"
	FnPricingSummary      = "get_pricing_summary"
	FnAnalyticsCounters   = "get_analytics_counters"
)

const velocityWeeks = 12

func builtins() []Definition {
	return []Definition{
		{
			Name:   FnDevelopmentOverview,
			Title:  "Development overview",
			Action: &ActionTemplate{Label: "View development", Href: "/developments/{development}", TenantHref: "/developments"},
			Run:    developmentOverview,
		},
		{
			Name:   FnUnitStatusBreakdown,
			Title:  "Unit status breakdown",
			Action: &ActionTemplate{Label: "View units", Href: "/developments/{development}/units", TenantHref: "/units"},
			Run:    unitStatusBreakdown,
		},
		{
			Name:   FnSalesPipeline,
			Title:  "Sales pipeline",
			Action: &ActionTemplate{Label: "Open sales pipeline", Href: "/developments/{development}/pipeline", TenantHref: "/pipeline"},
			Run:    salesPipeline,
		},
		{
			Name:   FnSalesVelocity,
			Title:  "Sales velocity",
			Action: &ActionTemplate{Label: "Open sales pipeline", Href: "/developments/{development}/pipeline", TenantHref: "/pipeline"},
			Run:    salesVelocity,
		},
		{
			Name:   FnPricingSummary,
			Title:  "Pricing summary",
			Action: &ActionTemplate{Label: "View price list", Href: "/developments/{development}/pricing", TenantHref: "/pricing"},
			Run:    pricingSummary,
		},
		{
			Name:   FnAnalyticsCounters,
			Title:  "Analytics",
			Action: &ActionTemplate{Label: "Open analytics", Href: "/developments/{development}/analytics", TenantHref: "/analytics"},
			Run:    analyticsCounters,
		},
	}
}

func developmentOverview(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error) {
	overview, err := src.DevelopmentOverview(ctx, scope)
	if err != nil {
		return nil, err
	}

	var summary string
	switch len(overview.Developments) {
	case 0:
		summary = "No developments found."
	case 1:
		d := overview.Developments[0]
		summary = fmt.Sprintf("%s (%s) is %s with %d units, %d sold.", d.Name, d.Location, d.Status, overview.TotalUnits, overview.UnitsSold)
	default:
		names := make([]string, len(overview.Developments))
		for i, d := range overview.Developments {
			names[i] = d.Name
		}
		summary = fmt.Sprintf("%d developments (%s) with %d units in total, %d sold.",
			len(overview.Developments), strings.Join(names, ", "), overview.TotalUnits, overview.UnitsSold)
	}

	return &Result{Summary: summary, Data: overview}, nil
}

func unitStatusBreakdown(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error) {
	counts, err := src.UnitStatusCounts(ctx, scope)
	if err != nil {
		return nil, err
	}

	total := 0
	parts := make([]string, 0, len(counts))
	labels := make([]string, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for _, c := range counts {
		total += c.Count
		parts = append(parts, fmt.Sprintf("%d %s", c.Count, c.Status))
		labels = append(labels, c.Status)
		values = append(values, float64(c.Count))
	}

	res := &Result{
		Summary: fmt.Sprintf("%d units: %s.", total, joinOrNone(parts)),
		Data:    counts,
	}
	if total > 0 {
		res.ChartData = &Chart{
			Kind:   ChartPie,
			Title:  "Units by status",
			Labels: labels,
			Series: []Series{{Name: "Units", Values: values}},
		}
	}
	return res, nil
}

func salesPipeline(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error) {
	stages, err := src.SalesPipeline(ctx, scope)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(stages))
	labels := make([]string, 0, len(stages))
	counts := make([]float64, 0, len(stages))
	var value float64
	for _, s := range stages {
		parts = append(parts, fmt.Sprintf("%s %d", s.Stage, s.Count))
		labels = append(labels, s.Stage)
		counts = append(counts, float64(s.Count))
		value += s.Value
	}

	res := &Result{
		Summary: fmt.Sprintf("Pipeline by stage: %s. Total value €%.0f.", joinOrNone(parts), value),
		Data:    stages,
	}
	if len(stages) > 0 {
		res.ChartData = &Chart{
			Kind:   ChartBar,
			Title:  "Sales pipeline",
			Labels: labels,
			Series: []Series{{Name: "Buyers", Values: counts}},
		}
	}
	return res, nil
}

func salesVelocity(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error) {
	periods, err := src.SalesVelocity(ctx, scope, velocityWeeks)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(periods))
	values := make([]float64, len(periods))
	total := 0
	for i, p := range periods {
		labels[i] = p.Period
		values[i] = float64(p.Count)
		total += p.Count
	}

	res := &Result{Data: periods}
	if len(periods) == 0 {
		res.Summary = fmt.Sprintf("No sales recorded in the last %d weeks.", velocityWeeks)
		return res, nil
	}
	res.Summary = fmt.Sprintf("%d sales over the last %d weeks, %.1f per week on average.",
		total, len(periods), float64(total)/float64(len(periods)))
	res.ChartData = &Chart{
		Kind:   ChartLine,
		Title:  "Sales per week",
		Labels: labels,
		Series: []Series{{Name: "Sales", Values: values}},
	}
	return res, nil
}

func pricingSummary(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error) {
	p, err := src.PricingSummary(ctx, scope)
	if err != nil {
		return nil, err
	}
	if p.Listed == 0 {
		return &Result{Summary: "No priced units.", Data: p}, nil
	}

	summary := fmt.Sprintf("%d priced units, %s%.0f to %s%.0f, average %s%.0f.",
		p.Listed, currencySymbol(p.Currency), p.Min, currencySymbol(p.Currency), p.Max, currencySymbol(p.Currency), p.Average)
	return &Result{Summary: summary, Data: p}, nil
}

func analyticsCounters(ctx context.Context, src LiveDataSource, scope store.Scope) (*Result, error) {
	counters, err := src.AnalyticsCounters(ctx, scope)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(counters))
	for _, c := range counters {
		parts = append(parts, fmt.Sprintf("%s %d (%s)", c.Name, c.Value, c.Period))
	}
	return &Result{Summary: "Counters: " + joinOrNone(parts) + ".", Data: counters}, nil
}

func joinOrNone(parts []string) string {
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code + " "
	}
}
