package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/pkg/ai/router"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

// liveSource serves canned data; failing and hanging methods are configurable.
type liveSource struct {
	fail  map[string]bool
	hang  map[string]bool
	delay map[string]time.Duration
	block chan struct{}
}

func newLiveSource() *liveSource {
	return &liveSource{
		fail:  map[string]bool{},
		hang:  map[string]bool{},
		delay: map[string]time.Duration{},
		block: make(chan struct{}),
	}
}

func (s *liveSource) gate(name string) error {
	if d := s.delay[name]; d > 0 {
		time.Sleep(d)
	}
	if s.hang[name] {
		<-s.block
	}
	if s.fail[name] {
		return errors.New(name + " exploded")
	}
	return nil
}

func (s *liveSource) DevelopmentOverview(ctx context.Context, scope store.Scope) (*functions.DevelopmentOverview, error) {
	if err := s.gate(functions.FnDevelopmentOverview); err != nil {
		return nil, err
	}
	return &functions.DevelopmentOverview{Developments: []functions.DevelopmentInfo{{ID: scope.DevelopmentID, Name: "Dev-" + scope.TenantID}}}, nil
}

func (s *liveSource) UnitStatusCounts(ctx context.Context, scope store.Scope) ([]functions.StatusCount, error) {
	if err := s.gate(functions.FnUnitStatusBreakdown); err != nil {
		return nil, err
	}
	return []functions.StatusCount{{Status: "sold", Count: 3}}, nil
}

func (s *liveSource) SalesPipeline(ctx context.Context, scope store.Scope) ([]functions.StageCount, error) {
	if err := s.gate(functions.FnSalesPipeline); err != nil {
		return nil, err
	}
	return []functions.StageCount{{Stage: "reserved", Count: 2}}, nil
}

func (s *liveSource) SalesVelocity(ctx context.Context, scope store.Scope, weeks int) ([]functions.PeriodCount, error) {
	if err := s.gate(functions.FnSalesVelocity); err != nil {
		return nil, err
	}
	return []functions.PeriodCount{{Period: "W1", Count: 1}}, nil
}

func (s *liveSource) PricingSummary(ctx context.Context, scope store.Scope) (*functions.PricingSummary, error) {
	if err := s.gate(functions.FnPricingSummary); err != nil {
		return nil, err
	}
	return &functions.PricingSummary{Listed: 1, Min: 1, Max: 1, Average: 1}, nil
}

func (s *liveSource) AnalyticsCounters(ctx context.Context, scope store.Scope) ([]functions.Counter, error) {
	if err := s.gate(functions.FnAnalyticsCounters); err != nil {
		return nil, err
	}
	return []functions.Counter{{Name: "views", Value: 1}}, nil
}

type recordingSearcher struct {
	mu      sync.Mutex
	corpora []string
	byCorp  map[string][]store.DocumentChunk
}

func (r *recordingSearcher) Search(ctx context.Context, query, corpusID string, k int) []store.DocumentChunk {
	r.mu.Lock()
	r.corpora = append(r.corpora, corpusID)
	r.mu.Unlock()
	return append([]store.DocumentChunk(nil), r.byCorp[corpusID]...)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FunctionTimeout = 100 * time.Millisecond
	cfg.RetrievalTimeout = 100 * time.Millisecond
	cfg.RegulatoryCorpusID = "regulatory"
	return cfg
}

func allFunctions() []string {
	return []string{
		functions.FnDevelopmentOverview,
		functions.FnUnitStatusBreakdown,
		functions.FnSalesPipeline,
		functions.FnSalesVelocity,
		functions.FnPricingSummary,
		functions.FnAnalyticsCounters,
	}
}

func names(results []functions.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}

var scopeD1 = store.Scope{TenantID: "t1", DevelopmentID: "d1"}

func TestExecute_PartialFailureTolerance(t *testing.T) {
	src := newLiveSource()
	src.fail[functions.FnSalesPipeline] = true
	e := NewExecutor(functions.NewRegistry(src, ""), &recordingSearcher{}, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:        router.NewLayerSet(router.LayerLive),
		FunctionNames: allFunctions(),
	})

	assert.Len(t, out.Functions, len(allFunctions())-1)
	assert.NotContains(t, names(out.Functions), functions.FnSalesPipeline)
}

func TestExecute_DispatchOrderIndependentOfCompletion(t *testing.T) {
	src := newLiveSource()
	src.delay[functions.FnDevelopmentOverview] = 40 * time.Millisecond
	e := NewExecutor(functions.NewRegistry(src, ""), &recordingSearcher{}, testConfig(), logger.NewNopLogger())

	order := []string{functions.FnDevelopmentOverview, functions.FnPricingSummary, functions.FnUnitStatusBreakdown}
	out := e.Execute(context.Background(), scopeD1, router.Decision{Layers: router.NewLayerSet(router.LayerLive), FunctionNames: order})

	assert.Equal(t, order, names(out.Functions))
}

func TestExecute_FirstChartInDispatchOrderWins(t *testing.T) {
	src := newLiveSource()
	src.delay[functions.FnSalesVelocity] = 30 * time.Millisecond
	e := NewExecutor(functions.NewRegistry(src, ""), &recordingSearcher{}, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:        router.NewLayerSet(router.LayerLive),
		FunctionNames: []string{functions.FnSalesVelocity, functions.FnUnitStatusBreakdown, functions.FnSalesPipeline},
	})

	require.NotNil(t, out.Chart)
	assert.Equal(t, functions.ChartLine, out.Chart.Kind)
}

func TestExecute_HungFunctionDoesNotBlockOthers(t *testing.T) {
	src := newLiveSource()
	src.hang[functions.FnAnalyticsCounters] = true
	defer close(src.block)
	e := NewExecutor(functions.NewRegistry(src, ""), &recordingSearcher{}, testConfig(), logger.NewNopLogger())

	start := time.Now()
	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:        router.NewLayerSet(router.LayerLive),
		FunctionNames: []string{functions.FnAnalyticsCounters, functions.FnPricingSummary},
	})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{functions.FnPricingSummary}, names(out.Functions))
}

func TestExecute_UnknownFunctionsSkipped(t *testing.T) {
	e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), &recordingSearcher{}, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:        router.NewLayerSet(router.LayerLive),
		FunctionNames: []string{"get_weather", functions.FnPricingSummary, functions.FnPricingSummary},
	})

	assert.Equal(t, []string{functions.FnPricingSummary}, names(out.Functions))
}

func TestExecute_RetrievalCorpora(t *testing.T) {
	s := &recordingSearcher{byCorp: map[string][]store.DocumentChunk{
		"d1":         {{Title: "Spec", Score: 0.5, CorpusID: "d1"}},
		"regulatory": {{Title: "TGD B", Score: 0.8, CorpusID: "regulatory"}},
	}}
	e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), s, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:         router.NewLayerSet(router.LayerTenantDocs, router.LayerDevelopmentDocs, router.LayerRegulatoryDocs),
		RetrievalQuery: "fire stopping",
		IsRegulatory:   true,
	})

	assert.ElementsMatch(t, []string{"d1", "regulatory"}, s.corpora)
	require.Len(t, out.Chunks, 2)
	assert.Equal(t, "TGD B", out.Chunks[0].Title)
	assert.Equal(t, store.SourceRegulation, out.Chunks[0].SourceType)
	assert.Equal(t, store.SourceDevelopmentDocument, out.Chunks[1].SourceType)
}

func TestExecute_SharedCorpusSourceType(t *testing.T) {
	tests := []struct {
		name   string
		scope  store.Scope
		layers []router.Layer
		corpus string
		want   string
	}{
		{"tenant and development docs in a development", scopeD1, []router.Layer{router.LayerTenantDocs, router.LayerDevelopmentDocs}, "d1", store.SourceDevelopmentDocument},
		{"development docs only", scopeD1, []router.Layer{router.LayerDevelopmentDocs}, "d1", store.SourceDevelopmentDocument},
		{"tenant docs only", scopeD1, []router.Layer{router.LayerTenantDocs}, "d1", store.SourceTenantDocument},
		{"tenant wide", store.Scope{TenantID: "t9"}, []router.Layer{router.LayerTenantDocs, router.LayerDevelopmentDocs}, "t9", store.SourceTenantDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSearcher{byCorp: map[string][]store.DocumentChunk{
				tt.corpus: {{Title: "Handbook", Score: 0.6, CorpusID: tt.corpus}},
			}}
			e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), s, testConfig(), logger.NewNopLogger())

			out := e.Execute(context.Background(), tt.scope, router.Decision{
				Layers:         router.NewLayerSet(tt.layers...),
				RetrievalQuery: "handbook",
			})

			assert.Equal(t, []string{tt.corpus}, s.corpora)
			require.Len(t, out.Chunks, 1)
			assert.Equal(t, tt.want, out.Chunks[0].SourceType)
		})
	}
}

func TestExecute_TenantCorpusWithoutDevelopment(t *testing.T) {
	s := &recordingSearcher{}
	e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), s, testConfig(), logger.NewNopLogger())

	e.Execute(context.Background(), store.Scope{TenantID: "t9"}, router.Decision{
		Layers:         router.NewLayerSet(router.LayerTenantDocs),
		RetrievalQuery: "warranty",
	})

	assert.Equal(t, []string{"t9"}, s.corpora)
}

func TestExecute_MergedChunksCappedAtTopK(t *testing.T) {
	var a, b []store.DocumentChunk
	for i := 0; i < 8; i++ {
		a = append(a, store.DocumentChunk{Title: "a", Score: 0.1 * float32(i), CorpusID: "d1"})
		b = append(b, store.DocumentChunk{Title: "b", Score: 0.05 * float32(i), CorpusID: "regulatory"})
	}
	s := &recordingSearcher{byCorp: map[string][]store.DocumentChunk{"d1": a, "regulatory": b}}
	e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), s, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:         router.NewLayerSet(router.LayerTenantDocs, router.LayerRegulatoryDocs),
		RetrievalQuery: "q",
		IsRegulatory:   true,
	})

	require.Len(t, out.Chunks, 8)
	for i := 1; i < len(out.Chunks); i++ {
		assert.GreaterOrEqual(t, out.Chunks[i-1].Score, out.Chunks[i].Score)
	}
}

func TestExecute_EmptyDecision(t *testing.T) {
	s := &recordingSearcher{}
	e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), s, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{})

	require.NotNil(t, out)
	assert.Empty(t, out.Functions)
	assert.Empty(t, out.Chunks)
	assert.Empty(t, s.corpora)
}

func TestExecute_Actions(t *testing.T) {
	e := NewExecutor(functions.NewRegistry(newLiveSource(), ""), &recordingSearcher{}, testConfig(), logger.NewNopLogger())

	out := e.Execute(context.Background(), scopeD1, router.Decision{
		Layers:        router.NewLayerSet(router.LayerLive),
		FunctionNames: []string{functions.FnSalesPipeline, functions.FnSalesVelocity},
	})
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "/developments/d1/pipeline", out.Actions[0].Href)

	out = e.Execute(context.Background(), scopeD1, router.Decision{Layers: router.NewLayerSet(router.LayerBriefing)})
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "Open dashboard", out.Actions[0].Label)
}

func TestCorpusFor(t *testing.T) {
	assert.Equal(t, "reg", CorpusFor(router.LayerRegulatoryDocs, scopeD1, "reg"))
	assert.Equal(t, "d1", CorpusFor(router.LayerTenantDocs, scopeD1, "reg"))
	assert.Equal(t, "d1", CorpusFor(router.LayerDevelopmentDocs, scopeD1, "reg"))
	assert.Equal(t, "t1", CorpusFor(router.LayerTenantDocs, store.Scope{TenantID: "t1"}, "reg"))
}
