package executor

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/metrics"
	"github.com/sam-evolv/property-assistant-sub010/pkg/ai/router"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/search"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

// Searcher is the retrieval client contract used by the executor.
type Searcher interface {
	Search(ctx context.Context, query, corpusID string, k int) []store.DocumentChunk
}

// Invoker runs registry functions by name.
type Invoker interface {
	Lookup(name string) (functions.Definition, bool)
	Invoke(ctx context.Context, name string, scope store.Scope) (*functions.Result, error)
	Action(name string, scope store.Scope) (functions.Action, bool)
}

type Config struct {
	FunctionTimeout    time.Duration
	RetrievalTimeout   time.Duration
	TopK               int
	RegulatoryCorpusID string
	DashboardHref      string
}

func DefaultConfig() Config {
	return Config{
		FunctionTimeout:    5 * time.Second,
		RetrievalTimeout:   8 * time.Second,
		TopK:               8,
		RegulatoryCorpusID: "regulatory:ie-building-regulations",
		DashboardHref:      "/dashboard",
	}
}

// LayerResult is everything the layers produced for one question.
type LayerResult struct {
	Functions []functions.Result
	Chart     *functions.Chart
	Chunks    []store.DocumentChunk
	Actions   []functions.Action
}

// Executor fans a decision out to the function registry and the retrieval
// client. Failures are isolated per source and never fail the request.
type Executor struct {
	registry Invoker
	searcher Searcher
	config   Config
	logger   logger.ILogger
}

func NewExecutor(registry Invoker, searcher Searcher, config Config, log logger.ILogger) *Executor {
	return &Executor{
		registry: registry,
		searcher: searcher,
		config:   config,
		logger:   log,
	}
}

// CorpusFor picks the corpus a document layer searches. Tenant corpora come
// only from scope; the regulatory corpus is shared by every tenant.
func CorpusFor(layer router.Layer, scope store.Scope, regulatoryCorpusID string) string {
	if layer == router.LayerRegulatoryDocs {
		return regulatoryCorpusID
	}
	return scope.CorpusID()
}

func sourceTypeFor(layer router.Layer) string {
	switch layer {
	case router.LayerRegulatoryDocs:
		return store.SourceRegulation
	case router.LayerDevelopmentDocs:
		return store.SourceDevelopmentDocument
	default:
		return store.SourceTenantDocument
	}
}

type retrievalPlan struct {
	corpusID   string
	sourceType string
}

// Execute always returns a result. Function results keep dispatch order,
// the first chart in that order wins, and chunks are merged by score and
// capped at TopK across all corpora.
func (e *Executor) Execute(ctx context.Context, scope store.Scope, decision router.Decision) *LayerResult {
	dispatch := e.resolve(decision.FunctionNames)
	plans := e.plan(scope, decision)

	results := make([]*functions.Result, len(dispatch))
	chunkSets := make([][]store.DocumentChunk, len(plans))

	// Goroutines never return an error, so one failure cannot cancel the rest.
	var g errgroup.Group

	for i, name := range dispatch {
		g.Go(func() error {
			results[i] = e.invoke(ctx, scope, name)
			return nil
		})
	}

	for i, p := range plans {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(ctx, e.config.RetrievalTimeout)
			defer cancel()
			chunks := e.searcher.Search(rctx, decision.RetrievalQuery, p.corpusID, e.config.TopK)
			for j := range chunks {
				if chunks[j].SourceType == "" {
					chunks[j].SourceType = p.sourceType
				}
			}
			chunkSets[i] = chunks
			return nil
		})
	}

	_ = g.Wait()

	out := &LayerResult{}
	for _, res := range results {
		if res == nil {
			continue
		}
		out.Functions = append(out.Functions, *res)
		if out.Chart == nil && res.ChartData != nil {
			out.Chart = res.ChartData
		}
	}

	for _, set := range chunkSets {
		out.Chunks = append(out.Chunks, set...)
	}
	search.SortByScore(out.Chunks)
	if len(out.Chunks) > e.config.TopK {
		out.Chunks = out.Chunks[:e.config.TopK]
	}

	out.Actions = e.actions(scope, decision, out.Functions)

	e.logger.Info("EXECUTOR", "Layers executed", map[string]interface{}{
		"tenant_id":   scope.TenantID,
		"dispatched":  len(dispatch),
		"succeeded":   len(out.Functions),
		"corpora":     len(plans),
		"chunks":      len(out.Chunks),
		"has_chart":   out.Chart != nil,
		"num_actions": len(out.Actions),
	})
	return out
}

// resolve drops unknown and duplicate names, keeping declaration order.
func (e *Executor) resolve(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := e.registry.Lookup(name); !ok {
			e.logger.Debug("EXECUTOR", "Skipping unknown function", map[string]interface{}{"function": name})
			metrics.FunctionCalls.WithLabelValues(name, "unknown").Inc()
			continue
		}
		out = append(out, name)
	}
	return out
}

// plan returns one retrieval per distinct corpus, in canonical layer order.
// When a development is selected its corpus serves both document layers, and
// chunks from it are cited as development documents.
func (e *Executor) plan(scope store.Scope, decision router.Decision) []retrievalPlan {
	if decision.RetrievalQuery == "" {
		return nil
	}
	var plans []retrievalPlan
	seen := make(map[string]int)
	for _, layer := range decision.DocumentLayers() {
		corpusID := CorpusFor(layer, scope, e.config.RegulatoryCorpusID)
		if corpusID == "" {
			continue
		}
		if i, dup := seen[corpusID]; dup {
			if layer == router.LayerDevelopmentDocs && scope.HasDevelopment() {
				plans[i].sourceType = store.SourceDevelopmentDocument
			}
			continue
		}
		seen[corpusID] = len(plans)
		plans = append(plans, retrievalPlan{corpusID: corpusID, sourceType: sourceTypeFor(layer)})
	}
	return plans
}

func (e *Executor) invoke(ctx context.Context, scope store.Scope, name string) *functions.Result {
	fctx, cancel := context.WithTimeout(ctx, e.config.FunctionTimeout)
	defer cancel()

	start := time.Now()
	res, err := e.registry.Invoke(fctx, name, scope)
	metrics.FunctionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		} else if errors.Is(err, functions.ErrFunctionPanic) {
			outcome = "panic"
		}
		metrics.FunctionCalls.WithLabelValues(name, outcome).Inc()
		e.logger.Warn("EXECUTOR", "Function failed, dropping result", map[string]interface{}{
			"function": name,
			"outcome":  outcome,
			"error":    err.Error(),
		})
		return nil
	}

	metrics.FunctionCalls.WithLabelValues(name, "ok").Inc()
	return res
}

func (e *Executor) actions(scope store.Scope, decision router.Decision, results []functions.Result) []functions.Action {
	var out []functions.Action
	seen := make(map[string]struct{})
	add := func(a functions.Action) {
		if _, dup := seen[a.Href]; dup {
			return
		}
		seen[a.Href] = struct{}{}
		out = append(out, a)
	}

	for _, res := range results {
		if a, ok := e.registry.Action(res.Name, scope); ok {
			add(a)
		}
	}
	if decision.Has(router.LayerBriefing) && e.config.DashboardHref != "" {
		add(functions.Action{Label: "Open dashboard", Href: e.config.DashboardHref})
	}
	return out
}
