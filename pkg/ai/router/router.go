package router

import (
	"context"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/metrics"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

const defaultClassifierTimeout = 3 * time.Second

// Router classifies a question into a Decision. It holds no per-request state
// and is safe for concurrent use.
type Router struct {
	rules             *compiledRules
	classifier        Classifier
	classifierTimeout time.Duration
	logger            logger.ILogger
}

type Option func(*Router)

// WithClassifier enables the model fallback for questions no rule matched.
func WithClassifier(c Classifier, timeout time.Duration) Option {
	return func(r *Router) {
		r.classifier = c
		if timeout > 0 {
			r.classifierTimeout = timeout
		}
	}
}

func NewRouter(rules *Rules, log logger.ILogger, opts ...Option) (*Router, error) {
	compiled, err := rules.compile()
	if err != nil {
		return nil, err
	}
	r := &Router{
		rules:             compiled,
		classifierTimeout: defaultClassifierTimeout,
		logger:            log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Vocabulary lists every layer and function name the router can emit.
func (r *Router) Vocabulary() Vocabulary {
	v := Vocabulary{Layers: NewLayerSet(AllLayers...).Strings()}
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		v.Functions = append(v.Functions, name)
	}
	for _, fn := range r.rules.functions {
		add(fn.name)
	}
	for _, name := range r.rules.defaultFunctions {
		add(name)
	}
	return v
}

// Route never returns an empty decision: when nothing matches it falls back
// to the default live functions plus a tenant document search.
func (r *Router) Route(ctx context.Context, question string, snapshot store.SchemeSnapshot) Decision {
	parsed := Parse(question)
	text := parsed.CleanPrompt

	d := r.matchRules(text, snapshot)
	d.Source = SourceRules

	if parsed.HasDirective() {
		d.Layers = d.Layers.With(parsed.Forced)
		d.Source = SourceDirective
	}

	if d.Layers.Empty() && r.classifier != nil && !parsed.IsEmpty() {
		if classified, ok := r.classify(ctx, text, snapshot); ok {
			d = classified
		}
	}

	if d.Layers.Empty() {
		d = Decision{
			Layers:        NewLayerSet(LayerLive, LayerTenantDocs),
			FunctionNames: append([]string(nil), r.rules.defaultFunctions...),
			Source:        SourceDefault,
		}
		d.RetrievalQuery = text
	}

	r.finalize(&d, text)

	for _, l := range d.Layers.List() {
		metrics.RouteLayers.WithLabelValues(l.String()).Inc()
	}
	metrics.RouteSource.WithLabelValues(d.Source).Inc()

	r.logger.Info("ROUTER", "Question routed", map[string]interface{}{
		"layers":          d.Layers.Strings(),
		"functions":       d.FunctionNames,
		"retrieval_query": d.RetrievalQuery,
		"is_regulatory":   d.IsRegulatory,
		"source":          d.Source,
	})
	return d
}

func (r *Router) matchRules(text string, snapshot store.SchemeSnapshot) Decision {
	var d Decision

	for _, fn := range r.rules.functions {
		if anyMatch(fn.keywords, text) {
			d.FunctionNames = append(d.FunctionNames, fn.name)
		}
	}
	if len(d.FunctionNames) > 0 {
		d.Layers = d.Layers.With(LayerLive)
	}

	if anyMatch(r.rules.tenantDocs, text) {
		d.Layers = d.Layers.With(LayerTenantDocs)
	}
	if anyMatch(r.rules.developmentDocs, text) {
		if snapshot.HasDevelopment() {
			d.Layers = d.Layers.With(LayerDevelopmentDocs)
		} else {
			d.Layers = d.Layers.With(LayerTenantDocs)
		}
	}

	if anyMatch(r.rules.regulatory, text) {
		d.IsRegulatory = true
	}
	if anyMatch(r.rules.briefing, text) {
		d.Layers = d.Layers.With(LayerBriefing)
	}
	return d
}

func (r *Router) classify(ctx context.Context, text string, snapshot store.SchemeSnapshot) (Decision, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.classifierTimeout)
	defer cancel()

	out, err := r.classifier.Classify(cctx, text, r.Vocabulary())
	if err != nil {
		r.logger.Warn("ROUTER", "Classifier failed, using default route", map[string]interface{}{"error": err.Error()})
		return Decision{}, false
	}

	d := Decision{Source: SourceClassifier, IsRegulatory: out.Regulatory}
	for _, name := range out.Layers {
		layer, ok := ParseLayer(name)
		if !ok {
			continue
		}
		if layer == LayerDevelopmentDocs && !snapshot.HasDevelopment() {
			layer = LayerTenantDocs
		}
		d.Layers = d.Layers.With(layer)
	}
	for _, name := range out.Functions {
		if _, known := r.rules.functionNames[name]; known && !contains(d.FunctionNames, name) {
			d.FunctionNames = append(d.FunctionNames, name)
		}
	}
	if len(d.FunctionNames) > 0 {
		d.Layers = d.Layers.With(LayerLive)
	}
	if d.Layers.Empty() && !d.IsRegulatory {
		return Decision{}, false
	}
	return d, true
}

// finalize enforces the decision invariants.
func (r *Router) finalize(d *Decision, text string) {
	// Regulatory language and the regulatory corpus always travel together.
	if d.IsRegulatory || d.Layers.Has(LayerRegulatoryDocs) {
		d.IsRegulatory = true
		d.Layers = d.Layers.With(LayerRegulatoryDocs)
	}

	// A briefing is one pre-written instruction, not per-function output.
	if d.Layers.Has(LayerBriefing) {
		d.Layers = d.Layers.Without(LayerLive)
		d.FunctionNames = nil
	}

	if d.Layers.Has(LayerLive) && len(d.FunctionNames) == 0 {
		d.FunctionNames = append([]string(nil), r.rules.defaultFunctions...)
	}

	if len(d.DocumentLayers()) > 0 && d.RetrievalQuery == "" {
		d.RetrievalQuery = r.rules.extractQuery(text)
	}
	if len(d.DocumentLayers()) == 0 {
		d.RetrievalQuery = ""
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
