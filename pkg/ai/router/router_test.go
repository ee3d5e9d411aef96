package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

func newTestRouter(t *testing.T, opts ...Option) *Router {
	t.Helper()
	rules, err := DefaultRules()
	require.NoError(t, err)
	r, err := NewRouter(rules, logger.NewNopLogger(), opts...)
	require.NoError(t, err)
	return r
}

var withDevelopment = store.SchemeSnapshot{TenantID: "t1", DevelopmentID: "d1", DevelopmentName: "Harbour View"}

func TestRoute(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name           string
		question       string
		snapshot       store.SchemeSnapshot
		wantLayers     LayerSet
		wantFunctions  []string
		wantQuery      string
		wantRegulatory bool
	}{
		{
			name:       "grant question goes to tenant documents only",
			question:   "What SEAI grants apply?",
			snapshot:   withDevelopment,
			wantLayers: NewLayerSet(LayerTenantDocs),
			wantQuery:  "SEAI grants",
		},
		{
			name:           "building regulation question is regulatory",
			question:       "Is the fire-stopping detail compliant with Part B?",
			snapshot:       withDevelopment,
			wantLayers:     NewLayerSet(LayerDevelopmentDocs, LayerRegulatoryDocs),
			wantQuery:      "fire-stopping detail compliant Part B",
			wantRegulatory: true,
		},
		{
			name:          "unit status maps to live function",
			question:      "How many units are reserved?",
			wantLayers:    NewLayerSet(LayerLive),
			wantFunctions: []string{"get_unit_status_breakdown"},
		},
		{
			name:          "functions keep declaration order",
			question:      "Show me the sales pipeline and average price",
			wantLayers:    NewLayerSet(LayerLive),
			wantFunctions: []string{"get_sales_pipeline", "get_pricing_summary"},
		},
		{
			name:           "regulatory and live can co-occur",
			question:       "Are the units sold so far compliant with nZEB?",
			wantLayers:     NewLayerSet(LayerLive, LayerRegulatoryDocs),
			wantFunctions:  []string{"get_unit_status_breakdown"},
			wantQuery:      "units sold so far compliant nZEB",
			wantRegulatory: true,
		},
		{
			name:       "briefing suppresses function execution",
			question:   "Give me my daily summary of sales",
			wantLayers: NewLayerSet(LayerBriefing),
		},
		{
			name:       "development document keywords without a development fall back to tenant docs",
			question:   "Where is the floor plan?",
			wantLayers: NewLayerSet(LayerTenantDocs),
			wantQuery:  "floor plan",
		},
		{
			name:          "unmatched question gets the default route",
			question:      "Hello there",
			wantLayers:    NewLayerSet(LayerLive, LayerTenantDocs),
			wantFunctions: []string{"get_development_overview"},
			wantQuery:     "Hello there",
		},
		{
			name:           "regs directive forces regulatory corpus",
			question:       "/regs ventilation rates for bathrooms",
			wantLayers:     NewLayerSet(LayerRegulatoryDocs),
			wantQuery:      "ventilation rates bathrooms",
			wantRegulatory: true,
		},
		{
			name:          "live directive with no keyword uses default functions",
			question:      "/live anything new",
			wantLayers:    NewLayerSet(LayerLive),
			wantFunctions: []string{"get_development_overview"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Route(context.Background(), tt.question, tt.snapshot)

			assert.Equal(t, tt.wantLayers.Strings(), d.Layers.Strings())
			assert.Equal(t, tt.wantFunctions, d.FunctionNames)
			assert.Equal(t, tt.wantQuery, d.RetrievalQuery)
			assert.Equal(t, tt.wantRegulatory, d.IsRegulatory)
		})
	}
}

func TestRoute_RegulatoryInvariant(t *testing.T) {
	r := newTestRouter(t)
	questions := []string{
		"What does TGD Part L say about airtightness?",
		"Do we need a fire safety certificate?",
		"BCAR inspection schedule",
		"/regs stairs",
		"units available",
		"x",
	}
	for _, q := range questions {
		d := r.Route(context.Background(), q, store.SchemeSnapshot{})
		assert.Equal(t, d.Has(LayerRegulatoryDocs), d.IsRegulatory, q)
		assert.False(t, d.Layers.Empty(), q)
	}
}

type stubClassifier struct {
	out   *Classification
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, question string, vocab Vocabulary) (*Classification, error) {
	s.calls++
	return s.out, s.err
}

func TestRoute_ClassifierOnlyWhenNoRuleMatched(t *testing.T) {
	c := &stubClassifier{out: &Classification{
		Layers:    []string{"tenant_docs", "bogus"},
		Functions: []string{"get_sales_velocity", "drop_tables"},
	}}
	r := newTestRouter(t, WithClassifier(c, 0))

	d := r.Route(context.Background(), "units available", store.SchemeSnapshot{})
	assert.Equal(t, 0, c.calls)
	assert.Equal(t, SourceRules, d.Source)

	d = r.Route(context.Background(), "Anything I should worry about?", store.SchemeSnapshot{})
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, SourceClassifier, d.Source)
	assert.Equal(t, []string{"get_sales_velocity"}, d.FunctionNames)
	assert.Equal(t, NewLayerSet(LayerLive, LayerTenantDocs).Strings(), d.Layers.Strings())
}

func TestRoute_ClassifierFailureFallsBackToDefault(t *testing.T) {
	c := &stubClassifier{err: errors.New("model offline")}
	r := newTestRouter(t, WithClassifier(c, 0))

	d := r.Route(context.Background(), "Anything I should worry about?", store.SchemeSnapshot{})
	assert.Equal(t, SourceDefault, d.Source)
	assert.Equal(t, []string{"get_development_overview"}, d.FunctionNames)
}

func TestParse(t *testing.T) {
	tests := []struct {
		prompt     string
		wantForced Layer
		wantClean  string
	}{
		{"/briefing", LayerBriefing, ""},
		{"/docs warranty terms", LayerTenantDocs, "warranty terms"},
		{"/DOCS warranty", LayerTenantDocs, "warranty"},
		{"/docsfoo warranty", 0, "/docsfoo warranty"},
		{"  plain question ", 0, "plain question"},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			p := Parse(tt.prompt)
			assert.Equal(t, tt.wantForced, p.Forced)
			assert.Equal(t, tt.wantClean, p.CleanPrompt)
		})
	}
}

func TestExtractQuery(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	c, err := rules.compile()
	require.NoError(t, err)

	assert.Equal(t, "SEAI grants", c.extractQuery("What SEAI grants apply?"))
	assert.Equal(t, "Part A structure", c.extractQuery("Part A structure"))
	assert.Equal(t, "what is it?", c.extractQuery("what is it?"))
}

func TestParseRules_RejectsBadInput(t *testing.T) {
	_, err := ParseRules([]byte("functions: []\n"))
	assert.Error(t, err)

	rules, err := ParseRules([]byte("default_functions: [a]\nregulatory: ['(']\n"))
	require.NoError(t, err)
	_, err = NewRouter(rules, logger.NewNopLogger())
	assert.Error(t, err)
}
