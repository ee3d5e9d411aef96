package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Layer is one independent knowledge source a question can be routed to.
type Layer uint8

const (
	LayerLive Layer = 1 << iota
	LayerTenantDocs
	LayerDevelopmentDocs
	LayerRegulatoryDocs
	LayerBriefing
)

// AllLayers in canonical order.
var AllLayers = []Layer{LayerLive, LayerTenantDocs, LayerDevelopmentDocs, LayerRegulatoryDocs, LayerBriefing}

var layerNames = map[Layer]string{
	LayerLive:            "live",
	LayerTenantDocs:      "tenant_docs",
	LayerDevelopmentDocs: "development_docs",
	LayerRegulatoryDocs:  "regulatory_docs",
	LayerBriefing:        "briefing",
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return fmt.Sprintf("layer(%d)", uint8(l))
}

func ParseLayer(s string) (Layer, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for layer, name := range layerNames {
		if name == s {
			return layer, true
		}
	}
	return 0, false
}

// IsDocument reports whether the layer is served by the retrieval client.
func (l Layer) IsDocument() bool {
	return l == LayerTenantDocs || l == LayerDevelopmentDocs || l == LayerRegulatoryDocs
}

// LayerSet is a set of layers. The zero value is empty.
type LayerSet uint8

func NewLayerSet(layers ...Layer) LayerSet {
	var s LayerSet
	for _, l := range layers {
		s = s.With(l)
	}
	return s
}

func (s LayerSet) Has(l Layer) bool { return uint8(s)&uint8(l) != 0 }
func (s LayerSet) With(l Layer) LayerSet { return LayerSet(uint8(s) | uint8(l)) }
func (s LayerSet) Without(l Layer) LayerSet { return LayerSet(uint8(s) &^ uint8(l)) }
func (s LayerSet) Empty() bool { return s == 0 }

// List returns members in canonical order.
func (s LayerSet) List() []Layer {
	out := make([]Layer, 0, len(AllLayers))
	for _, l := range AllLayers {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s LayerSet) Strings() []string {
	layers := s.List()
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.String()
	}
	return out
}

func (s LayerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// Decision source labels.
const (
	SourceRules      = "rules"
	SourceDirective  = "directive"
	SourceClassifier = "classifier"
	SourceDefault    = "default"
)

// Decision says which layers to consult for one question. FunctionNames keep
// declaration order, which is also dispatch order for the executor.
type Decision struct {
	Layers         LayerSet `json:"layers"`
	FunctionNames  []string `json:"function_names"`
	RetrievalQuery string   `json:"retrieval_query,omitempty"`
	IsRegulatory   bool     `json:"is_regulatory"`
	Source         string   `json:"source"`
}

func (d Decision) Has(l Layer) bool {
	return d.Layers.Has(l)
}

// DocumentLayers returns the retrieval layers in canonical order.
func (d Decision) DocumentLayers() []Layer {
	var out []Layer
	for _, l := range d.Layers.List() {
		if l.IsDocument() {
			out = append(out, l)
		}
	}
	return out
}
