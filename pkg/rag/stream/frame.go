package stream

import (
	"encoding/json"
	"fmt"

	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
)

type FrameType string

const (
	TypeToken                FrameType = "token"
	TypeSources              FrameType = "sources"
	TypeChart                FrameType = "chart"
	TypeActions              FrameType = "actions"
	TypeRegulatoryDisclaimer FrameType = "regulatory_disclaimer"
	TypeError                FrameType = "error"
	TypeDone                 FrameType = "done"
)

// Terminal reports whether no frame may follow this one.
func (t FrameType) Terminal() bool {
	return t == TypeDone || t == TypeError
}

// Source is one citation in a Sources frame.
type Source struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Excerpt string `json:"excerpt"`
}

// Frame is one unit of the streamed answer. Only the field that belongs to
// Type is set.
type Frame struct {
	Type    FrameType
	Content string
	Sources []Source
	Chart   *functions.Chart
	Actions []functions.Action
	Message string
}

func TokenFrame(content string) Frame { return Frame{Type: TypeToken, Content: content} }

func SourcesFrame(sources []Source) Frame { return Frame{Type: TypeSources, Sources: sources} }

func ChartFrame(chart *functions.Chart) Frame { return Frame{Type: TypeChart, Chart: chart} }

func ActionsFrame(actions []functions.Action) Frame {
	return Frame{Type: TypeActions, Actions: actions}
}

func DisclaimerFrame() Frame { return Frame{Type: TypeRegulatoryDisclaimer} }

func ErrorFrame(message string) Frame { return Frame{Type: TypeError, Message: message} }

func DoneFrame() Frame { return Frame{Type: TypeDone} }

// wireFrame is the union of every payload key on the wire.
type wireFrame struct {
	Type    FrameType          `json:"type"`
	Content *string            `json:"content,omitempty"`
	Sources []Source           `json:"sources,omitempty"`
	Chart   *functions.Chart   `json:"chart,omitempty"`
	Actions []functions.Action `json:"actions,omitempty"`
	Value   *bool              `json:"value,omitempty"`
	Message *string            `json:"message,omitempty"`
}

func (f Frame) MarshalJSON() ([]byte, error) {
	w := wireFrame{Type: f.Type}
	switch f.Type {
	case TypeToken:
		w.Content = &f.Content
	case TypeSources:
		w.Sources = f.Sources
		if w.Sources == nil {
			w.Sources = []Source{}
		}
	case TypeChart:
		w.Chart = f.Chart
	case TypeActions:
		w.Actions = f.Actions
		if w.Actions == nil {
			w.Actions = []functions.Action{}
		}
	case TypeRegulatoryDisclaimer:
		v := true
		w.Value = &v
	case TypeError:
		w.Message = &f.Message
	case TypeDone:
	default:
		return nil, fmt.Errorf("unknown frame type %q", f.Type)
	}
	return json.Marshal(w)
}

func (f *Frame) UnmarshalJSON(data []byte) error {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = Frame{
		Type:    w.Type,
		Sources: w.Sources,
		Chart:   w.Chart,
		Actions: w.Actions,
	}
	if w.Content != nil {
		f.Content = *w.Content
	}
	if w.Message != nil {
		f.Message = *w.Message
	}
	return nil
}
