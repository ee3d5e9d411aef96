package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

// scriptedTokens replays chunks, then fails with err if set. With block set
// it waits for ctx after the last chunk instead of ending.
type scriptedTokens struct {
	ctx    context.Context
	chunks []string
	err    error
	block  bool

	pos     int
	current string
	failed  error
	mu      sync.Mutex
	closed  bool
}

func (s *scriptedTokens) Next() bool {
	if s.pos < len(s.chunks) {
		s.current = s.chunks[s.pos]
		s.pos++
		return true
	}
	if s.block {
		<-s.ctx.Done()
		s.failed = s.ctx.Err()
		return false
	}
	s.failed = s.err
	return false
}

func (s *scriptedTokens) Current() string { return s.current }
func (s *scriptedTokens) Err() error      { return s.failed }

func (s *scriptedTokens) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *scriptedTokens) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeLLM struct {
	chunks  []string
	err     error
	openErr error
	block   bool

	opened   *scriptedTokens
	messages []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return strings.Join(f.chunks, ""), f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return strings.Join(f.chunks, ""), f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (llm.TokenStream, error) {
	f.messages = history
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened = &scriptedTokens{ctx: ctx, chunks: f.chunks, err: f.err, block: f.block}
	return f.opened, nil
}

func drain(fs *FrameStream) []Frame {
	var frames []Frame
	for fs.Next() {
		frames = append(frames, fs.Frame())
	}
	return frames
}

func types(frames []Frame) []FrameType {
	out := make([]FrameType, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func fullInput() Input {
	return Input{
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "q"}},
		Sources:      []Source{{Title: "TGD Part B", Type: store.SourceRegulation, Excerpt: "Fire stopping"}},
		Chart:        &functions.Chart{Kind: functions.ChartPie, Title: "Units"},
		Actions:      []functions.Action{{Label: "View units", Href: "/units"}},
		IsRegulatory: true,
	}
}

func TestStream_FrameOrder(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		want  []FrameType
	}{
		{
			name:  "full trailer",
			input: fullInput(),
			want: []FrameType{TypeToken, TypeToken, TypeSources, TypeChart, TypeActions,
				TypeRegulatoryDisclaimer, TypeDone},
		},
		{
			name:  "no metadata",
			input: Input{},
			want:  []FrameType{TypeToken, TypeToken, TypeDone},
		},
		{
			name:  "sources only",
			input: Input{Sources: []Source{{Title: "SEAI Grants", Type: store.SourceTenantDocument}}},
			want:  []FrameType{TypeToken, TypeToken, TypeSources, TypeDone},
		},
		{
			name:  "regulatory without sources",
			input: Input{IsRegulatory: true},
			want:  []FrameType{TypeToken, TypeToken, TypeRegulatoryDisclaimer, TypeDone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStreamer(&fakeLLM{chunks: []string{"Hello ", "world"}}, logger.NewNopLogger())
			fs := s.Stream(context.Background(), tt.input)

			frames := drain(fs)
			assert.Equal(t, tt.want, types(frames))
			assert.Equal(t, OutcomeDone, fs.Outcome())
		})
	}
}

func TestStream_TokenReconstruction(t *testing.T) {
	chunks := []string{"The ", "", "heat pump ", "grant is ", "€6,500", "."}
	s := NewStreamer(&fakeLLM{chunks: chunks}, logger.NewNopLogger())
	fs := s.Stream(context.Background(), Input{})

	var b strings.Builder
	for _, f := range drain(fs) {
		if f.Type == TypeToken {
			assert.NotEmpty(t, f.Content)
			b.WriteString(f.Content)
		}
	}
	assert.Equal(t, strings.Join(chunks, ""), b.String())
	assert.Equal(t, b.String(), fs.Answer())
}

func TestStream_TerminalFrameInvariant(t *testing.T) {
	cases := map[string]*fakeLLM{
		"done":             {chunks: []string{"a", "b"}},
		"mid-stream error": {chunks: []string{"a"}, err: errors.New("connection reset")},
		"open error":       {openErr: errors.New("503")},
		"empty answer":     {},
	}
	for name, provider := range cases {
		t.Run(name, func(t *testing.T) {
			fs := NewStreamer(provider, logger.NewNopLogger()).Stream(context.Background(), fullInput())
			frames := drain(fs)
			require.NotEmpty(t, frames)

			terminal := 0
			for _, f := range frames {
				if f.Type.Terminal() {
					terminal++
				}
			}
			assert.Equal(t, 1, terminal)
			assert.True(t, frames[len(frames)-1].Type.Terminal())
			assert.False(t, fs.Next())
		})
	}
}

func TestStream_MidStreamError(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"Part B ", "requires"}, err: errors.New("upstream: secret detail")}
	fs := NewStreamer(provider, logger.NewNopLogger()).Stream(context.Background(), fullInput())

	frames := drain(fs)
	assert.Equal(t, []FrameType{TypeToken, TypeToken, TypeError}, types(frames))
	assert.Equal(t, DefaultErrorMessage, frames[2].Message)
	assert.NotContains(t, frames[2].Message, "secret")
	assert.True(t, provider.opened.isClosed())
	assert.Equal(t, OutcomeError, fs.Outcome())
}

func TestStream_OpenErrorBeforeTokens(t *testing.T) {
	s := NewStreamer(&fakeLLM{openErr: errors.New("401")}, logger.NewNopLogger(), WithErrorMessage("nope"))
	frames := drain(s.Stream(context.Background(), fullInput()))

	require.Len(t, frames, 1)
	assert.Equal(t, ErrorFrame("nope"), frames[0])
}

func TestStream_Failed(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"x"}}
	s := NewStreamer(provider, logger.NewNopLogger())

	frames := drain(s.Failed(context.Background(), errors.New("prompt too large")))
	assert.Equal(t, []FrameType{TypeError}, types(frames))
	assert.Nil(t, provider.opened, "model must not be called")
}

func TestStream_OnFinish(t *testing.T) {
	tests := []struct {
		name    string
		llm     *fakeLLM
		answer  string
		outcome string
	}{
		{"done", &fakeLLM{chunks: []string{"Ten ", "sold."}}, "Ten sold.", OutcomeDone},
		{"error", &fakeLLM{chunks: []string{"Ten "}, err: errors.New("reset")}, "Ten ", OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewStreamer(tt.llm, logger.NewNopLogger()).Stream(context.Background(), fullInput())
			calls := 0
			var answer, outcome string
			fs.OnFinish(func(a, o string) {
				calls++
				answer, outcome = a, o
			})

			drain(fs)
			require.NoError(t, fs.Close())

			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.answer, answer)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestStream_LazyOpen(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"x"}}
	fs := NewStreamer(provider, logger.NewNopLogger()).Stream(context.Background(), fullInput())
	assert.Nil(t, provider.opened)

	require.True(t, fs.Next())
	assert.NotNil(t, provider.opened)
	assert.Equal(t, fullInput().Messages, provider.messages)
	fs.Close()
}

func TestStream_CancelStopsFrames(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"first"}, block: true}
	ctx, cancel := context.WithCancel(context.Background())
	fs := NewStreamer(provider, logger.NewNopLogger()).Stream(ctx, fullInput())

	require.True(t, fs.Next())
	assert.Equal(t, TokenFrame("first"), fs.Frame())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	assert.False(t, fs.Next())
	assert.False(t, fs.Next())
	assert.Equal(t, OutcomeCancelled, fs.Outcome())
	assert.True(t, provider.opened.isClosed())
}

func TestStream_CloseFromAnotherGoroutine(t *testing.T) {
	provider := &fakeLLM{block: true}
	fs := NewStreamer(provider, logger.NewNopLogger()).Stream(context.Background(), fullInput())

	done := make(chan bool)
	go func() { done <- fs.Next() }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, fs.Close())

	select {
	case got := <-done:
		assert.False(t, got)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Close")
	}
	assert.Equal(t, OutcomeCancelled, fs.Outcome())
}

func TestWriteNDJSON(t *testing.T) {
	s := NewStreamer(&fakeLLM{chunks: []string{"Hi"}}, logger.NewNopLogger())
	var buf bytes.Buffer
	flushes := 0

	err := WriteNDJSON(&buf, func() error { flushes++; return nil }, s.Stream(context.Background(), fullInput()))
	require.NoError(t, err)

	var lines []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 6)
	assert.Equal(t, 6, flushes)
	assert.JSONEq(t, `{"type":"token","content":"Hi"}`, lines[0])
	assert.JSONEq(t, `{"type":"sources","sources":[{"title":"TGD Part B","type":"regulation","excerpt":"Fire stopping"}]}`, lines[1])
	assert.JSONEq(t, `{"type":"chart","chart":{"kind":"pie","title":"Units","labels":null,"series":null}}`, lines[2])
	assert.JSONEq(t, `{"type":"actions","actions":[{"label":"View units","href":"/units"}]}`, lines[3])
	assert.JSONEq(t, `{"type":"regulatory_disclaimer","value":true}`, lines[4])
	assert.JSONEq(t, `{"type":"done"}`, lines[5])
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteNDJSON_WriteErrorCancelsStream(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"a"}, block: true}
	fs := NewStreamer(provider, logger.NewNopLogger()).Stream(context.Background(), Input{})

	err := WriteNDJSON(failingWriter{}, nil, fs)
	assert.Error(t, err)
	assert.Equal(t, OutcomeCancelled, fs.Outcome())
	assert.True(t, provider.opened.isClosed())
}

func TestFrame_JSONRoundTrip(t *testing.T) {
	for _, f := range []Frame{TokenFrame(""), ErrorFrame("boom"), DoneFrame(), DisclaimerFrame()} {
		raw, err := json.Marshal(f)
		require.NoError(t, err)
		var got Frame
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, f, got)
	}

	raw, err := json.Marshal(TokenFrame(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"token","content":""}`, string(raw))

	_, err = json.Marshal(Frame{Type: "bogus"})
	assert.Error(t, err)
}

func TestBuildSources(t *testing.T) {
	long := strings.Repeat("é", 250)
	sources := BuildSources(
		[]functions.Result{{Name: "get_unit_status_breakdown", Title: "Unit status breakdown", Summary: "40 units"}},
		[]store.DocumentChunk{
			{Title: "Spec", Content: long, SourceType: store.SourceDevelopmentDocument},
			{Title: "Spec", Content: "again", SourceType: store.SourceDevelopmentDocument},
			{Title: "Spec", Content: "reg", SourceType: store.SourceRegulation},
			{Title: "Untyped", Content: "x"},
		},
		DefaultExcerptChars,
	)

	require.Len(t, sources, 4)
	assert.Len(t, []rune(sources[0].Excerpt), 200)
	assert.Equal(t, store.SourceRegulation, sources[1].Type)
	assert.Equal(t, store.SourceTenantDocument, sources[2].Type)
	assert.Equal(t, Source{Title: "Unit status breakdown", Type: store.SourceLiveData, Excerpt: "40 units"}, sources[3])
}
