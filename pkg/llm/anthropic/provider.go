package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
)

const defaultMaxTokens = 1024

type AnthropicProvider struct {
	client    anthropic.Client
	ModelName string
	MaxTokens int
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string, maxTokens int) *AnthropicProvider {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(strings.TrimSpace(apiKey))),
		ModelName: modelName,
		MaxTokens: maxTokens,
	}
}

func (p *AnthropicProvider) params(history []llm.Message, opts []llm.Option) (anthropic.MessageNewParams, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7, MaxTokens: p.MaxTokens}, opts...)

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}
	if strings.TrimSpace(model) == "" {
		return anthropic.MessageNewParams{}, errors.New("missing model")
	}

	system, turns := llm.SplitSystem(history)
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(options.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(options.Temperature),
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: strings.TrimSpace(system)}}
	}
	return params, nil
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	params, err := p.params(history, opts)
	if err != nil {
		return "", err
	}
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	var out strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}
	return out.String(), nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (p *AnthropicProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.TokenStream, error) {
	params, err := p.params(history, opts)
	if err != nil {
		return nil, err
	}
	return &tokenStream{stream: p.client.Messages.NewStreaming(ctx, params)}, nil
}

// tokenStream surfaces only text deltas from the SSE event stream.
type tokenStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	current string
}

func (s *tokenStream) Next() bool {
	for s.stream.Next() {
		event := s.stream.Current()
		variant, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if delta, ok := variant.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
			s.current = delta.Text
			return true
		}
	}
	return false
}

func (s *tokenStream) Current() string { return s.current }

func (s *tokenStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream: %w", err)
	}
	return nil
}

func (s *tokenStream) Close() error { return s.stream.Close() }
