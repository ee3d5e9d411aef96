package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
)

// Classification is a model's view of which layers a question needs.
type Classification struct {
	Layers     []string `json:"layers"`
	Functions  []string `json:"functions"`
	Regulatory bool     `json:"regulatory"`
}

// Vocabulary is everything the router can route to.
type Vocabulary struct {
	Layers    []string `json:"layers"`
	Functions []string `json:"functions"`
}

// Classifier is consulted only when no keyword rule matched.
type Classifier interface {
	Classify(ctx context.Context, question string, vocab Vocabulary) (*Classification, error)
}

// LLMClassifier asks the generation model for a JSON classification at temperature 0.
type LLMClassifier struct {
	llmProvider llm.LLMProvider
}

func NewLLMClassifier(llmProvider llm.LLMProvider) *LLMClassifier {
	return &LLMClassifier{llmProvider: llmProvider}
}

func (c *LLMClassifier) Classify(ctx context.Context, question string, vocab Vocabulary) (*Classification, error) {
	response, err := c.llmProvider.Generate(ctx, buildClassifierPrompt(question, vocab), llm.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("classifier generate: %w", err)
	}

	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, errors.New("no JSON found in classifier response")
	}

	var out Classification
	if err := json.Unmarshal([]byte(jsonContent), &out); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	return &out, nil
}

func buildClassifierPrompt(question string, vocab Vocabulary) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You route questions for a property development assistant.\n")
	prompt.WriteString("You do NOT answer questions. You only choose data sources.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<sources>\n")
	prompt.WriteString("live: current structured records (units, sales, pricing, analytics)\n")
	prompt.WriteString("tenant_docs: the company's own documents (grants, warranties, brochures, policies)\n")
	prompt.WriteString("development_docs: documents for the selected development (specs, drawings, finishes)\n")
	prompt.WriteString("regulatory_docs: Irish building regulations and technical guidance\n")
	prompt.WriteString("briefing: a daily summary of everything\n")
	prompt.WriteString("</sources>\n\n")

	prompt.WriteString("<functions>\n")
	for _, fn := range vocab.Functions {
		prompt.WriteString(fn)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</functions>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("Respond with JSON only:\n")
	prompt.WriteString(`{"layers": ["live"], "functions": ["get_development_overview"], "regulatory": false}`)
	prompt.WriteString("\n")
	return prompt.String()
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
