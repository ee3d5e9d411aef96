package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/pkg/llm"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

var ErrPromptBudgetExceeded = errors.New("assembled prompt exceeds budget")

const (
	documentSeparator = "\n\n---\n\n"
	truncationMarker  = " [truncated]"
)

type Config struct {
	HistoryTurns     int
	MaxDocumentChars int
	MaxPromptChars   int
}

func DefaultConfig() Config {
	return Config{
		HistoryTurns:     10,
		MaxDocumentChars: 12000,
		MaxPromptChars:   32000,
	}
}

// Assembled is the input handed to the generation service.
type Assembled struct {
	SystemPrompt string
	History      []llm.Message
	UserMessage  string
}

// Messages flattens the prompt into the provider message list.
func (a *Assembled) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, len(a.History)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: a.SystemPrompt})
	msgs = append(msgs, a.History...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: a.UserMessage})
	return msgs
}

// Size is the character count of everything sent to the model.
func (a *Assembled) Size() int {
	n := len([]rune(a.SystemPrompt)) + len([]rune(a.UserMessage))
	for _, m := range a.History {
		n += len([]rune(m.Content))
	}
	return n
}

type Assembler struct {
	config Config
	logger logger.ILogger
}

func NewAssembler(config Config, log logger.ILogger) *Assembler {
	return &Assembler{config: config, logger: log}
}

// Assemble fills the system template and trims history. It fails with
// ErrPromptBudgetExceeded rather than dropping grounding content.
func (a *Assembler) Assemble(
	scheme store.SchemeContext,
	results []functions.Result,
	chunks []store.DocumentChunk,
	isRegulatory bool,
	briefing bool,
	history []llm.Message,
	userMessage string,
) (*Assembled, error) {
	live := formatResults(results)
	if briefing {
		live = briefingInstruction
	}

	docs, truncated := a.formatDocuments(chunks)
	if truncated {
		a.logger.Debug("PROMPT", "Document content truncated", map[string]interface{}{
			"chunks":    len(chunks),
			"max_chars": a.config.MaxDocumentChars,
		})
	}

	system := strings.NewReplacer(
		regionScheme, orNoData(scheme.Summary),
		regionLiveData, orNoData(live),
		regionDocuments, orNoData(docs),
	).Replace(systemTemplate)
	if isRegulatory {
		system += regulatoryInstruction
	}

	out := &Assembled{
		SystemPrompt: system,
		History:      a.trimHistory(history),
		UserMessage:  strings.TrimSpace(userMessage),
	}

	if a.config.MaxPromptChars > 0 {
		if size := out.Size(); size > a.config.MaxPromptChars {
			return nil, fmt.Errorf("%w: %d > %d chars", ErrPromptBudgetExceeded, size, a.config.MaxPromptChars)
		}
	}
	return out, nil
}

// trimHistory keeps the most recent turns and drops anything that is not a
// user or assistant message.
func (a *Assembler) trimHistory(history []llm.Message) []llm.Message {
	turns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, m)
	}
	if n := a.config.HistoryTurns; n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns
}

func formatResults(results []functions.Result) string {
	if len(results) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		var b strings.Builder
		b.WriteString(r.Name)
		b.WriteString(": ")
		b.WriteString(r.Summary)
		if r.Data != nil {
			if raw, err := json.Marshal(r.Data); err == nil {
				b.WriteString("\n")
				b.Write(raw)
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// formatDocuments renders chunks in score order until MaxDocumentChars of
// content has been used. The chunk that crosses the limit is cut short and
// the rest are dropped.
func (a *Assembler) formatDocuments(chunks []store.DocumentChunk) (string, bool) {
	if len(chunks) == 0 {
		return "", false
	}

	budget := a.config.MaxDocumentChars
	truncated := false
	blocks := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		content := strings.TrimSpace(ch.Content)
		if budget > 0 {
			runes := []rune(content)
			if len(runes) > budget {
				content = string(runes[:budget]) + truncationMarker
				truncated = true
			}
			budget -= len(runes)
		}
		blocks = append(blocks, fmt.Sprintf("[Document: %s]\n%s", ch.Title, content))
		if a.config.MaxDocumentChars > 0 && budget <= 0 {
			truncated = truncated || len(blocks) < len(chunks)
			break
		}
	}
	return strings.Join(blocks, documentSeparator), truncated
}

func orNoData(s string) string {
	if strings.TrimSpace(s) == "" {
		return noData
	}
	return s
}
