package router

import (
	"strings"
)

// Directive prefixes force a layer regardless of keyword rules.
const (
	PrefixBriefing   = "/briefing"
	PrefixRegulatory = "/regs"
	PrefixDocuments  = "/docs"
	PrefixLive       = "/live"
)

var directives = []struct {
	prefix string
	layer  Layer
}{
	{PrefixBriefing, LayerBriefing},
	{PrefixRegulatory, LayerRegulatoryDocs},
	{PrefixDocuments, LayerTenantDocs},
	{PrefixLive, LayerLive},
}

// ParsedPrompt contains routing information extracted from the prompt
type ParsedPrompt struct {
	OriginalPrompt string
	CleanPrompt    string // Prompt without directive
	Forced         Layer  // Zero when no directive was given
}

// Parse extracts a leading directive, if any:
//   - /briefing <prompt> → Briefing layer
//   - /regs <prompt>     → Regulatory documents
//   - /docs <prompt>     → Tenant documents
//   - /live <prompt>     → Live data functions
//   - <prompt>           → rules decide
func Parse(prompt string) *ParsedPrompt {
	trimmed := strings.TrimSpace(prompt)
	lower := strings.ToLower(trimmed)

	for _, d := range directives {
		if !strings.HasPrefix(lower, d.prefix) {
			continue
		}
		rest := trimmed[len(d.prefix):]
		// "/docsfoo" is not a directive
		if rest != "" && rest[0] != ' ' {
			continue
		}
		return &ParsedPrompt{
			OriginalPrompt: prompt,
			CleanPrompt:    strings.TrimSpace(rest),
			Forced:         d.layer,
		}
	}

	return &ParsedPrompt{
		OriginalPrompt: prompt,
		CleanPrompt:    trimmed,
	}
}

// HasDirective returns true if a directive prefix was found
func (p *ParsedPrompt) HasDirective() bool {
	return p.Forced != 0
}

// IsEmpty returns true if the clean prompt is empty
func (p *ParsedPrompt) IsEmpty() bool {
	return strings.TrimSpace(p.CleanPrompt) == ""
}
