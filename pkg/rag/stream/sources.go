package stream

import (
	"strings"

	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/functions"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"
)

const DefaultExcerptChars = 200

// BuildSources lists the citations for an answer: document chunks in score
// order, then the live data functions that contributed. Chunks with the same
// title and type are cited once.
func BuildSources(results []functions.Result, chunks []store.DocumentChunk, excerptChars int) []Source {
	if excerptChars <= 0 {
		excerptChars = DefaultExcerptChars
	}

	sources := make([]Source, 0, len(chunks)+len(results))
	seen := make(map[[2]string]struct{}, len(chunks))
	for _, ch := range chunks {
		typ := ch.SourceType
		if typ == "" {
			typ = store.SourceTenantDocument
		}
		key := [2]string{ch.Title, typ}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		sources = append(sources, Source{Title: ch.Title, Type: typ, Excerpt: Excerpt(ch.Content, excerptChars)})
	}

	for _, r := range results {
		title := r.Title
		if title == "" {
			title = r.Name
		}
		sources = append(sources, Source{Title: title, Type: store.SourceLiveData, Excerpt: Excerpt(r.Summary, excerptChars)})
	}
	return sources
}

// Excerpt collapses whitespace and cuts s to at most n runes.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
