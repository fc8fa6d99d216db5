package services

import (
	"strings"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// Keyword lists driving query classification. Matching is substring-based
// over the lowercased query; document cues win over web cues because the
// corpus, when it applies, is the higher-trust source.
var (
	documentKeywords = []string{
		"document", "pdf", "file", "upload", "content", "text", "page", "section",
	}
	webKeywords = []string{
		"latest", "news", "current", "today", "weather", "stock", "price",
		"recent", "trend",
	}
)

// ClassifyQuery guesses the best starting tier for a query. It is a hint,
// not a gate: the router still walks the full degradation ladder, the
// classification only decides where to start looking.
func ClassifyQuery(query string) domain.Source {
	q := strings.ToLower(query)

	for _, kw := range documentKeywords {
		if strings.Contains(q, kw) {
			return domain.SourceDocument
		}
	}
	for _, kw := range webKeywords {
		if strings.Contains(q, kw) {
			return domain.SourceWebSearch
		}
	}
	return domain.SourceDocument
}

// parseAgentHint maps a caller-supplied hint string onto a source tier.
// Unknown hints are ignored.
func parseAgentHint(hint string) (domain.Source, bool) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "document", "documents", "rag":
		return domain.SourceDocument, true
	case "web", "web_search", "search":
		return domain.SourceWebSearch, true
	case "general", "general_knowledge", "llm":
		return domain.SourceGeneralKnowledge, true
	default:
		return "", false
	}
}
