package driving

import (
	"context"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
)

// QueryOptions tunes a single query.
type QueryOptions struct {
	// AgentHint selects the tier the fallback ladder starts on:
	// "document", "web_search" or "general_knowledge". Tiers below the
	// starting point remain as fallback; a web hint also falls back to
	// document retrieval. A general hint answers from general knowledge
	// directly.
	AgentHint string

	// TopK overrides the configured retrieval depth when positive.
	TopK int
}

// QueryService answers a question from the document corpus, falling back
// to web search and finally general knowledge. It returns an error only
// for malformed requests (empty query); every other failure mode degrades
// to a best-effort answer with an honest source label.
type QueryService interface {
	AnswerQuery(ctx context.Context, query string, opts QueryOptions) (*domain.SynthesizedAnswer, error)
}
