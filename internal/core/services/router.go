package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

var _ driving.QueryService = (*QueryRouter)(nil)

// maxWebResults is how many web hits feed the web-tier synthesis.
const maxWebResults = 5

// QueryRouter walks the degradation ladder for a query: document
// retrieval first, then web search, then general knowledge. Each tier's
// failure degrades to the next instead of surfacing; the only error a
// caller ever sees is a malformed request.
type QueryRouter struct {
	retriever   *RetrievalEngine
	synthesizer *Synthesizer
	web         driven.WebSearch
}

// NewQueryRouter creates the router. web may be nil; the web tier is then
// skipped entirely.
func NewQueryRouter(retriever *RetrievalEngine, synthesizer *Synthesizer, web driven.WebSearch) *QueryRouter {
	return &QueryRouter{
		retriever:   retriever,
		synthesizer: synthesizer,
		web:         web,
	}
}

// AnswerQuery answers a question, disclosing which tier produced the
// answer. An explicit agent hint picks the rung the ladder starts on;
// rungs below the starting point still apply as fallback, and a web hint
// additionally falls back to document retrieval. A general-knowledge
// hint starts on the bottom rung and answers directly.
func (r *QueryRouter) AnswerQuery(
	ctx context.Context, query string, opts driving.QueryOptions,
) (*domain.SynthesizedAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	start := time.Now()

	tier := ClassifyQuery(query)
	if hinted, ok := parseAgentHint(opts.AgentHint); ok {
		tier = hinted
	}
	logger.Section("Query")
	logger.Info("Routing query via %s tier", tier)

	var answer *domain.SynthesizedAnswer
	switch tier {
	case domain.SourceWebSearch:
		answer = r.tryWeb(ctx, query)
		if answer == nil {
			answer = r.tryDocuments(ctx, query, opts.TopK)
		}
	case domain.SourceGeneralKnowledge:
		answer = nil
	default:
		answer = r.tryDocuments(ctx, query, opts.TopK)
		if answer == nil {
			answer = r.tryWeb(ctx, query)
		}
	}
	if answer == nil {
		answer = r.synthesizer.FromGeneralKnowledge(ctx, query)
	}

	answer.ProcessingTime = time.Since(start).Seconds()
	logger.Info("Answered from %s in %.2fs", answer.Source, answer.ProcessingTime)
	return answer, nil
}

// tryDocuments runs the document tier. A nil return means the tier did
// not produce an answer and the ladder continues.
func (r *QueryRouter) tryDocuments(ctx context.Context, query string, topK int) *domain.SynthesizedAnswer {
	result, err := r.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		logger.Warn("Document retrieval unavailable: %v", err)
		return nil
	}
	if !result.Verdict.Sufficient {
		logger.Debug("Document tier insufficient: %s", result.Verdict.Reason)
		return nil
	}
	return r.synthesizer.FromDocuments(ctx, query, result.Contexts)
}

// tryWeb runs the web tier.
func (r *QueryRouter) tryWeb(ctx context.Context, query string) *domain.SynthesizedAnswer {
	if r.web == nil {
		return nil
	}
	results, err := r.web.Search(ctx, query, maxWebResults)
	if err != nil {
		logger.Warn("Web search unavailable: %v", err)
		return nil
	}
	if len(results) == 0 {
		logger.Debug("Web tier returned no results")
		return nil
	}
	return r.synthesizer.FromWebResults(ctx, query, results)
}
