package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// maxPromptImages bounds how many page images ride along with a prompt;
// multimodal request bodies grow fast and the top pages carry the signal.
const maxPromptImages = 3

// Synthesizer turns retrieved material into a final answer. The generator
// is optional: without one, answers degrade to templated summaries built
// directly from the retrieved contexts, still carrying honest citations.
type Synthesizer struct {
	generator driven.Generator
}

// NewSynthesizer creates a synthesizer. generator may be nil.
func NewSynthesizer(generator driven.Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// FromDocuments synthesizes an answer grounded in retrieved pages.
// Citations are derived from the contexts that were actually retrieved,
// never from the generated text.
func (s *Synthesizer) FromDocuments(
	ctx context.Context, query string, contexts []domain.RetrievedContext,
) *domain.SynthesizedAnswer {
	citations := make([]domain.Citation, 0, len(contexts))
	for _, c := range contexts {
		citations = append(citations, domain.Citation{
			Filename:   c.Payload.Filename,
			PageNumber: c.Payload.PageNumber,
			Confidence: c.Score,
		})
	}

	answer := &domain.SynthesizedAnswer{
		Status:         domain.AnswerSuccess,
		Source:         domain.SourceDocument,
		Citations:      citations,
		RetrievedCount: len(contexts),
	}

	var b strings.Builder
	b.WriteString("Based on the following document excerpts, answer the question.\n")
	b.WriteString("Use only the provided content and cite the documents you draw from.\n\n")
	for _, c := range contexts {
		fmt.Fprintf(&b, "Document: %s (Page %d)\nContent: %s\n\n",
			c.Payload.Filename, c.Payload.PageNumber, c.Payload.Text)
	}
	fmt.Fprintf(&b, "Question: %s", query)

	var images [][]byte
	for _, c := range contexts {
		if len(images) == maxPromptImages {
			break
		}
		if len(c.Image) > 0 {
			images = append(images, c.Image)
		}
	}

	answer.Response = s.generate(ctx, b.String(), images, func() string {
		return templatedDocumentAnswer(query, contexts)
	})
	return answer
}

// FromWebResults synthesizes an answer from live web search hits.
func (s *Synthesizer) FromWebResults(
	ctx context.Context, query string, results []driven.WebResult,
) *domain.SynthesizedAnswer {
	answer := &domain.SynthesizedAnswer{
		Status:         domain.AnswerSuccess,
		Source:         domain.SourceWebSearch,
		RetrievedCount: len(results),
	}

	var b strings.Builder
	b.WriteString("Answer the question using these web search results. Mention the sources.\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "Title: %s\nURL: %s\n%s\n\n", r.Title, r.URL, r.Snippet)
	}
	fmt.Fprintf(&b, "Question: %s", query)

	answer.Response = s.generate(ctx, b.String(), nil, func() string {
		return templatedWebAnswer(query, results)
	})
	return answer
}

// FromGeneralKnowledge answers without any retrieved material, labelled
// so the caller knows nothing grounded it.
func (s *Synthesizer) FromGeneralKnowledge(ctx context.Context, query string) *domain.SynthesizedAnswer {
	answer := &domain.SynthesizedAnswer{
		Status: domain.AnswerSuccess,
		Source: domain.SourceGeneralKnowledge,
	}

	prompt := fmt.Sprintf(
		"Answer the following question from general knowledge. "+
			"Note that no uploaded documents or web results were available.\n\nQuestion: %s", query)

	answer.Response = s.generate(ctx, prompt, nil, func() string {
		answer.Status = domain.AnswerNoResults
		return fmt.Sprintf(
			"No relevant documents or web results were found for %q, and no generation service is configured. "+
				"Try ingesting documents related to your question.", query)
	})
	return answer
}

// generate runs the generator when one is configured, falling back to the
// provided templated answer on absence or failure.
func (s *Synthesizer) generate(ctx context.Context, prompt string, images [][]byte, fallback func() string) string {
	if s.generator == nil {
		return fallback()
	}
	text, err := s.generator.Generate(ctx, prompt, images)
	if err != nil {
		logger.Warn("Generation failed, using templated answer: %v", err)
		return fallback()
	}
	return strings.TrimSpace(text)
}

func templatedDocumentAnswer(query string, contexts []domain.RetrievedContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant page(s) for %q:\n\n", len(contexts), query)
	for _, c := range contexts {
		fmt.Fprintf(&b, "- %s (page %d, score %.2f): %s\n",
			c.Payload.Filename, c.Payload.PageNumber, c.Score, snippet(c.Payload.Text, 200))
	}
	return strings.TrimSpace(b.String())
}

func templatedWebAnswer(query string, results []driven.WebResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d web result(s) for %q:\n\n", len(results), query)
	for _, r := range results {
		fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.URL, snippet(r.Snippet, 200))
	}
	return strings.TrimSpace(b.String())
}

// snippet truncates text to at most n runes for display.
func snippet(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
