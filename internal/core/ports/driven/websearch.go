package driven

import "context"

// WebSearch performs a live web search, used when local retrieval is
// insufficient. Failures wrap domain.ErrWebSearchFailure and the router
// degrades to the general-knowledge tier.
type WebSearch interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}

// WebResult is one web search hit.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
