package domain

// Source identifies where an answer came from. Every answer discloses its
// source so the caller can display provenance and trust level.
type Source string

// Source tiers, highest trust first.
const (
	SourceDocument         Source = "document"
	SourceWebSearch        Source = "web_search"
	SourceGeneralKnowledge Source = "general_knowledge"
)

// AnswerStatus is the coarse outcome of a query.
type AnswerStatus string

// Answer statuses.
const (
	AnswerSuccess   AnswerStatus = "success"
	AnswerNoResults AnswerStatus = "no_results"
	AnswerError     AnswerStatus = "error"
)

// Citation points at one page that grounded an answer. Every citation must
// correspond to a context that was actually retrieved for the query; the
// synthesizer never invents document names or page numbers.
type Citation struct {
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	Confidence float64 `json:"confidence"`
}

// SynthesizedAnswer is the result of one query/response cycle. It is
// ephemeral; persisting it as chat history is the caller's business.
type SynthesizedAnswer struct {
	Status         AnswerStatus `json:"status"`
	Response       string       `json:"response"`
	Source         Source       `json:"source"`
	Citations      []Citation   `json:"citations,omitempty"`
	RetrievedCount int          `json:"retrieved_count"`

	// ProcessingTime is the wall-clock duration of the query in seconds.
	ProcessingTime float64 `json:"processing_time_seconds"`
}

// FileError records a per-file ingestion failure.
type FileError struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Ingestion summary statuses.
const (
	IngestSuccess = "success"
	IngestPartial = "partial"
	IngestError   = "error"
)

// IngestionSummary is the per-batch result of document ingestion. Files
// are processed independently; one file's failure is recorded here without
// aborting the rest of the batch.
type IngestionSummary struct {
	Status              string      `json:"status"`
	PagesProcessed      int         `json:"pages_processed"`
	FilesProcessed      []string    `json:"files_processed"`
	FilesSkipped        []string    `json:"files_skipped,omitempty"`
	EmbeddingsGenerated int         `json:"embeddings_generated"`
	Errors              []FileError `json:"errors,omitempty"`
}

// Finalize sets the summary status from the processed/error counts.
func (s *IngestionSummary) Finalize() {
	switch {
	case len(s.Errors) == 0:
		s.Status = IngestSuccess
	case len(s.FilesProcessed) > 0 || len(s.FilesSkipped) > 0:
		s.Status = IngestPartial
	default:
		s.Status = IngestError
	}
}
