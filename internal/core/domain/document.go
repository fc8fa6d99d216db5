package domain

import (
	"fmt"
	"time"
)

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

// Document lifecycle states. A document moves pending → indexed on
// success or pending → failed when ingestion cannot complete.
const (
	StatusPending DocumentStatus = "pending"
	StatusIndexed DocumentStatus = "indexed"
	StatusFailed  DocumentStatus = "failed"
)

// Document represents one uploaded PDF. It is created by the ingestion
// pipeline and is immutable afterwards except for Status and PageCount.
type Document struct {
	// ID is the unique identifier, assigned at ingestion and never reused.
	ID string

	// Filename is the original upload filename, used for citations.
	Filename string

	// Checksum is the SHA-256 of the file content, used to detect
	// re-ingestion of an already-seen file.
	Checksum string

	// PageCount is the number of physical pages.
	PageCount int

	// Status is the ingestion lifecycle state.
	Status DocumentStatus

	// UploadedAt is when ingestion first saw the file.
	UploadedAt time.Time
}

// Page is one page of a Document. Its identity is the
// (DocumentID, PageNumber) pair; that pair is the join key between the
// vector index payload and any later image lookup, and must round-trip
// unchanged between ingestion and retrieval.
type Page struct {
	// DocumentID is a back-reference to the owning Document.
	DocumentID string

	// PageNumber is 1-based and unique within a document.
	PageNumber int

	// ImagePath is where the rendered page image was written.
	ImagePath string

	// Image holds the rendered page raster. It is transient: it lives
	// only long enough to be embedded and is not kept after indexing.
	Image []byte

	// Text is the best-effort extracted text for this page. It may be a
	// placeholder when extraction fails, but is never empty by the time
	// the page is embedded.
	Text string

	// EmbeddingGenerated records whether an embedding was produced.
	// Pages without embeddings are excluded from the index.
	EmbeddingGenerated bool
}

// PlaceholderText returns the fallback text content for a page whose
// text could not be extracted. Pages are always indexed with at least
// this much context so that citations remain possible.
func PlaceholderText(filename string, pageNumber int) string {
	return fmt.Sprintf("Document: %s, Page: %d - Content not extracted", filename, pageNumber)
}
