package domain

// PagePayload is the metadata stored alongside every vector in the index.
// It is deliberately denormalised: a payload must contain enough to
// reconstruct a citation (filename + page number) without consulting any
// other store.
type PagePayload struct {
	// DocumentID identifies the owning document.
	DocumentID string `json:"document_id"`

	// PageNumber is the 1-based page within the document.
	PageNumber int `json:"page_number"`

	// Filename is the original upload filename.
	Filename string `json:"filename"`

	// Text is the page text content used for prompting and snippets.
	Text string `json:"text_content"`

	// ImagePath is where the rendered page image lives on disk.
	ImagePath string `json:"image_path,omitempty"`

	// SourceTag records how the record entered the index.
	SourceTag string `json:"source_tag"`

	// Timestamp is the RFC 3339 indexing time.
	Timestamp string `json:"timestamp"`
}

// SourceTagUpload marks records created by document ingestion.
const SourceTagUpload = "document_upload"

// VectorRecord is the unit stored in the vector index. RecordID is unique
// per record and is not the same thing as page identity; the page identity
// lives in the payload.
type VectorRecord struct {
	RecordID string
	Vector   []float32
	Payload  PagePayload
}
