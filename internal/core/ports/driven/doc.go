// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): PDF rendering, text extraction, embeddings,
// the vector index, web search, generation, and metadata storage.
package driven
