// Package domain contains the core business types for the document
// question-answering pipeline: documents and their pages, vector records,
// retrieval results, and synthesized answers.
//
// Domain types have no dependencies on adapters or external SDKs.
package domain
