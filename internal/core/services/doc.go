// Package services contains the core pipeline logic: document ingestion,
// retrieval with sufficiency gating, answer synthesis, and the fallback
// router that sequences them. Services depend only on the driven ports;
// providers are injected by the composition root.
package services
