package domain

import "fmt"

// Confidence is the tier attached to a sufficiency verdict.
type Confidence string

// Confidence tiers, highest trust first.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SufficiencyVerdict is the retrieval engine's judgment of whether the
// retrieved pages are good enough to answer without web fallback.
type SufficiencyVerdict struct {
	Sufficient bool
	Confidence Confidence
	Reason     string
}

// RetrievedContext is one page retrieved for a query, with its similarity
// score and optionally the page image loaded for multimodal synthesis.
type RetrievedContext struct {
	Payload PagePayload
	Score   float64

	// Image is loaded best-effort from Payload.ImagePath; nil when the
	// image is missing or the generator is text-only.
	Image []byte
}

// RetrievalResult is the per-query output of the retrieval engine.
// It is ephemeral: its lifetime is one query.
type RetrievalResult struct {
	// Contexts is ordered by descending similarity.
	Contexts []RetrievedContext

	// Verdict is the sufficiency judgment over Contexts.
	Verdict SufficiencyVerdict
}

// SufficiencyPolicy holds the score thresholds that drive the fallback
// decision. The thresholds are policy, not physics: they are configurable
// and tuned empirically, and this struct is their single definition.
type SufficiencyPolicy struct {
	// HighScore is the mean top-score at or above which retrieval is
	// sufficient with high confidence, given at least HighMinResults.
	HighScore      float64
	HighMinResults int

	// MediumScore is the mean top-score at or above which retrieval is
	// sufficient with medium confidence, given at least MediumMinResults.
	MediumScore      float64
	MediumMinResults int
}

// DefaultSufficiencyPolicy mirrors the reference tuning: mean > 0.8 with
// two or more hits is high confidence, mean > 0.6 with one hit is medium.
func DefaultSufficiencyPolicy() SufficiencyPolicy {
	return SufficiencyPolicy{
		HighScore:        0.8,
		HighMinResults:   2,
		MediumScore:      0.6,
		MediumMinResults: 1,
	}
}

// Evaluate computes a verdict from a score distribution. Scores are the
// similarity scores of the retrieved set, best first.
func (p SufficiencyPolicy) Evaluate(scores []float64) SufficiencyVerdict {
	if len(scores) == 0 {
		return SufficiencyVerdict{
			Sufficient: false,
			Confidence: ConfidenceLow,
			Reason:     "no results retrieved",
		}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	switch {
	case mean >= p.HighScore && len(scores) >= p.HighMinResults:
		return SufficiencyVerdict{
			Sufficient: true,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("%d results with mean score %.3f", len(scores), mean),
		}
	case mean >= p.MediumScore && len(scores) >= p.MediumMinResults:
		return SufficiencyVerdict{
			Sufficient: true,
			Confidence: ConfidenceMedium,
			Reason:     fmt.Sprintf("%d results with mean score %.3f", len(scores), mean),
		}
	default:
		return SufficiencyVerdict{
			Sufficient: false,
			Confidence: ConfidenceLow,
			Reason:     fmt.Sprintf("mean score %.3f below threshold %.2f", mean, p.MediumScore),
		}
	}
}
