package driven

import "context"

// Generator invokes a generative model to synthesize answer text.
// This is an optional service: when nil, synthesis degrades to templated
// answers built directly from the retrieved contexts.
//
// Implementations may include:
//   - Google Gemini (multimodal: prompt plus page images)
//   - OpenAI chat completions (text only; images are ignored)
type Generator interface {
	// Generate produces text from a prompt and optional PNG page images.
	// Text-only implementations ignore images.
	Generate(ctx context.Context, prompt string, images [][]byte) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
