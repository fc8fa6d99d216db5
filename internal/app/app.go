// Package app wires adapters to services. It is the only place that
// decides which concrete providers run; everything below it receives its
// dependencies explicitly.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/config/file"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/embedding/colpali"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/embedding/hash"
	openaiembed "github.com/docsage-labs/docsage-cli/internal/adapters/driven/embedding/openai"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/generation/gemini"
	openaigen "github.com/docsage-labs/docsage-cli/internal/adapters/driven/generation/openai"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/pdftext"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/rasterizer/poppler"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/docsage-labs/docsage-cli/internal/adapters/driven/vector/memory"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/vector/qdrant"
	"github.com/docsage-labs/docsage-cli/internal/adapters/driven/websearch/tavily"
	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/core/services"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// App holds the wired services and the resources behind them.
type App struct {
	Config    *file.ConfigStore
	Ingestion *services.IngestionPipeline
	Query     *services.QueryRouter
	Documents *services.DocumentManager

	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	docs     *sqlite.Store
	gen      driven.Generator
}

// New builds the application from configuration. Unconfigured optional
// providers degrade rather than fail: no embedding server means the
// deterministic hash embedder, no vector database means the in-memory
// store, no generator or web search key means templated answers and no
// web tier.
func New(configDir string) (*App, error) {
	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	docs, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return nil, fmt.Errorf("opening document registry: %w", err)
	}

	embedder := buildEmbedder(cfg)
	vectors := buildVectorStore(cfg)
	generator := buildGenerator(cfg)
	web := buildWebSearch(cfg)

	rasterizer, err := buildRasterizer(cfg)
	if err != nil {
		docs.Close()
		return nil, err
	}

	collection := cfg.GetString("vector.collection")
	if collection == "" {
		collection = qdrant.DefaultCollection
	}

	pipeline := services.NewIngestionPipeline(
		rasterizer,
		pdftext.NewExtractor(),
		embedder,
		vectors,
		docs,
		services.PipelineConfig{
			Collection:   collection,
			Dimension:    embedder.Dimensions(),
			EmbedWorkers: cfg.GetInt("ingestion.workers"),
		},
	)

	retriever := services.NewRetrievalEngine(
		embedder, vectors, docs,
		sufficiencyPolicy(cfg),
		cfg.GetInt("retrieval.top_k"),
	)

	router := services.NewQueryRouter(retriever, services.NewSynthesizer(generator), web)

	return &App{
		Config:    cfg,
		Ingestion: pipeline,
		Query:     router,
		Documents: services.NewDocumentManager(docs, vectors),
		embedder:  embedder,
		vectors:   vectors,
		docs:      docs,
		gen:       generator,
	}, nil
}

// Close releases all held resources.
func (a *App) Close() error {
	if a.gen != nil {
		a.gen.Close() //nolint:errcheck
	}
	a.embedder.Close() //nolint:errcheck
	a.vectors.Close()  //nolint:errcheck
	return a.docs.Close()
}

// buildEmbedder selects the embedding provider. Exactly one embedder is
// constructed: ingestion and query embeddings must share a vector space.
func buildEmbedder(cfg *file.ConfigStore) driven.EmbeddingService {
	provider := cfg.GetString("embedding.provider")
	switch provider {
	case "colpali":
		return colpali.NewEmbeddingService(colpali.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			APIKey:     secret(cfg, "embedding.api_key", "COLPALI_API_KEY"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     secret(cfg, "embedding.api_key", "OPENAI_API_KEY"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		if err == nil {
			return svc
		}
		logger.Warn("OpenAI embedding unavailable (%v), using deterministic fallback", err)
	case "", "hash":
		// Fall through to the hash embedder.
	default:
		logger.Warn("Unknown embedding provider %q, using deterministic fallback", provider)
	}
	return hash.NewEmbeddingService(cfg.GetInt("embedding.dimensions"))
}

// buildVectorStore selects the vector backend: Qdrant when a URL is
// configured, the in-memory store otherwise.
func buildVectorStore(cfg *file.ConfigStore) driven.VectorStore {
	url := cfg.GetString("vector.url")
	if url == "" {
		url = os.Getenv("QDRANT_URL")
	}
	if url == "" {
		logger.Debug("No vector database configured, using in-memory store")
		return vectormemory.NewStore()
	}
	return qdrant.NewStore(qdrant.Config{
		URL:        url,
		APIKey:     secret(cfg, "vector.api_key", "QDRANT_API_KEY"),
		Collection: cfg.GetString("vector.collection"),
	})
}

// buildGenerator selects the generation provider, nil when unconfigured.
func buildGenerator(cfg *file.ConfigStore) driven.Generator {
	provider := cfg.GetString("generation.provider")
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		key := secret(cfg, "generation.api_key", "GEMINI_API_KEY")
		if key == "" {
			return nil
		}
		gen, err := gemini.NewGenerator(gemini.Config{
			APIKey: key,
			Model:  cfg.GetString("generation.model"),
		})
		if err != nil {
			logger.Warn("Gemini unavailable: %v", err)
			return nil
		}
		return gen
	case "openai":
		key := secret(cfg, "generation.api_key", "OPENAI_API_KEY")
		if key == "" {
			return nil
		}
		gen, err := openaigen.NewGenerator(openaigen.Config{
			APIKey: key,
			Model:  cfg.GetString("generation.model"),
		})
		if err != nil {
			logger.Warn("OpenAI generation unavailable: %v", err)
			return nil
		}
		return gen
	default:
		logger.Warn("Unknown generation provider %q, synthesis will use templated answers", provider)
		return nil
	}
}

// buildWebSearch constructs the Tavily client, nil when no key is set.
func buildWebSearch(cfg *file.ConfigStore) driven.WebSearch {
	key := secret(cfg, "websearch.api_key", "TAVILY_API_KEY")
	if key == "" {
		return nil
	}
	client, err := tavily.NewClient(tavily.Config{APIKey: key})
	if err != nil {
		logger.Warn("Web search unavailable: %v", err)
		return nil
	}
	return client
}

// buildRasterizer constructs the poppler rasterizer with the configured
// image directory.
func buildRasterizer(cfg *file.ConfigStore) (*poppler.Rasterizer, error) {
	imageDir := cfg.GetString("ingestion.image_dir")
	if imageDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		imageDir = filepath.Join(home, ".docsage", "data", "pages")
	}
	return poppler.NewRasterizer(poppler.Config{
		ImageDir: imageDir,
		DPI:      cfg.GetInt("ingestion.dpi"),
	})
}

// sufficiencyPolicy builds the retrieval thresholds, starting from the
// defaults and applying any configured overrides.
func sufficiencyPolicy(cfg *file.ConfigStore) domain.SufficiencyPolicy {
	policy := domain.DefaultSufficiencyPolicy()
	if v := cfg.GetFloat("retrieval.high_score_threshold"); v > 0 {
		policy.HighScore = v
	}
	if v := cfg.GetInt("retrieval.high_min_results"); v > 0 {
		policy.HighMinResults = v
	}
	if v := cfg.GetFloat("retrieval.medium_score_threshold"); v > 0 {
		policy.MediumScore = v
	}
	if v := cfg.GetInt("retrieval.medium_min_results"); v > 0 {
		policy.MediumMinResults = v
	}
	return policy
}

// secret reads a credential from config, falling back to an environment
// variable so keys can stay out of the config file.
func secret(cfg *file.ConfigStore, key, envVar string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}
