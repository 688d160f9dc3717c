package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"docqa/config"
	"docqa/internal/adapter/cache"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/index"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/retriever"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

// newEmbedder builds the embedding client the config asks for.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(e.Model, e.BaseURL)
	case "compatible":
		return embedding.NewOpenAICompatibleEmbedder(e.APIKeyEnv, e.Model, e.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(e.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", e.Provider)
	}
}

// newLLM builds the chat client the config asks for.
func newLLM(cfg *config.Config) (port.LLM, error) {
	l := cfg.LLM
	switch l.Provider {
	case "groq":
		return llm.NewGroqClient(l.APIKeyEnv, l.Model, l.Temperature)
	case "openai":
		return llm.NewOpenAIClient(l.APIKeyEnv, l.Model, l.Temperature)
	case "ollama":
		return llm.NewOllamaClient(l.Model, l.BaseURL, l.Temperature)
	case "compatible":
		return llm.NewCompatibleClient(l.APIKeyEnv, l.Model, l.BaseURL, l.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", l.Provider)
	}
}

// openIndex opens the configured vector index backend. Local paths are
// resolved relative to the workspace root.
func openIndex(cfg *config.Config, rootDir string) (port.VectorIndex, error) {
	switch cfg.Index.Backend {
	case "local":
		path := cfg.Index.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, path)
		}
		return index.NewLocal(path)
	case "qdrant":
		return index.NewQdrant(index.QdrantConfig{
			URL:       cfg.Index.URL,
			APIKeyEnv: cfg.Index.APIKeyEnv,
			Timeout:   30 * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown index backend: %q", cfg.Index.Backend)
	}
}

// buildOrchestrator assembles the full query pipeline from the loaded
// config. The returned cleanup closes the index and must always be
// called.
func buildOrchestrator() (*usecase.Orchestrator, func(), error) {
	cfg := GetConfig()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	chat, err := newLLM(cfg)
	if err != nil {
		return nil, nil, err
	}
	idx, err := openIndex(cfg, GetRootDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}

	var qc *cache.QueryCache
	if cfg.Retrieve.CacheSize > 0 {
		qc = cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL())
	}

	tool := retriever.NewDocumentSearch(
		embedder,
		idx,
		cfg.Index.Collection,
		cfg.Retrieve.TopK,
		cfg.Retrieve.MaxExcerpt,
		qc,
	)

	orch := usecase.NewOrchestrator(chat, tool, cfg.LLM.Domain)
	cleanup := func() { _ = idx.Close() }
	return orch, cleanup, nil
}
