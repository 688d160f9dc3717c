package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// Config holds all configuration for the document QA tool.
type Config struct {
	Documents DocumentsConfig `yaml:"documents"`
	Splitter  SplitterConfig  `yaml:"splitter"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
}

// DocumentsConfig describes the corpus on disk.
type DocumentsConfig struct {
	Path     string   `yaml:"path"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// SplitterConfig holds chunking configuration.
type SplitterConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "compatible", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // For "ollama" and "compatible"
	Dimension int    `yaml:"dimension"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Backend    string `yaml:"backend"` // "local" or "qdrant"
	Collection string `yaml:"collection"`
	Path       string `yaml:"path"`        // local backend: bbolt file
	URL        string `yaml:"url"`         // qdrant backend
	APIKeyEnv  string `yaml:"api_key_env"` // qdrant backend
}

// IndexingConfig paces the indexing pipeline.
type IndexingConfig struct {
	BatchSize    int `yaml:"batch_size"`
	BatchDelayMS int `yaml:"batch_delay_ms"`
}

// BatchDelay returns the inter-batch pause as a duration.
func (c IndexingConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// LLMConfig holds chat model configuration for triage and synthesis.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "groq", "openai", "ollama", "compatible"
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	Domain      string  `yaml:"domain"` // corpus subject matter, used in prompts
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int `yaml:"top_k"`
	MaxExcerpt   int `yaml:"max_excerpt"`
	CacheSize    int `yaml:"cache_size"`
	CacheTTLSecs int `yaml:"cache_ttl_secs"`
}

// CacheTTL returns the query cache entry lifetime as a duration.
func (c RetrieveConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Documents: DocumentsConfig{
			Path:     "./documents",
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
		Splitter: SplitterConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
		},
		Index: IndexConfig{
			Backend:    "local",
			Collection: "documents",
			Path:       filepath.Join(".docqa", "index.db"),
			APIKeyEnv:  "QDRANT_API_KEY",
		},
		Indexing: IndexingConfig{
			BatchSize:    50,
			BatchDelayMS: 1000,
		},
		LLM: LLMConfig{
			Provider:    "groq",
			Model:       "llama-3.3-70b-versatile",
			APIKeyEnv:   "GROQ_API_KEY",
			Temperature: 0.3,
			Domain:      "the indexed documents",
		},
		Retrieve: RetrieveConfig{
			TopK:         5,
			MaxExcerpt:   800,
			CacheSize:    100,
			CacheTTLSecs: 300,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Splitter.ChunkSize <= 0 {
		return fmt.Errorf("splitter.chunk_size must be positive, got %d: %w", c.Splitter.ChunkSize, domain.ErrInvalidConfig)
	}
	if c.Splitter.ChunkOverlap < 0 || c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("splitter.chunk_overlap %d must be non-negative and smaller than chunk_size %d: %w",
			c.Splitter.ChunkOverlap, c.Splitter.ChunkSize, domain.ErrInvalidConfig)
	}
	if c.Indexing.BatchSize <= 0 {
		return fmt.Errorf("indexing.batch_size must be positive, got %d: %w", c.Indexing.BatchSize, domain.ErrInvalidConfig)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d: %w", c.Retrieve.TopK, domain.ErrInvalidConfig)
	}
	switch c.Index.Backend {
	case "local", "qdrant":
	default:
		return fmt.Errorf("index.backend must be \"local\" or \"qdrant\", got %q: %w", c.Index.Backend, domain.ErrInvalidConfig)
	}
	if c.Index.Backend == "qdrant" && c.Index.URL == "" {
		return fmt.Errorf("index.url is required for the qdrant backend: %w", domain.ErrInvalidConfig)
	}
	return nil
}

// DataDir returns the directory holding local state for a workspace.
func DataDir(dir string) string {
	return filepath.Join(dir, ".docqa")
}

// EnsureDataDir ensures the local state directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(DataDir(dir), 0755)
}
