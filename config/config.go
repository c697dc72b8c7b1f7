package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the lawrag tool.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
}

// IngestConfig holds ingestion pipeline configuration.
type IngestConfig struct {
	FolderPattern   string `yaml:"folder_pattern"`   // dump folder name glob, e.g. "traffic_laws_*"
	DataFile        string `yaml:"data_file"`        // JSON dump file name inside each folder
	MinContentLen   int    `yaml:"min_content_len"`  // records shorter than this are skipped
	ExcerptMaxLen   int    `yaml:"excerpt_max_len"`  // payload excerpt cap, in runes
	EmbedTextMaxLen int    `yaml:"embed_text_max_len"`
	TitleMaxLen     int    `yaml:"title_max_len"`
	BatchSize       int    `yaml:"batch_size"`   // encode/upsert batch size
	EncodeWorkers   int    `yaml:"encode_workers"`
	StateDir        string `yaml:"state_dir"` // ledgers, catalog, run lock, run log
}

// QdrantConfig holds vector store connection configuration.
type QdrantConfig struct {
	URL           string `yaml:"url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	Collection    string `yaml:"collection"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	UpsertRetries int    `yaml:"upsert_retries"`
}

// EmbeddingConfig holds embedding model configuration.
type EmbeddingConfig struct {
	Provider  string  `yaml:"provider"` // "openai", "ollama", "local"
	Model     string  `yaml:"model"`
	BaseURL   string  `yaml:"base_url"`
	APIKeyEnv string  `yaml:"api_key_env"`
	Dimension int     `yaml:"dimension"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second to the embedding API, 0 = unlimited
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK          int `yaml:"top_k"`
	MinContentLen int `yaml:"min_content_len"` // quality gate against near-empty documents
	CacheSize     int `yaml:"cache_size"`
	CacheTTLSec   int `yaml:"cache_ttl_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			FolderPattern:   "traffic_laws_*",
			DataFile:        "scraped_data_with_content.json",
			MinContentLen:   100,
			ExcerptMaxLen:   2000,
			EmbedTextMaxLen: 8000,
			TitleMaxLen:     500,
			BatchSize:       64,
			EncodeWorkers:   4,
			StateDir:        ".lawrag",
		},
		Qdrant: QdrantConfig{
			URL:           "http://localhost:6333",
			APIKeyEnv:     "QDRANT_API_KEY",
			Collection:    "legal_documents",
			TimeoutSec:    60,
			UpsertRetries: 3,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "EMBEDDING_API_KEY",
			Dimension: 768,
			RateLimit: 0,
		},
		Retrieve: RetrieveConfig{
			TopK:          10,
			MinContentLen: 100,
			CacheSize:     100,
			CacheTTLSec:   300,
		},
	}
}

// Load loads configuration from a YAML file, layered over defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for lawrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "lawrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".lawrag", "config.yaml")
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

// StatePath returns the path of a state file under the state directory.
func (c *Config) StatePath(name string) string {
	return filepath.Join(c.Ingest.StateDir, name)
}

// EnsureStateDir ensures the state directory exists.
func (c *Config) EnsureStateDir() error {
	return os.MkdirAll(c.Ingest.StateDir, 0755)
}
