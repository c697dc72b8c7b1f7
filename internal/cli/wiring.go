package cli

import (
	"fmt"
	"os"
	"time"

	"lawrag/config"
	"lawrag/internal/adapter/catalog"
	"lawrag/internal/adapter/embedding"
	"lawrag/internal/adapter/ledger"
	"lawrag/internal/adapter/qdrant"
	"lawrag/internal/port"
)

const (
	scannedLedgerFile  = "processed_folders.log"
	embeddedLedgerFile = "embedded_documents.jsonl"
	catalogFile        = "catalog.db"
	runLockFile        = "ingest.lock"
	runLogFile         = "ingest.log"
)

// newEmbedder builds the configured encoder. The same construction is
// used by ingest and query so both sides encode with one model.
func newEmbedder(cfg *config.Config, forceLocal bool) (port.Embedder, error) {
	if forceLocal {
		return embedding.NewHashingEmbedder(cfg.Embedding.Dimension), nil
	}

	e := cfg.Embedding
	switch e.Provider {
	case "openai":
		baseURL := e.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model, baseURL, e.Dimension, e.RateLimit)
	case "ollama":
		return embedding.NewOllamaEmbedder(e.Model, e.BaseURL, e.Dimension), nil
	case "local":
		return embedding.NewHashingEmbedder(e.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", e.Provider)
	}
}

func newStore(cfg *config.Config) *qdrant.Store {
	return qdrant.NewStore(qdrant.Config{
		URL:           cfg.Qdrant.URL,
		APIKey:        os.Getenv(cfg.Qdrant.APIKeyEnv),
		Collection:    cfg.Qdrant.Collection,
		Timeout:       time.Duration(cfg.Qdrant.TimeoutSec) * time.Second,
		UpsertRetries: cfg.Qdrant.UpsertRetries,
	})
}

func openLedger(cfg *config.Config) (*ledger.FileLedger, error) {
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return ledger.Open(cfg.StatePath(scannedLedgerFile), cfg.StatePath(embeddedLedgerFile))
}

func openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return catalog.Open(cfg.StatePath(catalogFile))
}
