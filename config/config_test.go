package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ingest.ExcerptMaxLen != 2000 {
		t.Errorf("expected ExcerptMaxLen=2000, got %d", cfg.Ingest.ExcerptMaxLen)
	}
	if cfg.Ingest.MinContentLen != 100 {
		t.Errorf("expected MinContentLen=100, got %d", cfg.Ingest.MinContentLen)
	}
	if cfg.Ingest.BatchSize != 64 {
		t.Errorf("expected BatchSize=64, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.Embedding.Dimension != 768 {
		t.Errorf("expected Dimension=768, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Qdrant.Collection != "legal_documents" {
		t.Errorf("expected collection legal_documents, got %s", cfg.Qdrant.Collection)
	}
	if cfg.Retrieve.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieve.TopK)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lawrag.yaml")

	content := `
ingest:
  folder_pattern: "dumps_*"
  batch_size: 8
qdrant:
  collection: test_collection
retrieve:
  top_k: 3
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ingest.FolderPattern != "dumps_*" {
		t.Errorf("expected FolderPattern=dumps_*, got %s", cfg.Ingest.FolderPattern)
	}
	if cfg.Ingest.BatchSize != 8 {
		t.Errorf("expected BatchSize=8, got %d", cfg.Ingest.BatchSize)
	}
	if cfg.Qdrant.Collection != "test_collection" {
		t.Errorf("expected collection test_collection, got %s", cfg.Qdrant.Collection)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieve.TopK)
	}
	// Untouched keys keep their defaults.
	if cfg.Ingest.ExcerptMaxLen != 2000 {
		t.Errorf("expected default ExcerptMaxLen=2000, got %d", cfg.Ingest.ExcerptMaxLen)
	}
}

func TestLoadFromDir_FallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Qdrant.URL != "http://localhost:6333" {
		t.Errorf("expected default Qdrant URL, got %s", cfg.Qdrant.URL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lawrag.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 7
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Retrieve.TopK != 7 {
		t.Errorf("expected TopK=7 after round trip, got %d", loaded.Retrieve.TopK)
	}
}
