package port

import (
	"context"

	"lawrag/internal/domain"
)

// Point is one (id, vector, payload) tuple to upsert. ID must be a pure
// function of the document identity, never a counter.
type Point struct {
	ID      string
	Vector  []float32
	Payload domain.Payload
}

// VectorStore is the collection the ingestion pipeline writes and the
// retriever reads. Upserts are idempotent: writing the same ID twice
// replaces the point.
type VectorStore interface {
	// EnsureCollection creates the collection (cosine distance, fixed
	// dimension) if missing, and fails if it exists with a different
	// dimension.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert writes a batch of points and waits for acknowledgement.
	Upsert(ctx context.Context, points []Point) error

	// Search returns up to limit nearest points by cosine similarity,
	// best first, excluding points with a stored content_length below
	// minContentLength.
	Search(ctx context.Context, vector []float32, limit, minContentLength int) ([]domain.ScoredDocument, error)

	// ExistingIDs reports which of the given point ids exist.
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)

	// Count returns the number of points in the collection.
	Count(ctx context.Context) (int, error)

	// Drop deletes the collection.
	Drop(ctx context.Context) error
}
