package port

import (
	"context"

	"lawrag/internal/domain"
)

// Retriever answers semantic queries against the indexed corpus.
type Retriever interface {
	// Search returns at most limit documents with stored content_length
	// >= minContentLength, ordered by descending similarity. A store
	// outage is an error (wrapping domain unavailability), never a
	// silently empty result.
	Search(ctx context.Context, query string, limit, minContentLength int) ([]domain.ScoredDocument, error)
}
