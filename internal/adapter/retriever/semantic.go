// Package retriever implements query-time semantic retrieval on top of
// the vector store.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"lawrag/internal/domain"
	"lawrag/internal/port"
)

// SemanticRetriever encodes the query with the same embedder used at
// ingestion and searches the collection. It never mutates the index and
// is safe for concurrent use.
type SemanticRetriever struct {
	store    port.VectorStore
	embedder port.Embedder
}

func NewSemanticRetriever(store port.VectorStore, embedder port.Embedder) *SemanticRetriever {
	return &SemanticRetriever{
		store:    store,
		embedder: embedder,
	}
}

// Search returns at most limit documents whose stored content_length is at
// least minContentLength, ordered by descending similarity. Equal scores
// keep the store's order; no secondary sort is imposed. Store outages
// surface as errors wrapping domain.ErrUnavailable, never as an empty
// result set.
func (r *SemanticRetriever) Search(ctx context.Context, query string, limit, minContentLength int) ([]domain.ScoredDocument, error) {
	if r.store == nil || r.embedder == nil {
		return nil, fmt.Errorf("semantic search not configured")
	}

	embeddings, err := r.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 || embeddings[0] == nil {
		return nil, fmt.Errorf("query embedding returned empty result")
	}

	results, err := r.store.Search(ctx, embeddings[0], limit, minContentLength)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	// The store already filters and ranks; re-apply both here so the
	// contract holds no matter where the filter ran.
	filtered := results[:0]
	for _, res := range results {
		if res.Payload.ContentLength >= minContentLength {
			filtered = append(filtered, res)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}
