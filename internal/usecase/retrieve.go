package usecase

import (
	"context"

	"lawrag/internal/adapter/cache"
	"lawrag/internal/domain"
	"lawrag/internal/port"
)

// RetrieveUseCase is the read path consumed by the chat orchestrator's
// context assembler. It is safe for concurrent use.
type RetrieveUseCase struct {
	retriever     port.Retriever
	cache         *cache.QueryCache // optional
	defaultTopK   int
	defaultMinLen int
}

func NewRetrieveUseCase(retriever port.Retriever, qc *cache.QueryCache, defaultTopK, defaultMinLen int) *RetrieveUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 10
	}
	return &RetrieveUseCase{
		retriever:     retriever,
		cache:         qc,
		defaultTopK:   defaultTopK,
		defaultMinLen: defaultMinLen,
	}
}

// Retrieve returns the top documents for a query. Zero limit and negative
// minContentLength fall back to the configured defaults. Failures are
// returned to the caller, never swallowed into an empty result.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, query string, limit, minContentLength int) ([]domain.ScoredDocument, error) {
	if limit <= 0 {
		limit = u.defaultTopK
	}
	if minContentLength < 0 {
		minContentLength = u.defaultMinLen
	}

	key := cache.Key(query, limit, minContentLength)
	if u.cache != nil {
		if results, ok := u.cache.Get(key); ok {
			return results, nil
		}
	}

	results, err := u.retriever.Search(ctx, query, limit, minContentLength)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		u.cache.Put(key, results)
	}
	return results, nil
}
