package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawrag/internal/adapter/cache"
	"lawrag/internal/adapter/embedding"
	"lawrag/internal/adapter/retriever"
	"lawrag/internal/adapter/scanner"
	"lawrag/internal/domain"
	"lawrag/internal/normalize"
)

type countingRetriever struct {
	calls     int
	gotLimit  int
	gotMinLen int
	results   []domain.ScoredDocument
	err       error
}

func (r *countingRetriever) Search(_ context.Context, _ string, limit, minContentLength int) ([]domain.ScoredDocument, error) {
	r.calls++
	r.gotLimit = limit
	r.gotMinLen = minContentLength
	return r.results, r.err
}

func TestRetrieve_AppliesDefaults(t *testing.T) {
	r := &countingRetriever{}
	uc := NewRetrieveUseCase(r, nil, 10, 100)

	_, err := uc.Retrieve(context.Background(), "q", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 10, r.gotLimit)
	assert.Equal(t, 100, r.gotMinLen)

	// An explicit zero threshold is a real value, not a request for the
	// default.
	_, err = uc.Retrieve(context.Background(), "q", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, r.gotLimit)
	assert.Equal(t, 0, r.gotMinLen)
}

func TestRetrieve_CachesRepeatedQueries(t *testing.T) {
	r := &countingRetriever{results: []domain.ScoredDocument{{Score: 0.9}}}
	uc := NewRetrieveUseCase(r, cache.NewQueryCache(10, time.Minute), 10, 100)

	first, err := uc.Retrieve(context.Background(), "nồng độ cồn", 5, 100)
	require.NoError(t, err)
	second, err := uc.Retrieve(context.Background(), "nồng độ cồn", 5, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, r.calls, "the repeat must be served from cache")
	assert.Equal(t, first, second)

	// Different parameters are a different query.
	_, err = uc.Retrieve(context.Background(), "nồng độ cồn", 3, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
}

func TestRetrieve_ErrorsAreNotCached(t *testing.T) {
	r := &countingRetriever{err: errors.New("store down")}
	uc := NewRetrieveUseCase(r, cache.NewQueryCache(10, time.Minute), 10, 100)

	_, err := uc.Retrieve(context.Background(), "q", 5, 100)
	require.Error(t, err)

	r.err = nil
	_, err = uc.Retrieve(context.Background(), "q", 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls, "a failure must not poison the cache")
}

// TestRetrieve_FiltersThinDocuments runs the full pipeline: ingest a
// corpus that includes thin documents, then search with a quality
// threshold. Licensing pages below 100 characters are stored (the
// ingestion floor here is lower) but must never surface.
func TestRetrieve_FiltersThinDocuments(t *testing.T) {
	store := newFakeStore()
	env := newIngestEnv(t, store)

	pad := strings.Repeat("quy định về hồ sơ, trình tự và thẩm quyền cấp đổi ", 4)
	writeDump(t, env.root, "traffic_laws_1", []domain.RawRecord{
		{URL: "https://example.com/gplx-1", Title: "Cấp giấy phép lái xe hạng A1", Content: "thủ tục cấp giấy phép lái xe " + pad},
		{URL: "https://example.com/gplx-2", Title: "Đổi giấy phép lái xe", Content: "đổi giấy phép lái xe hết hạn " + pad},
		{URL: "https://example.com/gplx-3", Title: "Thu hồi giấy phép lái xe", Content: "thu hồi giấy phép lái xe " + pad},
		{URL: "https://example.com/gplx-thin-1", Title: "Giấy phép lái xe", Content: "giấy phép lái xe hạng A2"},
		{URL: "https://example.com/gplx-thin-2", Title: "Giấy phép lái xe", Content: "giấy phép lái xe quốc tế"},
		{URL: "https://example.com/thue", Title: "Thuế thu nhập", Content: "thuế thu nhập doanh nghiệp " + pad},
		{URL: "https://example.com/dat-dai", Title: "Luật Đất đai", Content: "quyền sử dụng đất nông nghiệp " + pad},
	})

	embedder := embedding.NewHashingEmbedder(256)
	uc := NewIngestUseCase(
		scanner.New("traffic_laws_*", "scraped_data_with_content.json"),
		env.led,
		normalize.New(normalize.Limits{MinContentLen: 10}),
		embedder,
		store,
		nil,
		64, 2,
		discardLogger(),
	)
	_, err := uc.Ingest(context.Background(), env.root)
	require.NoError(t, err)

	ruc := NewRetrieveUseCase(retriever.NewSemanticRetriever(store, embedder), nil, 10, 100)
	results, err := ruc.Retrieve(context.Background(), "Giấy phép lái xe", 3, 100)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.Payload.ContentLength, 100,
			"%s is below the quality threshold", res.Payload.URL)
	}
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score,
			"results must be ordered by descending similarity")
	}
}
