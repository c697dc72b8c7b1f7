package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawrag/internal/domain"
)

func TestReset_ClearsEverythingTogether(t *testing.T) {
	store := newFakeStore()
	env := newIngestEnv(t, store)
	cat := openTestCatalog(t)
	writeDump(t, env.root, "traffic_laws_1", []domain.RawRecord{
		{URL: "https://example.com/a", Content: longText("a")},
		{URL: "https://example.com/b", Content: longText("b")},
	})
	ingestWithCatalog(t, env, cat)

	require.NoError(t, Reset(context.Background(), store, env.led, cat))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	scanned, embedded := env.led.Counts()
	assert.Zero(t, scanned)
	assert.Zero(t, embedded)

	catCount, err := cat.Count()
	require.NoError(t, err)
	assert.Zero(t, catCount)

	// A fresh ingestion over the same sources starts from scratch.
	summary, err := env.useCase().Ingest(context.Background(), env.root)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Embedded)
}
