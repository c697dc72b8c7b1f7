package port

// Embedder generates vector embeddings for text.
//
// Implementations must be deterministic for a pinned model version and
// batch-independent: a text's vector does not depend on which batch it was
// encoded in. The same embedder instance (same model) must serve both
// ingestion and query-time encoding for one collection generation.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text. A nil vector at
	// position i means text i could not be encoded and was skipped; the
	// rest of the batch is still returned.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
