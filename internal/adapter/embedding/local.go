package embedding

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

// HashingEmbedder is a deterministic, dependency-free encoder: tokens are
// feature-hashed into a fixed number of buckets and the resulting vector
// is L2-normalized, so cosine similarity over it behaves sensibly. Each
// text is encoded independently, which makes the output batch-independent
// by construction. It exists for offline runs and tests; it is not a
// substitute for a trained model.
type HashingEmbedder struct {
	dimension int
}

func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = 768
	}
	return &HashingEmbedder{dimension: dimension}
}

func (e *HashingEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.encode(text)
	}
	return embeddings, nil
}

func (e *HashingEmbedder) encode(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dimension))
		// Use one hash bit as the sign so collisions tend to cancel.
		if sum&(1<<63) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return "feature-hashing"
}
