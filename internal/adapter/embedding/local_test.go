package embedding

import (
	"math"
	"testing"
)

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(64)

	a, err := e.Embed([]string{"mức phạt nồng độ cồn"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed([]string{"mức phạt nồng độ cồn"})
	if err != nil {
		t.Fatal(err)
	}

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[0][i], b[0][i])
		}
	}
}

func TestHashingEmbedder_BatchIndependent(t *testing.T) {
	e := NewHashingEmbedder(64)

	alone, err := e.Embed([]string{"giấy phép lái xe"})
	if err != nil {
		t.Fatal(err)
	}
	batched, err := e.Embed([]string{"đèn tín hiệu", "giấy phép lái xe", "tốc độ tối đa"})
	if err != nil {
		t.Fatal(err)
	}

	for i := range alone[0] {
		if alone[0][i] != batched[1][i] {
			t.Fatalf("batch placement changed the vector at %d", i)
		}
	}
}

func TestHashingEmbedder_Dimension(t *testing.T) {
	e := NewHashingEmbedder(128)
	if e.Dimension() != 128 {
		t.Errorf("Dimension() = %d, want 128", e.Dimension())
	}

	vecs, err := e.Embed([]string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vecs {
		if len(v) != 128 {
			t.Errorf("vector length = %d, want 128", len(v))
		}
	}
}

func TestHashingEmbedder_Normalized(t *testing.T) {
	e := NewHashingEmbedder(64)
	vecs, err := e.Embed([]string{"vượt đèn đỏ bị phạt bao nhiêu tiền"})
	if err != nil {
		t.Fatal(err)
	}

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("squared norm = %f, want 1.0", norm)
	}
}

func TestHashingEmbedder_SimilarTextScoresHigher(t *testing.T) {
	e := NewHashingEmbedder(256)
	vecs, err := e.Embed([]string{
		"giấy phép lái xe hạng A1",
		"thủ tục cấp giấy phép lái xe",
		"thuế thu nhập doanh nghiệp",
	})
	if err != nil {
		t.Fatal(err)
	}

	related := dot(vecs[0], vecs[1])
	unrelated := dot(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("related similarity %f should beat unrelated %f", related, unrelated)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
