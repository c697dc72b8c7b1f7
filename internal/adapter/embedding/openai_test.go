package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestEmbedder(baseURL string, dim int) *OpenAIEmbedder {
	return newEmbedder("test-key", "test-model", baseURL, dim, 0)
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}

		resp := embeddingResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(i), 1, 2},
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 3)
	vecs, err := e.Embed([]string{"một", "hai"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if vecs[1][0] != 1 {
		t.Errorf("vectors not matched to input order: %v", vecs[1])
	}
}

func TestOpenAIEmbedder_IsolatesFailingItem(t *testing.T) {
	// The server rejects any batch containing the poison text, so the
	// embedder must fall back to per-item requests and only the poison
	// item comes back nil.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)

		for _, text := range req.Input {
			if text == "poison" {
				http.Error(w, `{"error":{"message":"bad input"}}`, http.StatusBadRequest)
				return
			}
		}

		resp := embeddingResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, embeddingData{Index: i, Embedding: []float32{1}})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 1)
	vecs, err := e.Embed([]string{"ok-1", "poison", "ok-2"})
	if err != nil {
		t.Fatalf("batch with one bad item must not fail wholesale: %v", err)
	}
	if vecs[0] == nil || vecs[2] == nil {
		t.Error("healthy items must survive a poisoned batch")
	}
	if vecs[1] != nil {
		t.Error("the failing item must come back nil")
	}
}

func TestOpenAIEmbedder_AllItemsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL, 1)
	if _, err := e.Embed([]string{"a", "b"}); err == nil {
		t.Error("expected an error when every item fails")
	}
}

func TestOpenAIEmbedder_EmptyInput(t *testing.T) {
	e := newTestEmbedder("http://unused", 1)
	vecs, err := e.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if vecs != nil {
		t.Errorf("expected nil for empty input, got %v", vecs)
	}
}
