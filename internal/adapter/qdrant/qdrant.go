// Package qdrant is a minimal REST client for the Qdrant collection the
// pipeline writes and the retriever reads. It assumes cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"lawrag/internal/domain"
	"lawrag/internal/port"
)

type Config struct {
	URL           string
	APIKey        string
	Collection    string
	Timeout       time.Duration
	UpsertRetries int // additional attempts after the first failed upsert
}

type Store struct {
	url        string
	apiKey     string
	collection string
	retries    int
	client     *http.Client
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.UpsertRetries
	if retries == 0 {
		retries = 3
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		retries:    retries,
		client:     &http.Client{Timeout: timeout},
	}
}

type collectionInfo struct {
	Result struct {
		PointsCount int `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist, and rejects an existing collection whose vector size differs
// from the encoder's dimension.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}

	var info collectionInfo
	status, err := s.doJSON(ctx, http.MethodGet, s.collectionURL(), nil, &info)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		if got := info.Result.Config.Params.Vectors.Size; got != dimension {
			return fmt.Errorf("collection %q has size %d, encoder produces %d: %w",
				s.collection, got, dimension, domain.ErrDimensionMismatch)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	status, err = s.doJSON(ctx, http.MethodPut, s.collectionURL(), body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("failed to create collection %q: status %d", s.collection, status)
	}
	return nil
}

// Upsert writes a batch of points with wait=true and retries the whole
// batch with backoff on failure. Retrying is always safe because point
// ids are deterministic and upserts replace, never duplicate.
func (s *Store) Upsert(ctx context.Context, points []port.Point) error {
	if len(points) == 0 {
		return nil
	}

	body := map[string]any{"points": toWirePoints(points)}
	url := s.collectionURL() + "/points?wait=true"

	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		status, err := s.doJSON(ctx, http.MethodPut, url, body, nil)
		if err == nil && status < 300 {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("upsert returned status %d", status)
		}
	}
	return fmt.Errorf("upsert of %d points failed after %d attempts: %w",
		len(points), s.retries+1, lastErr)
}

func toWirePoints(points []port.Point) []map[string]any {
	wire := make([]map[string]any, len(points))
	for i, p := range points {
		wire[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	return wire
}

// Search returns up to limit nearest points, best first, filtered
// store-side on content_length >= minContentLength.
func (s *Store) Search(ctx context.Context, vector []float32, limit, minContentLength int) ([]domain.ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if minContentLength > 0 {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{
					"key":   "content_length",
					"range": map[string]any{"gte": minContentLength},
				},
			},
		}
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload domain.Payload `json:"payload"`
		} `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("search returned status %d", status)
	}

	results := make([]domain.ScoredDocument, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.ScoredDocument{
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return results, nil
}

// ExistingIDs reports which of the given point ids are present in the
// collection.
func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	req := map[string]any{
		"ids":          ids,
		"with_payload": false,
		"with_vector":  false,
	}
	var resp struct {
		Result []struct {
			ID any `json:"id"`
		} `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost, s.collectionURL()+"/points", req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("point lookup returned status %d", status)
	}

	found := make(map[string]bool, len(resp.Result))
	for _, r := range resp.Result {
		if id, ok := r.ID.(string); ok {
			found[id] = true
		}
	}
	return found, nil
}

// Count returns the number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var info collectionInfo
	status, err := s.doJSON(ctx, http.MethodGet, s.collectionURL(), nil, &info)
	if err != nil {
		return 0, err
	}
	if status >= 300 {
		return 0, fmt.Errorf("collection info returned status %d", status)
	}
	return info.Result.PointsCount, nil
}

// Drop deletes the collection. Must only happen in lockstep with
// truncating the dedup ledgers.
func (s *Store) Drop(ctx context.Context) error {
	status, err := s.doJSON(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	if err != nil {
		return err
	}
	if status >= 300 && status != http.StatusNotFound {
		return fmt.Errorf("failed to drop collection %q: status %d", s.collection, status)
	}
	return nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

// doJSON performs one request. Transport failures and server-side 5xx are
// reported as store unavailability so callers can tell an outage apart
// from an empty result. A 404 is returned as a plain status for callers
// that treat it as "missing".
func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("%w: %s %s returned %s",
			domain.ErrUnavailable, method, url, resp.Status)
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
