package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"lawrag/internal/domain"
	"lawrag/internal/port"
)

// fakeStore is an in-memory stand-in for the vector store. Points are
// keyed by id like the real collection, search is brute-force cosine and
// equal scores keep insertion order.
type fakeStore struct {
	mu     sync.Mutex
	points map[string]port.Point
	order  []string

	dimension   int
	upsertCalls int
	failUpserts int // fail this many upsert calls before behaving again
	failOnCall  int // fail exactly this upsert call (1-based), 0 disables
}

func newFakeStore() *fakeStore {
	return &fakeStore{points: make(map[string]port.Point)}
}

func (s *fakeStore) EnsureCollection(_ context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

func (s *fakeStore) Upsert(_ context.Context, points []port.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertCalls++
	if s.failUpserts > 0 {
		s.failUpserts--
		return errors.New("store rejected the batch")
	}
	if s.failOnCall != 0 && s.upsertCalls == s.failOnCall {
		return errors.New("store rejected the batch")
	}

	for _, p := range points {
		if _, exists := s.points[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.points[p.ID] = p
	}
	return nil
}

func (s *fakeStore) Search(_ context.Context, vector []float32, limit, minContentLength int) ([]domain.ScoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []domain.ScoredDocument
	for _, id := range s.order {
		p := s.points[id]
		if p.Payload.ContentLength < minContentLength {
			continue
		}
		var score float64
		for i := range vector {
			if i < len(p.Vector) {
				score += float64(vector[i]) * float64(p.Vector[i])
			}
		}
		results = append(results, domain.ScoredDocument{Score: score, Payload: p.Payload})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *fakeStore) ExistingIDs(_ context.Context, ids []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.points[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

func (s *fakeStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points), nil
}

func (s *fakeStore) Drop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make(map[string]port.Point)
	s.order = nil
	return nil
}

func (s *fakeStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.points, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *fakeStore) sortedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.points))
	for id := range s.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
