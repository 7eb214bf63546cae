package store

import (
	"context"
	"sort"
	"sync"

	"github.com/AngelCh415/collabhub/internal/models"
)

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]models.Participation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]models.Participation)}
}

// Upsert replaces the row with the same id unless the stored copy is newer.
func (s *MemoryStore) Upsert(_ context.Context, p models.Participation) error {
	if err := validate(p); err != nil {
		return err
	}
	p.Metrics = append([]byte(nil), p.Metrics...)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rows[p.ID]; ok && cur.UpdatedAt.After(p.UpdatedAt) {
		return nil
	}
	s.rows[p.ID] = p
	return nil
}

func (s *MemoryStore) Query(_ context.Context, f models.Filter) ([]models.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Participation, 0, len(s.rows))
	for _, p := range s.rows {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
