package obituary

import (
	"context"
	"sync"
	"time"

	"thelastshow.org/internal/ids"
)

var _ Store = (*InMemory)(nil)

// InMemory implements Store with in-process concurrency safety. Used by tests
// and local runs without Postgres.
type InMemory struct {
	mu      sync.RWMutex
	records []*Obituary
	byID    map[string]*Obituary
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]*Obituary)}
}

func (s *InMemory) Insert(ctx context.Context, o *Obituary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = ids.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	cp := *o
	s.records = append(s.records, &cp)
	s.byID[cp.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Obituary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, f Filter) ([]Obituary, error) {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []Obituary
	// Insertion order is creation order; walk backwards for newest first.
	for i := len(s.records) - 1; i >= 0; i-- {
		o := s.records[i]
		if f.OwnerID != "" {
			if o.UserID != f.OwnerID {
				continue
			}
		} else if !o.Public {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		res = append(res, *o)
		if len(res) >= limit {
			break
		}
	}
	return res, nil
}

func (s *InMemory) Count(ctx context.Context, f Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, o := range s.records {
		if f.OwnerID != "" {
			if o.UserID == f.OwnerID {
				n++
			}
		} else if o.Public {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) SetAudioURL(ctx context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.AudioURL = url
	return nil
}

func (s *InMemory) DeleteOwned(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok || o.UserID != ownerID {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	return nil
}
