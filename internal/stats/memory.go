package stats

import (
	"context"
	"sync"
)

// MemoryStore keeps counters in process. Nothing expires.
type MemoryStore struct {
	mu           sync.Mutex
	totals       map[Outcome]int64
	bySpotType   map[string]map[Outcome]int64
	revenueCents int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		totals:     make(map[Outcome]int64),
		bySpotType: make(map[string]map[Outcome]int64),
	}
}

func (s *MemoryStore) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals[ev.Outcome]++
	if ev.SpotType != "" {
		counters, ok := s.bySpotType[ev.SpotType]
		if !ok {
			counters = make(map[Outcome]int64)
			s.bySpotType[ev.SpotType] = counters
		}
		counters[ev.Outcome]++
	}
	s.revenueCents += toCents(ev.Amount)
	return nil
}

func (s *MemoryStore) Snapshot(_ context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := newSummary()
	for k, v := range s.totals {
		out.Totals[k] = v
	}
	for spotType, counters := range s.bySpotType {
		copied := make(map[Outcome]int64, len(counters))
		for k, v := range counters {
			copied[k] = v
		}
		out.BySpotType[spotType] = copied
	}
	out.Revenue = fromCents(s.revenueCents)
	return out, nil
}
