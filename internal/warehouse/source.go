package warehouse

import (
	"fmt"
	"sync"
)

// StaticSource serves fixed counts. It stands in for the sensor and the
// manual tally when no hardware is attached.
type StaticSource struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewStaticSource(counts map[string]int) *StaticSource {
	s := &StaticSource{counts: make(map[string]int, len(counts))}
	for zone, q := range counts {
		s.counts[zone] = q
	}
	return s
}

func (s *StaticSource) Read(zone string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.counts[zone]
	if !ok {
		return 0, fmt.Errorf("no reading for zone %q", zone)
	}
	return q, nil
}

func (s *StaticSource) Set(zone string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[zone] = quantity
}

// DefaultSensorCounts and DefaultManualCounts are the demo readings the
// warehouse node starts with: both zones disagree.
func DefaultSensorCounts() map[string]int { return map[string]int{"A": 100, "B": 200} }

func DefaultManualCounts() map[string]int { return map[string]int{"A": 90, "B": 195} }
