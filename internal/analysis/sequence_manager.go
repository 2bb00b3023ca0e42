package analysis

import (
	"sync/atomic"
)

// SequenceManager hands out render generations. Renders started on different
// goroutines compare their generation against the latest before touching the
// surface, so a slow stale render never overwrites a newer one.
type SequenceManager struct {
	current int64
}

// NewSequenceManager creates a sequence starting from 1
func NewSequenceManager() *SequenceManager {
	return &SequenceManager{}
}

// Next returns a new generation atomically
func (s *SequenceManager) Next() int64 {
	return atomic.AddInt64(&s.current, 1)
}

// GetCurrent returns the last issued generation without incrementing
func (s *SequenceManager) GetCurrent() int64 {
	return atomic.LoadInt64(&s.current)
}

// IsLatest reports whether gen is still the most recent generation
func (s *SequenceManager) IsLatest(gen int64) bool {
	return atomic.LoadInt64(&s.current) == gen
}
