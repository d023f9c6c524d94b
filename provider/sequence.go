package provider

import "sync/atomic"

// Sequence assigns monotonically increasing ordinals to delivered messages.
// The zero value is ready to use; the first Next after creation or Reset
// returns 1. Next and Reset are safe to call concurrently: numbers are
// issued by an atomic fetch-and-increment, so concurrent callers never see
// a duplicate or a gap within one reset window.
type Sequence struct {
	n atomic.Int64
}

func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

func (s *Sequence) Reset() {
	s.n.Store(0)
}
