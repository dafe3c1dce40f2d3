package service

import "time"

// SetClock replaces the time source used to stamp completedAt.
func (s *TodoService) SetClock(now func() time.Time) {
	s.now = now
}

// EvictIdle runs one sweep pass as if the clock read now.
func (tb *TokenBucket) EvictIdle(now time.Time) {
	tb.evictIdle(now)
}
