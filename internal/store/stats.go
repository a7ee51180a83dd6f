package store

import (
	"context"
	"sync"

	"github.com/avelex/snipebot/internal/domain"
)

// Stats accumulates per-strategy win/loss tallies from structured
// position-close events.
type Stats struct {
	mu      sync.Mutex
	tallies map[domain.StrategyKind]*domain.StrategyTally
}

// NewStats creates an empty aggregate set.
func NewStats() *Stats {
	return &Stats{tallies: make(map[domain.StrategyKind]*domain.StrategyTally)}
}

// RecordClose folds one close event into the strategy's tally.
func (s *Stats) RecordClose(_ context.Context, c domain.PositionClose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tallies[c.Strategy]
	if !ok {
		t = &domain.StrategyTally{Strategy: c.Strategy}
		s.tallies[c.Strategy] = t
	}
	if c.Win() {
		t.Wins++
	} else {
		t.Losses++
	}
	t.NetPL += c.PL
}

// Tallies returns copies of all per-strategy aggregates, in a stable order.
func (s *Stats) Tallies() []domain.StrategyTally {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := []domain.StrategyKind{domain.StrategyRapid, domain.StrategyMomentum, domain.StrategyConsensus}
	out := make([]domain.StrategyTally, 0, len(order))
	for _, k := range order {
		if t, ok := s.tallies[k]; ok {
			out = append(out, *t)
		} else {
			out = append(out, domain.StrategyTally{Strategy: k})
		}
	}
	return out
}

var _ domain.CloseSink = (*Stats)(nil)

// MultiSink fans one close event out to several sinks (stats, persistence,
// notifications).
type MultiSink []domain.CloseSink

// RecordClose delivers c to every sink.
func (m MultiSink) RecordClose(ctx context.Context, c domain.PositionClose) {
	for _, s := range m {
		s.RecordClose(ctx, c)
	}
}
