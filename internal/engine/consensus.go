package engine

import (
	"log/slog"
	"sync"
)

// Aggregator collects discovery votes per mint across feed sources and
// promotes a mint to the consensus queue once enough distinct sources have
// mentioned it. Vote sets are never cleared for the process lifetime; the
// book's duplicate-open rejection handles re-promotion for mints that are
// already held.
type Aggregator struct {
	mu        sync.Mutex
	votes     map[string]map[string]struct{}
	threshold int

	promote func(mint string)
	logger  *slog.Logger
}

// NewAggregator creates a vote aggregator. promote is invoked (on the
// caller's goroutine, outside the lock) each time a mint's distinct-source
// count crosses threshold.
func NewAggregator(threshold int, promote func(mint string), logger *slog.Logger) *Aggregator {
	if threshold < 1 {
		threshold = 1
	}
	return &Aggregator{
		votes:     make(map[string]map[string]struct{}),
		threshold: threshold,
		promote:   promote,
		logger:    logger.With(slog.String("component", "consensus")),
	}
}

// RecordVote registers that source mentioned mint. Re-votes from a source
// already counted are no-ops. Promotion fires only on votes that grow the
// set to or past the threshold, so a repeated signal never promotes twice;
// a genuinely new source after promotion re-enqueues and the book's
// duplicate check settles it downstream.
func (a *Aggregator) RecordVote(mint, source string) {
	if mint == "" || source == "" {
		return
	}

	a.mu.Lock()
	set, ok := a.votes[mint]
	if !ok {
		set = make(map[string]struct{})
		a.votes[mint] = set
	}
	before := len(set)
	set[source] = struct{}{}
	after := len(set)
	a.mu.Unlock()

	if after == before {
		return
	}
	a.logger.Debug("consensus vote",
		slog.String("mint", mint),
		slog.String("source", source),
		slog.Int("sources", after),
	)
	if after >= a.threshold {
		a.logger.Info("consensus reached", slog.String("mint", mint), slog.Int("sources", after))
		a.promote(mint)
	}
}

// Sources returns the distinct-source count for mint.
func (a *Aggregator) Sources(mint string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.votes[mint])
}
