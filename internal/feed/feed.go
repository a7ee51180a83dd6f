// Package feed implements the token discovery feeds: the pump.fun launch
// WebSocket and the Moralis/Bitquery trending pollers. Feeds are producers
// only; they push (mint, source) signals into a shared bounded queue and
// never block on a slow consumer.
package feed

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelex/snipebot/internal/domain"
)

// emitter pushes discovery signals into the candidate queue, dropping the
// newest signal with a warning when the queue is full. Discovery is lossy by
// nature; a dropped candidate is a missed trade, not an error.
type emitter struct {
	out    chan<- domain.TokenSignal
	logger *slog.Logger
}

func (e emitter) emit(mint, source string) {
	sig := domain.TokenSignal{
		ID:     uuid.NewString(),
		Mint:   mint,
		Source: source,
		SeenAt: time.Now(),
	}
	select {
	case e.out <- sig:
	default:
		e.logger.Warn("candidate queue full, dropping signal",
			slog.String("mint", mint),
			slog.String("source", source),
		)
	}
}
