// Package store holds the in-memory authoritative state of the bot: the
// position book, the blacklist sets, the rolling event log, and the
// per-strategy close aggregates. Stores are injected by handle into the
// router and evaluator; there is no ambient package-level state.
package store

import (
	"sync"
	"time"

	"github.com/avelex/snipebot/internal/domain"
)

// Book is the authoritative mint → open position mapping. The router is the
// only creator and the exit evaluator the only mutator of priced fields; the
// mutex makes their interleaving safe without further coordination.
type Book struct {
	mu        sync.Mutex
	positions map[string]*domain.Position

	dailyLoss float64
	balance   float64
}

// NewBook creates an empty position book.
func NewBook() *Book {
	return &Book{positions: make(map[string]*domain.Position)}
}

// Open inserts a new position. It returns domain.ErrPositionOpen when the
// mint already has one: a second signal for an open mint is rejected, never
// averaged in.
func (b *Book) Open(pos domain.Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.positions[pos.Mint]; ok {
		return domain.ErrPositionOpen
	}
	p := pos
	b.positions[pos.Mint] = &p
	return nil
}

// Has reports whether the mint currently has an open position.
func (b *Book) Has(mint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.positions[mint]
	return ok
}

// Get returns a copy of the position for mint.
func (b *Book) Get(mint string) (domain.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[mint]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// Mints returns the mints of all tracked positions.
func (b *Book) Mints() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.positions))
	for m := range b.positions {
		out = append(out, m)
	}
	return out
}

// List returns copies of all tracked positions.
func (b *Book) List() []domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	return out
}

// Mutate applies fn to the position for mint under the book lock. Size is
// clamped to never grow and never underflow, and LocalHigh to never fall, so
// single mutation bugs cannot violate the book invariants. Returns false when
// the mint is not tracked.
func (b *Book) Mutate(mint string, fn func(*domain.Position)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[mint]
	if !ok {
		return false
	}
	prevSize := p.Size
	prevHigh := p.LocalHigh
	fn(p)
	if p.Size > prevSize {
		p.Size = prevSize
	}
	if p.Size < 0 {
		p.Size = 0
	}
	if p.LocalHigh < prevHigh {
		p.LocalHigh = prevHigh
	}
	if p.Size == 0 {
		p.Phase = domain.PhaseExited
	}
	return true
}

// SweepClosed removes every terminal (zero-size) position, folds its final PL
// into the daily-loss accumulator, and returns the structured close events.
func (b *Book) SweepClosed(now time.Time) []domain.PositionClose {
	b.mu.Lock()
	defer b.mu.Unlock()
	var closes []domain.PositionClose
	for mint, p := range b.positions {
		if p.Size != 0 && p.Phase != domain.PhaseExited {
			continue
		}
		b.dailyLoss += p.PL
		closes = append(closes, domain.PositionClose{
			Mint:     p.Mint,
			Strategy: p.Strategy,
			Source:   p.Source,
			Reason:   p.ExitReason,
			Dev:      p.Dev,
			PL:       p.PL,
			Entry:    p.EntryPrice,
			Exit:     p.LastPrice,
			OpenedAt: p.OpenedAt,
			ClosedAt: now,
		})
		delete(b.positions, mint)
	}
	return closes
}

// Exposure is the summed remaining size across open positions, in base
// currency.
func (b *Book) Exposure() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total float64
	for _, p := range b.positions {
		total += p.Size
	}
	return total
}

// DailyLoss returns the cumulative realized PL of swept positions.
func (b *Book) DailyLoss() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dailyLoss
}

// SetWalletBalance caches the latest balance-oracle reading. A failed refresh
// leaves the previous value in place by simply not calling this.
func (b *Book) SetWalletBalance(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance = v
}

// WalletBalance returns the cached wallet balance.
func (b *Book) WalletBalance() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance
}
