// Package server exposes the read-only reporting surface: a health check, a
// JSON status endpoint, and a WebSocket hub streaming the same snapshot at a
// fixed cadence. Nothing here can place or cancel an order.
package server

import (
	"time"

	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/store"
)

// Snapshotter assembles the status view from the live stores.
type Snapshotter struct {
	book   *store.Book
	events *store.EventLog
	stats  *store.Stats
}

// NewSnapshotter wires the snapshot source.
func NewSnapshotter(book *store.Book, events *store.EventLog, stats *store.Stats) *Snapshotter {
	return &Snapshotter{book: book, events: events, stats: stats}
}

// Snapshot builds one consistent-enough status view. Each store is read
// atomically; cross-store skew within one snapshot is acceptable for a
// display surface.
func (s *Snapshotter) Snapshot() domain.StatusSnapshot {
	return domain.StatusSnapshot{
		Status:        "running",
		WalletBalance: s.book.WalletBalance(),
		Exposure:      s.book.Exposure(),
		DailyLoss:     s.book.DailyLoss(),
		OpenPositions: s.book.List(),
		RecentEvents:  s.events.Recent(20),
		Strategies:    s.stats.Tallies(),
		GeneratedAt:   time.Now().UTC(),
	}
}
