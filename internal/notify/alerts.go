package notify

import (
	"context"
	"fmt"

	"github.com/avelex/snipebot/internal/domain"
)

// TradeAlerts formats position lifecycle events into operator alerts. It
// implements domain.CloseSink so exits can be fanned out alongside the stats
// and persistence sinks.
type TradeAlerts struct {
	n *Notifier
}

// NewTradeAlerts wraps a notifier with the trade-event vocabulary.
func NewTradeAlerts(n *Notifier) *TradeAlerts {
	return &TradeAlerts{n: n}
}

// Entry announces a newly opened position.
func (a *TradeAlerts) Entry(ctx context.Context, pos domain.Position) {
	title := fmt.Sprintf("Entry: %s", pos.Strategy)
	msg := fmt.Sprintf("mint %s\nsize %g @ %.8f\nstop %.8f",
		pos.Mint, pos.Size, pos.EntryPrice, pos.HardStop)
	a.n.Notify(ctx, EventEntry, title, msg)
}

// RecordClose announces a closed position.
func (a *TradeAlerts) RecordClose(ctx context.Context, c domain.PositionClose) {
	outcome := "LOSS"
	if c.Win() {
		outcome = "WIN"
	}
	title := fmt.Sprintf("Exit: %s (%s)", c.Strategy, outcome)
	msg := fmt.Sprintf("mint %s\nreason %s\npl %+.6f (%.8f -> %.8f)",
		c.Mint, c.Reason, c.PL, c.Entry, c.Exit)
	a.n.Notify(ctx, EventExit, title, msg)
}

// Blacklist announces a mint/dev ban.
func (a *TradeAlerts) Blacklist(ctx context.Context, mint, dev, reason string) {
	msg := fmt.Sprintf("mint %s\ndev %s\nreason %s", mint, dev, reason)
	a.n.Notify(ctx, EventBlacklist, "Blacklisted", msg)
}

var _ domain.CloseSink = (*TradeAlerts)(nil)
