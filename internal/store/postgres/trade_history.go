package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelex/snipebot/internal/domain"
)

// TradeHistory records closed positions. It implements domain.CloseSink so
// it rides the same fan-out as the in-memory stats; insert failures are
// logged, never surfaced to the evaluator.
type TradeHistory struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTradeHistory creates the history sink on the given pool.
func NewTradeHistory(c *Client, logger *slog.Logger) *TradeHistory {
	return &TradeHistory{
		pool:   c.Pool(),
		logger: logger.With(slog.String("component", "trade_history")),
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS closed_trades (
	id          BIGSERIAL PRIMARY KEY,
	mint        TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	source      TEXT NOT NULL,
	reason      TEXT NOT NULL,
	dev         TEXT NOT NULL DEFAULT '',
	pl          DOUBLE PRECISION NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price  DOUBLE PRECISION NOT NULL,
	opened_at   TIMESTAMPTZ NOT NULL,
	closed_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS closed_trades_strategy_idx ON closed_trades (strategy, closed_at);
`

// EnsureSchema creates the closed_trades table when missing.
func (h *TradeHistory) EnsureSchema(ctx context.Context) error {
	if _, err := h.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// RecordClose inserts one close event.
func (h *TradeHistory) RecordClose(ctx context.Context, c domain.PositionClose) {
	const query = `
		INSERT INTO closed_trades (
			mint, strategy, source, reason, dev,
			pl, entry_price, exit_price, opened_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	// A short independent timeout: the evaluator must not inherit a slow
	// database into its sweep cadence.
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := h.pool.Exec(ctx, query,
		c.Mint, string(c.Strategy), c.Source, c.Reason, c.Dev,
		c.PL, c.Entry, c.Exit, c.OpenedAt, c.ClosedAt,
	)
	if err != nil {
		h.logger.Warn("trade history insert failed",
			slog.String("mint", c.Mint),
			slog.String("error", err.Error()),
		)
	}
}

var _ domain.CloseSink = (*TradeHistory)(nil)
