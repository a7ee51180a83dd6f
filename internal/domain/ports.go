package domain

import (
	"context"
	"time"
)

// MarketData is the price-oracle surface the pipeline needs. Any market-data
// provider satisfying this shape is acceptable. Implementations carry bounded
// timeouts and return ErrNoData-wrapped errors on any transient failure; they
// never stall the caller indefinitely.
type MarketData interface {
	Price(ctx context.Context, mint string) (float64, error)
	PoolAge(ctx context.Context, mint string) (time.Duration, error)
	VolumeLiquidity(ctx context.Context, mint string) (PoolStats, error)
	HolderStats(ctx context.Context, mint string) (HolderStats, error)
	LiquiditySample(ctx context.Context, mint string) (LiquiditySample, error)
}

// RiskChecker screens a token for scam/malicious characteristics before
// entry. A fetch error means the gate fails closed.
type RiskChecker interface {
	Check(ctx context.Context, mint string) (RiskReport, error)
}

// ExecutionGateway sends buy/sell commands to the external execution bot.
// A nil return means the command was accepted by the transport, NOT that a
// fill occurred; there is no fill-confirmation channel and callers must keep
// "ordered" and "filled" distinct.
type ExecutionGateway interface {
	Buy(ctx context.Context, mint string, amount float64, limit *float64) error
	Sell(ctx context.Context, mint string, percent int) error
}

// BalanceOracle reports the wallet balance in base currency.
type BalanceOracle interface {
	Balance(ctx context.Context, wallet string) (float64, error)
}

// Scorer produces a deterministic, bounded quality score per mint. It stands
// in for a real scoring model; only the contract (deterministic per token,
// fixed range) is relied upon.
type Scorer interface {
	Score(mint string) float64
}

// CloseSink consumes structured position-close events.
type CloseSink interface {
	RecordClose(ctx context.Context, c PositionClose)
}
