package domain

import "time"

// StrategyKind identifies one of the three trading personalities.
type StrategyKind string

const (
	StrategyRapid     StrategyKind = "rapid"
	StrategyMomentum  StrategyKind = "momentum"
	StrategyConsensus StrategyKind = "consensus"
)

// Phase is the position lifecycle state. Rapid and Consensus positions start
// at Filled; Momentum positions start at AwaitingFill because the buy is a
// limit order and no fill-confirmation channel exists.
type Phase string

const (
	PhaseAwaitingFill Phase = "awaiting_fill"
	PhaseFilled       Phase = "filled"
	PhaseRunner       Phase = "runner"
	PhaseExited       Phase = "exited"
)

// Exit reasons recorded on position close.
const (
	ExitReasonHardStop          = "hard_stop"
	ExitReasonTrailingStop      = "trailing_stop"
	ExitReasonLiquidityCollapse = "liquidity_collapse"
	ExitReasonHoldExpired       = "hold_expired"
)

// ExitParams are the strategy-specific exit parameters fixed at entry.
type ExitParams struct {
	TakeProfitX    float64 // price multiple of entry that triggers the partial take-profit
	PartialSellPct int     // percent of remaining size sold at take-profit
	TrailFraction  float64 // drawdown from LocalHigh that exits a runner
}

// Position is one open trade, keyed by mint. Size is monotonically
// non-increasing after creation; Size == 0 is equivalent to Phase == Exited
// and such positions are swept from the book within one evaluation cycle.
// HardStop is set once at entry and never recalculated.
type Position struct {
	Mint     string
	Strategy StrategyKind
	Source   string
	OpenedAt time.Time

	Size       float64
	EntryPrice float64
	LastPrice  float64
	LocalHigh  float64 // high-water mark since entry, updates only upward
	HardStop   float64
	Phase      Phase
	PL         float64 // (LastPrice - EntryPrice) * Size, recomputed each tick

	Exit         ExitParams
	Dev          string    // issuer/authority, blacklisted on stop-loss exits
	HoldUntil    time.Time // Consensus only: forced exit deadline
	LiquidityRef float64   // Momentum only: liquidity snapshot at entry
	Score        float64

	ExitReason string // set when the position reaches PhaseExited
}

// Open reports whether the position still holds size.
func (p *Position) Open() bool {
	return p.Size > 0 && p.Phase != PhaseExited
}

// PositionClose is the structured close event emitted when a terminal
// position is swept from the book. Win/loss aggregates are computed from
// these events, never parsed back out of log lines.
type PositionClose struct {
	Mint     string
	Strategy StrategyKind
	Source   string
	Reason   string
	Dev      string
	PL       float64
	Entry    float64
	Exit     float64
	OpenedAt time.Time
	ClosedAt time.Time
}

// Win reports whether the closed position realized a profit.
func (c PositionClose) Win() bool {
	return c.PL > 0
}
