package domain

import "time"

// Discovery feed source names. The router dispatches Rapid entries for
// pump.fun discoveries and Momentum entries for trending-feed discoveries;
// every source additionally counts as a consensus vote.
const (
	SourcePumpFun  = "pumpfun"
	SourceMoralis  = "moralis"
	SourceBitquery = "bitquery"
)

// TokenSignal is one discovered candidate pushed by a feed into the shared
// candidate queue. Delivery is at-most-once and duplicates are expected;
// downstream checks (vote sets, position book) dedup.
type TokenSignal struct {
	ID     string // UUID, for log correlation only
	Mint   string
	Source string
	SeenAt time.Time
}

// StatusSnapshot is the read-only reporting view pushed to subscribers at a
// fixed cadence.
type StatusSnapshot struct {
	Status        string             `json:"status"`
	WalletBalance float64            `json:"wallet_balance"`
	Exposure      float64            `json:"exposure"`
	DailyLoss     float64            `json:"daily_loss"`
	OpenPositions []Position         `json:"open_positions"`
	RecentEvents  []string           `json:"recent_events"`
	Strategies    []StrategyTally    `json:"strategies"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// StrategyTally is the per-strategy win/loss aggregate, computed from
// structured PositionClose events.
type StrategyTally struct {
	Strategy StrategyKind `json:"strategy"`
	Wins     int          `json:"wins"`
	Losses   int          `json:"losses"`
	NetPL    float64      `json:"net_pl"`
}
