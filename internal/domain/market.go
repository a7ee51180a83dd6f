package domain

// PoolStats is a volume/liquidity snapshot for a token's pool.
type PoolStats struct {
	Liquidity float64 // tradable base liquidity
	Volume1h  float64
	Volume6h  float64
}

// VolumeSpike reports whether short-window volume is at least double the
// extrapolated long-window average (a 15-minute proxy: avg = vol6h / 24).
// A pool with no long-window history spikes on any positive short-window
// volume.
func (s PoolStats) VolumeSpike() bool {
	avg := s.Volume6h / 24
	return s.Volume1h > 2*avg
}

// HolderStats describes holder distribution for a token.
type HolderStats struct {
	Holders      int
	MaxHolderPct float64 // largest single holder's share, 0..1
}

// LiquiditySample is one point of the Rapid pre-gate's rising-liquidity
// probe.
type LiquiditySample struct {
	Liquidity float64
	Buys      int
}

// RiskReport is the risk-service response for a token. SupplyType values
// containing "bundled" indicate colluding supply and trigger permanent
// blacklisting of the mint and its authority.
type RiskReport struct {
	Label        string
	SupplyType   string
	MaxHolderPct float64 // percent, 0..100
	Mint         string
	Authority    string
}
