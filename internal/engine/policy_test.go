package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelex/snipebot/internal/domain"
)

func TestRapidEntryOpensFilledPosition(t *testing.T) {
	h := newHarness(t)
	h.market.liqSeq["MintA"] = []float64{10, 12, 15}
	h.market.prices["MintA"] = 0.001

	pos, err := h.policies.EnterRapid(context.Background(), "MintA")
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyRapid, pos.Strategy)
	assert.Equal(t, domain.PhaseFilled, pos.Phase)
	assert.InDelta(t, 0.07, pos.Size, 1e-12)
	assert.InDelta(t, 0.001, pos.EntryPrice, 1e-12)
	assert.InDelta(t, 0.0007, pos.HardStop, 1e-12, "hard stop is entry x stop_loss_x, fixed at entry")
	assert.Equal(t, "DevOne", pos.Dev)
	assert.Equal(t, []string{"MintA"}, h.gateway.buys)
	assert.True(t, h.book.Has("MintA"))
}

func TestRapidEntryUsesFallbackPriceWithoutQuote(t *testing.T) {
	h := newHarness(t)
	h.market.liqSeq["MintA"] = []float64{10, 12, 15}
	// no price set: brand-new mint, no indexed pair yet

	pos, err := h.policies.EnterRapid(context.Background(), "MintA")
	require.NoError(t, err)
	assert.InDelta(t, 0.01, pos.EntryPrice, 1e-12)
}

func TestRapidAcceptsRiseThenDip(t *testing.T) {
	h := newHarness(t)
	// First sample counts against the zero baseline, so a pool that climbs
	// once and settles back still shows two rises.
	h.market.liqSeq["MintA"] = []float64{10, 11, 9}
	h.market.prices["MintA"] = 0.001

	pos, err := h.policies.EnterRapid(context.Background(), "MintA")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFilled, pos.Phase)
	assert.Equal(t, []string{"MintA"}, h.gateway.buys)
}

func TestRapidRejectsDecliningLiquidity(t *testing.T) {
	h := newHarness(t)
	h.market.liqSeq["MintA"] = []float64{15, 12, 10}

	_, err := h.policies.EnterRapid(context.Background(), "MintA")
	require.ErrorIs(t, err, domain.ErrGateReject)
	assert.Empty(t, h.gateway.buys)
}

func TestRapidRejectsLiquidityBelowFloor(t *testing.T) {
	h := newHarness(t)
	h.market.liqSeq["MintA"] = []float64{2, 4, 6} // rising but under the floor of 8

	_, err := h.policies.EnterRapid(context.Background(), "MintA")
	assert.ErrorIs(t, err, domain.ErrGateReject)
}

func TestRapidRejectsBlacklistedMint(t *testing.T) {
	h := newHarness(t)
	h.blacklist.AddMint("MintA")
	h.market.liqSeq["MintA"] = []float64{10, 12, 15}

	_, err := h.policies.EnterRapid(context.Background(), "MintA")
	require.ErrorIs(t, err, domain.ErrBlacklisted)
	assert.Empty(t, h.gateway.buys)
}

func TestSecondEntryForOpenMintRejected(t *testing.T) {
	h := newHarness(t)
	h.market.liqSeq["MintA"] = []float64{10, 12, 15}
	h.market.prices["MintA"] = 0.001

	_, err := h.policies.EnterRapid(context.Background(), "MintA")
	require.NoError(t, err)

	_, err = h.policies.EnterRapid(context.Background(), "MintA")
	require.ErrorIs(t, err, domain.ErrPositionOpen)
	assert.Len(t, h.gateway.buys, 1, "rejected entry must not order")
}

func TestMomentumEntryPlacesDiscountedLimit(t *testing.T) {
	h := newHarness(t)
	h.market.prices["MintB"] = 1.0
	h.market.poolAge["MintB"] = 5 * time.Minute
	h.market.stats["MintB"] = domain.PoolStats{Liquidity: 50, Volume1h: 100, Volume6h: 240}

	pos, err := h.policies.EnterMomentum(context.Background(), "MintB", domain.SourceMoralis)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyMomentum, pos.Strategy)
	assert.Equal(t, domain.PhaseAwaitingFill, pos.Phase, "limit buys start unconfirmed")
	assert.InDelta(t, 0.97, pos.EntryPrice, 1e-12, "entry recorded at the limit, 3% under market")
	assert.InDelta(t, 0.97*0.7, pos.HardStop, 1e-12)
	assert.InDelta(t, 50, pos.LiquidityRef, 1e-12)
	assert.InDelta(t, 0.10, pos.Size, 1e-12)
}

func TestMomentumRejectsOldPool(t *testing.T) {
	h := newHarness(t)
	h.market.prices["MintB"] = 1.0
	h.market.poolAge["MintB"] = 25 * time.Minute
	h.market.stats["MintB"] = domain.PoolStats{Liquidity: 50, Volume1h: 100, Volume6h: 240}

	_, err := h.policies.EnterMomentum(context.Background(), "MintB", domain.SourceMoralis)
	assert.ErrorIs(t, err, domain.ErrGateReject)
}

func TestMomentumRejectsFlatVolume(t *testing.T) {
	h := newHarness(t)
	h.market.prices["MintB"] = 1.0
	h.market.poolAge["MintB"] = 5 * time.Minute
	// 1h volume exactly at the extrapolated average: no spike
	h.market.stats["MintB"] = domain.PoolStats{Liquidity: 50, Volume1h: 10, Volume6h: 240}

	_, err := h.policies.EnterMomentum(context.Background(), "MintB", domain.SourceMoralis)
	assert.ErrorIs(t, err, domain.ErrGateReject)
}

func TestConsensusEntrySetsHoldDeadline(t *testing.T) {
	h := newHarness(t)
	h.market.prices["MintC"] = 0.5
	h.market.holders["MintC"] = domain.HolderStats{Holders: 400, MaxHolderPct: 0.05}

	before := time.Now()
	pos, err := h.policies.EnterConsensus(context.Background(), "MintC")
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyConsensus, pos.Strategy)
	assert.Equal(t, domain.PhaseFilled, pos.Phase)
	assert.InDelta(t, 0.04, pos.Size, 1e-12)
	assert.InDelta(t, 0.3, pos.HardStop, 1e-12)
	wantDeadline := before.Add(48 * time.Hour)
	assert.WithinDuration(t, wantDeadline, pos.HoldUntil, time.Minute)
}

func TestConsensusRejectsThinHolderBase(t *testing.T) {
	h := newHarness(t)
	h.market.holders["MintC"] = domain.HolderStats{Holders: 100, MaxHolderPct: 0.05}

	_, err := h.policies.EnterConsensus(context.Background(), "MintC")
	assert.ErrorIs(t, err, domain.ErrGateReject)
}

func TestConsensusRejectsConcentratedSupply(t *testing.T) {
	h := newHarness(t)
	h.market.holders["MintC"] = domain.HolderStats{Holders: 400, MaxHolderPct: 0.25}

	_, err := h.policies.EnterConsensus(context.Background(), "MintC")
	assert.ErrorIs(t, err, domain.ErrGateReject)
}

func TestConsensusRejectsBannedDev(t *testing.T) {
	h := newHarness(t)
	h.market.prices["MintC"] = 0.5
	h.market.holders["MintC"] = domain.HolderStats{Holders: 400, MaxHolderPct: 0.05}
	h.blacklist.AddDev("DevOne") // gate reports DevOne as authority

	_, err := h.policies.EnterConsensus(context.Background(), "MintC")
	require.Error(t, err)
	assert.Empty(t, h.gateway.buys)
}
