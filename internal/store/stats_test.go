package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelex/snipebot/internal/domain"
)

func TestStatsFromCloseEvents(t *testing.T) {
	s := NewStats()
	ctx := context.Background()

	s.RecordClose(ctx, domain.PositionClose{Strategy: domain.StrategyRapid, PL: 0.05})
	s.RecordClose(ctx, domain.PositionClose{Strategy: domain.StrategyRapid, PL: -0.02})
	s.RecordClose(ctx, domain.PositionClose{Strategy: domain.StrategyConsensus, PL: 0.0})

	tallies := s.Tallies()
	require.Len(t, tallies, 3)

	rapid := tallies[0]
	assert.Equal(t, domain.StrategyRapid, rapid.Strategy)
	assert.Equal(t, 1, rapid.Wins)
	assert.Equal(t, 1, rapid.Losses)
	assert.InDelta(t, 0.03, rapid.NetPL, 1e-9)

	momentum := tallies[1]
	assert.Equal(t, domain.StrategyMomentum, momentum.Strategy)
	assert.Zero(t, momentum.Wins+momentum.Losses)

	// Flat PL counts as a loss, not a win.
	consensus := tallies[2]
	assert.Equal(t, 0, consensus.Wins)
	assert.Equal(t, 1, consensus.Losses)
}

type captureSink struct{ got []domain.PositionClose }

func (c *captureSink) RecordClose(_ context.Context, pc domain.PositionClose) {
	c.got = append(c.got, pc)
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &captureSink{}, &captureSink{}
	sink := MultiSink{a, b}

	sink.RecordClose(context.Background(), domain.PositionClose{Mint: "MintA"})

	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Equal(t, "MintA", a.got[0].Mint)
}
