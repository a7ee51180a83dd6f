package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelex/snipebot/internal/domain"
)

// EnterRapid attempts an ultra-early sniper entry for a freshly launched
// mint. The pre-gate probes liquidity three times with a short delay and
// requires a rising trend before committing capital; the buy itself is a
// market order and the position starts Filled.
func (p *Policies) EnterRapid(ctx context.Context, mint string) (domain.Position, error) {
	cfg := p.cfg.Rapid
	if err := p.preflight(mint); err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}

	rising, err := p.risingLiquidity(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}
	if !rising {
		p.events.Append("rapid skip %s: liquidity not rising", mint)
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: rapid %s: liquidity trend: %w", mint, domain.ErrGateReject))
	}

	dev, err := p.gate.Check(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}
	if dev != "" && p.blacklist.Banned(mint, dev) {
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: rapid %s dev %s: %w", mint, dev, domain.ErrBlacklisted))
	}

	entry := p.entryPrice(ctx, mint)
	pos := domain.Position{
		Mint:       mint,
		Strategy:   domain.StrategyRapid,
		Source:     domain.SourcePumpFun,
		OpenedAt:   p.now(),
		Size:       cfg.BuyAmount,
		EntryPrice: entry,
		LastPrice:  entry,
		LocalHigh:  entry,
		HardStop:   entry * cfg.StopLossX,
		Phase:      domain.PhaseFilled,
		Dev:        dev,
		Score:      p.scorer.Score(mint),
		Exit: domain.ExitParams{
			TakeProfitX:    cfg.TakeProfitX,
			PartialSellPct: 85,
			TrailFraction:  cfg.Trail,
		},
	}
	return p.open(ctx, pos, nil)
}

// risingLiquidity samples pool liquidity sampleCount times, sampleDelay
// apart, and accepts when at least MinRises samples strictly exceed the
// previous reading while every sample clears the liquidity floor. The
// baseline starts at zero, so the first above-floor sample always counts as
// a rise and a rise-then-dip run still qualifies. A single no-data sample
// fails the probe; a token that young with no pool yet simply isn't ready.
func (p *Policies) risingLiquidity(ctx context.Context, mint string) (bool, error) {
	const sampleCount = 3
	cfg := p.cfg.Rapid

	var prev float64
	rises := 0
	for i := 0; i < sampleCount; i++ {
		if i > 0 {
			if err := p.sleep(ctx, cfg.SampleDelay.Duration); err != nil {
				return false, err
			}
		}
		sample, err := p.market.LiquiditySample(ctx, mint)
		if err != nil {
			return false, fmt.Errorf("engine: rapid %s liquidity probe: %w", mint, domain.ErrGateReject)
		}
		if sample.Liquidity < cfg.MinLiquidity {
			p.logger.Debug("rapid probe below floor",
				slog.String("mint", mint),
				slog.Float64("liquidity", sample.Liquidity),
				slog.Float64("floor", cfg.MinLiquidity),
			)
			return false, nil
		}
		if sample.Liquidity > prev {
			rises++
		}
		prev = sample.Liquidity
	}
	return rises >= cfg.MinRises, nil
}
