package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelex/snipebot/internal/domain"
)

// EnterMomentum attempts a liquidity-momentum scalp on a trending-feed
// discovery. The pre-gate requires a young pool with real liquidity and a
// short-window volume spike; the buy is a limit order placed under the
// current quote and the position starts AwaitingFill because no fill
// confirmation ever arrives.
func (p *Policies) EnterMomentum(ctx context.Context, mint, source string) (domain.Position, error) {
	cfg := p.cfg.Momentum
	if err := p.preflight(mint); err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}

	age, err := p.market.PoolAge(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: momentum %s pool age: %w", mint, domain.ErrGateReject))
	}
	if age >= cfg.MaxPoolAge.Duration {
		p.events.Append("momentum skip %s: pool age %s", mint, age.Round(0))
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: momentum %s: pool too old: %w", mint, domain.ErrGateReject))
	}

	stats, err := p.market.VolumeLiquidity(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: momentum %s pool stats: %w", mint, domain.ErrGateReject))
	}
	if stats.Liquidity < cfg.MinLiquidity {
		p.events.Append("momentum skip %s: liquidity %.1f below floor", mint, stats.Liquidity)
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: momentum %s: thin liquidity: %w", mint, domain.ErrGateReject))
	}
	if !stats.VolumeSpike() {
		p.logger.Debug("momentum volume flat",
			slog.String("mint", mint),
			slog.Float64("vol_1h", stats.Volume1h),
			slog.Float64("vol_6h", stats.Volume6h),
		)
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: momentum %s: no volume spike: %w", mint, domain.ErrGateReject))
	}

	dev, err := p.gate.Check(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}
	if dev != "" && p.blacklist.Banned(mint, dev) {
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: momentum %s dev %s: %w", mint, dev, domain.ErrBlacklisted))
	}

	// The limit price is the recorded entry: until a fill channel exists,
	// assuming the limit filled is the least-wrong accounting.
	market := p.entryPrice(ctx, mint)
	limit := market * (1 - cfg.LimitDiscount)
	pos := domain.Position{
		Mint:         mint,
		Strategy:     domain.StrategyMomentum,
		Source:       source,
		OpenedAt:     p.now(),
		Size:         cfg.BuyAmount,
		EntryPrice:   limit,
		LastPrice:    limit,
		LocalHigh:    limit,
		HardStop:     limit * cfg.StopLossX,
		Phase:        domain.PhaseAwaitingFill,
		Dev:          dev,
		LiquidityRef: stats.Liquidity,
		Score:        p.scorer.Score(mint),
		Exit: domain.ExitParams{
			TakeProfitX:    cfg.TakeProfitX,
			PartialSellPct: 80,
			TrailFraction:  cfg.Trail,
		},
	}
	return p.open(ctx, pos, &limit)
}
