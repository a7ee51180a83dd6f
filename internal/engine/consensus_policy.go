package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelex/snipebot/internal/domain"
)

// EnterConsensus attempts a community-consensus swing entry for a mint
// promoted by the vote aggregator. On top of the shared spine it requires a
// real holder base with dispersed supply and screens the issuer against the
// recently-rugged dev set. Market buy, starts Filled, with a hard hold
// deadline after which the position is force-closed.
func (p *Policies) EnterConsensus(ctx context.Context, mint string) (domain.Position, error) {
	cfg := p.cfg.Consensus
	if err := p.preflight(mint); err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}

	holders, err := p.market.HolderStats(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: consensus %s holder stats: %w", mint, domain.ErrGateReject))
	}
	if holders.Holders < cfg.HolderThreshold {
		p.events.Append("consensus skip %s: %d holders", mint, holders.Holders)
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: consensus %s: %d holders: %w", mint, holders.Holders, domain.ErrGateReject))
	}
	if holders.MaxHolderPct > cfg.MaxConcentration {
		p.events.Append("consensus skip %s: concentration %.2f", mint, holders.MaxHolderPct)
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: consensus %s: concentration %.2f: %w", mint, holders.MaxHolderPct, domain.ErrGateReject))
	}

	dev, err := p.gate.Check(ctx, mint)
	if err != nil {
		return domain.Position{}, p.rejected(mint, err)
	}
	if dev != "" && p.blacklist.Banned(mint, dev) {
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: consensus %s dev %s: %w", mint, dev, domain.ErrBlacklisted))
	}
	if p.blacklist.RecentlyRugged(dev) {
		p.logger.Info("consensus skip, dev recently rugged",
			slog.String("mint", mint),
			slog.String("dev", dev),
		)
		p.events.Append("consensus skip %s: dev recently rugged", mint)
		return domain.Position{}, p.rejected(mint, fmt.Errorf("engine: consensus %s: rugged dev: %w", mint, domain.ErrGateReject))
	}

	now := p.now()
	entry := p.entryPrice(ctx, mint)
	pos := domain.Position{
		Mint:       mint,
		Strategy:   domain.StrategyConsensus,
		Source:     "consensus",
		OpenedAt:   now,
		Size:       cfg.BuyAmount,
		EntryPrice: entry,
		LastPrice:  entry,
		LocalHigh:  entry,
		HardStop:   entry * cfg.StopLossX,
		Phase:      domain.PhaseFilled,
		Dev:        dev,
		HoldUntil:  now.Add(cfg.HoldDuration.Duration),
		Score:      p.scorer.Score(mint),
		Exit: domain.ExitParams{
			TakeProfitX:    cfg.TakeProfitX,
			PartialSellPct: 50,
			TrailFraction:  cfg.Trail,
		},
	}
	return p.open(ctx, pos, nil)
}
