package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/avelex/snipebot/internal/config"
	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/store"
)

// exitAction is the evaluator's decision for one position on one tick.
type exitAction int

const (
	actNone exitAction = iota
	actFullExit
	actPartialTP
)

// exitDecision carries what to do and how to book it.
type exitDecision struct {
	action       exitAction
	reason       string // exit reason recorded on full exits
	blacklistDev bool
}

// Evaluator is the periodic exit sweep. Per tick it refreshes each open
// position's price, applies the strategy's rule table in fixed priority
// order (first match only), executes the resulting sell, sweeps terminal
// positions out of the book, and refreshes the wallet balance. It is the
// only mutator of priced position fields.
type Evaluator struct {
	cfg       config.Config
	market    domain.MarketData
	gateway   domain.ExecutionGateway
	balances  domain.BalanceOracle
	book      *store.Book
	blacklist *store.Blacklist
	events    *store.EventLog
	closes    domain.CloseSink
	logger    *slog.Logger

	now func() time.Time
}

// NewEvaluator wires the exit sweep. balances may be nil when no wallet is
// configured; closes may be a MultiSink fanning out to stats, persistence
// and notifications.
func NewEvaluator(
	cfg config.Config,
	market domain.MarketData,
	gateway domain.ExecutionGateway,
	balances domain.BalanceOracle,
	book *store.Book,
	blacklist *store.Blacklist,
	events *store.EventLog,
	closes domain.CloseSink,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		cfg:       cfg,
		market:    market,
		gateway:   gateway,
		balances:  balances,
		book:      book,
		blacklist: blacklist,
		events:    events,
		closes:    closes,
		logger:    logger.With(slog.String("component", "evaluator")),
		now:       time.Now,
	}
}

// Run sweeps every Interval until ctx is cancelled.
func (e *Evaluator) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Evaluator.Interval.Duration)
	defer ticker.Stop()
	e.logger.Info("evaluator started", slog.Duration("interval", e.cfg.Evaluator.Interval.Duration))
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("evaluator stopped")
			return ctx.Err()
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Sweep runs one full evaluation pass. A failure on any single position
// never aborts the pass.
func (e *Evaluator) Sweep(ctx context.Context) {
	for _, mint := range e.book.Mints() {
		e.evaluateOne(ctx, mint)
	}

	now := e.now()
	for _, c := range e.book.SweepClosed(now) {
		e.events.Append("%s exit %s: %s, pl %+.4f", c.Strategy, c.Mint, c.Reason, c.PL)
		e.logger.Info("position closed",
			slog.String("strategy", string(c.Strategy)),
			slog.String("mint", c.Mint),
			slog.String("reason", c.Reason),
			slog.Float64("pl", c.PL),
		)
		if e.closes != nil {
			e.closes.RecordClose(ctx, c)
		}
	}

	e.refreshBalance(ctx)
}

// evaluateOne refreshes one position and applies its strategy's rule table.
func (e *Evaluator) evaluateOne(ctx context.Context, mint string) {
	pos, ok := e.book.Get(mint)
	if !ok || !pos.Open() {
		return
	}

	price, err := e.market.Price(ctx, mint)
	priceOK := err == nil && price > 0
	if !priceOK {
		// Price rules are skipped this tick; side-channel rules (liquidity
		// collapse, hold deadline) still run on the stale view.
		e.logger.Debug("no price this tick", slog.String("mint", mint))
	}

	var liquidity float64
	liqOK := false
	if pos.Strategy == domain.StrategyMomentum && pos.LiquidityRef > 0 {
		if stats, lerr := e.market.VolumeLiquidity(ctx, mint); lerr == nil {
			liquidity, liqOK = stats.Liquidity, true
		}
	}

	if priceOK {
		e.book.Mutate(mint, func(p *domain.Position) {
			p.LastPrice = price
			if price > p.LocalHigh {
				p.LocalHigh = price
			}
			p.PL = (p.LastPrice - p.EntryPrice) * p.Size
		})
		pos, _ = e.book.Get(mint)
	}

	dec := decide(pos, priceOK, liquidity, liqOK, e.cfg.Momentum.LiquidityCollapse, e.now())
	e.apply(ctx, pos, dec)
}

// decide applies the strategy's priority-ordered rule table to a refreshed
// position snapshot and returns the first matching rule's action. Pure; all
// I/O happens before and after.
func decide(pos domain.Position, priceOK bool, liquidity float64, liqOK bool, collapseFrac float64, now time.Time) exitDecision {
	price := pos.LastPrice
	trailHit := pos.Phase == domain.PhaseRunner &&
		priceOK && price < pos.LocalHigh*(1-pos.Exit.TrailFraction)
	tpHit := priceOK && price >= pos.EntryPrice*pos.Exit.TakeProfitX

	switch pos.Strategy {
	case domain.StrategyRapid:
		// Hard stop outranks take-profit: on a tick that gapped through
		// both, capital protection wins.
		switch {
		case priceOK && price <= pos.HardStop:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonHardStop, blacklistDev: true}
		case pos.Phase == domain.PhaseFilled && tpHit:
			return exitDecision{action: actPartialTP}
		case trailHit:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonTrailingStop}
		}

	case domain.StrategyMomentum:
		collapsed := liqOK && liquidity < pos.LiquidityRef*collapseFrac
		switch {
		case collapsed:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonLiquidityCollapse, blacklistDev: true}
		case (pos.Phase == domain.PhaseAwaitingFill || pos.Phase == domain.PhaseFilled) && tpHit:
			return exitDecision{action: actPartialTP}
		case trailHit:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonTrailingStop}
		case priceOK && price < pos.HardStop:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonHardStop, blacklistDev: true}
		}

	case domain.StrategyConsensus:
		switch {
		case pos.Phase == domain.PhaseFilled && tpHit:
			return exitDecision{action: actPartialTP}
		case priceOK && price <= pos.HardStop:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonHardStop, blacklistDev: true}
		case !pos.HoldUntil.IsZero() && now.After(pos.HoldUntil):
			// Deadline exits are orderly unwinds, never a rug verdict.
			return exitDecision{action: actFullExit, reason: domain.ExitReasonHoldExpired}
		case trailHit:
			return exitDecision{action: actFullExit, reason: domain.ExitReasonTrailingStop}
		}
	}
	return exitDecision{action: actNone}
}

// apply executes a decision: send the sell, then book the size change. The
// order send comes first so a crash between the two leaves an oversized
// book, never an untracked on-chain holding.
func (e *Evaluator) apply(ctx context.Context, pos domain.Position, dec exitDecision) {
	switch dec.action {
	case actNone:
		return

	case actPartialTP:
		pct := pos.Exit.PartialSellPct
		if err := e.gateway.Sell(ctx, pos.Mint, pct); err != nil {
			e.logger.Warn("take-profit sell failed, retrying next tick",
				slog.String("mint", pos.Mint),
				slog.String("error", err.Error()),
			)
			return
		}
		remain := 1 - float64(pct)/100
		e.book.Mutate(pos.Mint, func(p *domain.Position) {
			p.Size *= remain
			p.Phase = domain.PhaseRunner
			p.PL = (p.LastPrice - p.EntryPrice) * p.Size
		})
		e.events.Append("%s take-profit %s: sold %d%%, runner", pos.Strategy, pos.Mint, pct)
		e.logger.Info("take-profit",
			slog.String("strategy", string(pos.Strategy)),
			slog.String("mint", pos.Mint),
			slog.Int("sold_pct", pct),
		)

	case actFullExit:
		if err := e.gateway.Sell(ctx, pos.Mint, 100); err != nil {
			e.logger.Warn("exit sell failed, retrying next tick",
				slog.String("mint", pos.Mint),
				slog.String("reason", dec.reason),
				slog.String("error", err.Error()),
			)
			return
		}
		e.book.Mutate(pos.Mint, func(p *domain.Position) {
			p.PL = (p.LastPrice - p.EntryPrice) * p.Size
			p.Size = 0
			p.Phase = domain.PhaseExited
			p.ExitReason = dec.reason
		})
		if dec.blacklistDev && pos.Dev != "" {
			e.blacklist.AddDev(pos.Dev)
			e.blacklist.AddMint(pos.Mint)
			e.events.Append("blacklist %s dev %s after %s", pos.Mint, pos.Dev, dec.reason)
		}
	}
}

// refreshBalance updates the cached wallet balance; a failed read keeps the
// previous value.
func (e *Evaluator) refreshBalance(ctx context.Context) {
	if e.balances == nil || e.cfg.Wallet.Address == "" {
		return
	}
	bal, err := e.balances.Balance(ctx, e.cfg.Wallet.Address)
	if err != nil {
		e.logger.Debug("balance refresh failed", slog.String("error", err.Error()))
		return
	}
	e.book.SetWalletBalance(bal)
}
