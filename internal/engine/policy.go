package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelex/snipebot/internal/config"
	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/store"
)

// EntryHook observes successful position openings (operator notifications,
// dashboard events). It must not block.
type EntryHook func(pos domain.Position)

// Policies bundles the three entry strategies over shared collaborators.
// Every entry attempt runs the same spine: blacklist screen, duplicate-open
// screen, strategy pre-gate, risk gate, price fetch, buy order, book insert.
type Policies struct {
	cfg       config.Config
	market    domain.MarketData
	gate      *Gate
	gateway   domain.ExecutionGateway
	book      *store.Book
	blacklist *store.Blacklist
	events    *store.EventLog
	scorer    domain.Scorer
	onEntry   EntryHook
	logger    *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicies wires the strategy set. onEntry may be nil.
func NewPolicies(
	cfg config.Config,
	market domain.MarketData,
	gate *Gate,
	gateway domain.ExecutionGateway,
	book *store.Book,
	blacklist *store.Blacklist,
	events *store.EventLog,
	scorer domain.Scorer,
	onEntry EntryHook,
	logger *slog.Logger,
) *Policies {
	return &Policies{
		cfg:       cfg,
		market:    market,
		gate:      gate,
		gateway:   gateway,
		book:      book,
		blacklist: blacklist,
		events:    events,
		scorer:    scorer,
		onEntry:   onEntry,
		logger:    logger.With(slog.String("component", "policies")),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// preflight runs the screens every strategy shares before any network-heavy
// work: blacklist membership and an existing open position. The dev side of
// the blacklist is rechecked later once the gate reveals the issuer.
func (p *Policies) preflight(mint string) error {
	if p.blacklist.Banned(mint, "") {
		return fmt.Errorf("engine: %s: %w", mint, domain.ErrBlacklisted)
	}
	if p.book.Has(mint) {
		return fmt.Errorf("engine: %s: %w", mint, domain.ErrPositionOpen)
	}
	return nil
}

// entryPrice fetches the oracle quote for mint, falling back to the
// configured placeholder when the oracle has no data yet. Brand-new pumpfun
// mints routinely have no indexed pair at buy time.
func (p *Policies) entryPrice(ctx context.Context, mint string) float64 {
	price, err := p.market.Price(ctx, mint)
	if err != nil || price <= 0 {
		p.logger.Debug("no oracle quote at entry, using fallback",
			slog.String("mint", mint),
			slog.Float64("fallback", p.cfg.Evaluator.FallbackPrice),
		)
		return p.cfg.Evaluator.FallbackPrice
	}
	return price
}

// open places the buy order and inserts the position. The order send and the
// insert are deliberately not transactional: transport acceptance is not a
// fill, and a book insert that loses the duplicate race is logged and left
// to the operator.
func (p *Policies) open(ctx context.Context, pos domain.Position, limit *float64) (domain.Position, error) {
	if err := p.gateway.Buy(ctx, pos.Mint, pos.Size, limit); err != nil {
		return domain.Position{}, fmt.Errorf("engine: buy %s: %w", pos.Mint, err)
	}
	if err := p.book.Open(pos); err != nil {
		p.logger.Error("buy ordered but position insert rejected",
			slog.String("mint", pos.Mint),
			slog.String("error", err.Error()),
		)
		p.events.Append("WARNING %s: order sent but book insert rejected", pos.Mint)
		return domain.Position{}, err
	}
	p.events.Append("%s entry %s size %g @ %.8f", pos.Strategy, pos.Mint, pos.Size, pos.EntryPrice)
	p.logger.Info("position opened",
		slog.String("strategy", string(pos.Strategy)),
		slog.String("mint", pos.Mint),
		slog.Float64("size", pos.Size),
		slog.Float64("entry", pos.EntryPrice),
	)
	if p.onEntry != nil {
		p.onEntry(pos)
	}
	return pos, nil
}

// rejected reports gate/screen rejections at debug and swallows the error
// category; the router treats every policy outcome as terminal for that
// signal.
func (p *Policies) rejected(mint string, err error) error {
	switch {
	case errors.Is(err, domain.ErrBlacklisted),
		errors.Is(err, domain.ErrPositionOpen),
		errors.Is(err, domain.ErrGateReject):
		p.logger.Debug("entry rejected", slog.String("mint", mint), slog.String("reason", err.Error()))
	default:
		p.logger.Warn("entry failed", slog.String("mint", mint), slog.String("error", err.Error()))
	}
	return err
}
