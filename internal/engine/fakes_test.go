package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/avelex/snipebot/internal/config"
	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/store"
)

// fakeMarket returns canned market data per mint and records nothing.
type fakeMarket struct {
	prices   map[string]float64
	poolAge  map[string]time.Duration
	stats    map[string]domain.PoolStats
	holders  map[string]domain.HolderStats
	liqSeq   map[string][]float64 // successive LiquiditySample readings
	liqCalls map[string]int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		prices:   map[string]float64{},
		poolAge:  map[string]time.Duration{},
		stats:    map[string]domain.PoolStats{},
		holders:  map[string]domain.HolderStats{},
		liqSeq:   map[string][]float64{},
		liqCalls: map[string]int{},
	}
}

func (m *fakeMarket) Price(_ context.Context, mint string) (float64, error) {
	p, ok := m.prices[mint]
	if !ok {
		return 0, domain.ErrNoData
	}
	return p, nil
}

func (m *fakeMarket) PoolAge(_ context.Context, mint string) (time.Duration, error) {
	a, ok := m.poolAge[mint]
	if !ok {
		return 0, domain.ErrNoData
	}
	return a, nil
}

func (m *fakeMarket) VolumeLiquidity(_ context.Context, mint string) (domain.PoolStats, error) {
	s, ok := m.stats[mint]
	if !ok {
		return domain.PoolStats{}, domain.ErrNoData
	}
	return s, nil
}

func (m *fakeMarket) HolderStats(_ context.Context, mint string) (domain.HolderStats, error) {
	h, ok := m.holders[mint]
	if !ok {
		return domain.HolderStats{}, domain.ErrNoData
	}
	return h, nil
}

func (m *fakeMarket) LiquiditySample(_ context.Context, mint string) (domain.LiquiditySample, error) {
	seq, ok := m.liqSeq[mint]
	if !ok {
		return domain.LiquiditySample{}, domain.ErrNoData
	}
	i := m.liqCalls[mint]
	m.liqCalls[mint]++
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return domain.LiquiditySample{Liquidity: seq[i]}, nil
}

// fakeRisk returns one canned report, or fails.
type fakeRisk struct {
	report domain.RiskReport
	err    error
}

func (r *fakeRisk) Check(_ context.Context, _ string) (domain.RiskReport, error) {
	if r.err != nil {
		return domain.RiskReport{}, r.err
	}
	return r.report, nil
}

// fakeGateway records sent orders and can be told to fail.
type fakeGateway struct {
	buys  []string
	sells []sellOrder
	err   error
}

type sellOrder struct {
	mint string
	pct  int
}

func (g *fakeGateway) Buy(_ context.Context, mint string, _ float64, _ *float64) error {
	if g.err != nil {
		return g.err
	}
	g.buys = append(g.buys, mint)
	return nil
}

func (g *fakeGateway) Sell(_ context.Context, mint string, percent int) error {
	if g.err != nil {
		return g.err
	}
	g.sells = append(g.sells, sellOrder{mint: mint, pct: percent})
	return nil
}

type fixedScore float64

func (s fixedScore) Score(string) float64 { return float64(s) }

func goodReport(dev string) domain.RiskReport {
	return domain.RiskReport{Label: "Good", SupplyType: "organic", MaxHolderPct: 5, Authority: dev}
}

// harness bundles freshly wired engine collaborators over fakes.
type harness struct {
	cfg       config.Config
	market    *fakeMarket
	risk      *fakeRisk
	gateway   *fakeGateway
	book      *store.Book
	blacklist *store.Blacklist
	events    *store.EventLog
	policies  *Policies
	evaluator *Evaluator
	stats     *store.Stats
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Defaults()

	h := &harness{
		cfg:       cfg,
		market:    newFakeMarket(),
		risk:      &fakeRisk{report: goodReport("DevOne")},
		gateway:   &fakeGateway{},
		book:      store.NewBook(),
		blacklist: store.NewBlacklist(cfg.Risk.RuggedDevWindow.Duration),
		events:    store.NewEventLog(50),
		stats:     store.NewStats(),
	}
	logger := slog.Default()
	gate := NewGate(h.risk, h.blacklist, h.events, cfg.Risk.MaxHolderPct, logger)
	h.policies = NewPolicies(cfg, h.market, gate, h.gateway, h.book, h.blacklist, h.events, fixedScore(80), nil, logger)
	h.policies.sleep = func(context.Context, time.Duration) error { return nil }
	h.evaluator = NewEvaluator(cfg, h.market, h.gateway, nil, h.book, h.blacklist, h.events, h.stats, logger)
	return h
}
