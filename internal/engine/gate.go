// Package engine is the trading core: the risk gate, the three entry
// policies, the consensus vote aggregator, the signal router, and the
// periodic exit evaluator. All external I/O goes through the domain port
// interfaces; the engine itself holds no sockets.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/store"
)

// Gate screens a candidate token against the risk service before any buy is
// placed. Every failure mode rejects: a token that cannot be vetted is not
// traded.
type Gate struct {
	checker      domain.RiskChecker
	blacklist    *store.Blacklist
	events       *store.EventLog
	maxHolderPct float64
	logger       *slog.Logger
}

// NewGate creates a risk gate. maxHolderPct is the largest tolerated single
// holder share, in percent.
func NewGate(checker domain.RiskChecker, blacklist *store.Blacklist, events *store.EventLog, maxHolderPct float64, logger *slog.Logger) *Gate {
	return &Gate{
		checker:      checker,
		blacklist:    blacklist,
		events:       events,
		maxHolderPct: maxHolderPct,
		logger:       logger.With(slog.String("component", "risk_gate")),
	}
}

// Check vets mint with the risk service. On pass it returns the issuer
// authority for the position record. Bundled supply additionally blacklists
// the mint and its authority permanently.
func (g *Gate) Check(ctx context.Context, mint string) (string, error) {
	report, err := g.checker.Check(ctx, mint)
	if err != nil {
		// Fail closed: an unreachable or garbled risk service rejects.
		g.logger.Warn("risk check unavailable, rejecting",
			slog.String("mint", mint),
			slog.String("error", err.Error()),
		)
		g.events.Append("gate reject %s: risk data unavailable", mint)
		return "", fmt.Errorf("engine: risk gate %s: %w", mint, domain.ErrGateReject)
	}

	if strings.Contains(strings.ToLower(report.SupplyType), "bundled") {
		g.blacklist.AddMint(mint)
		g.blacklist.AddDev(report.Authority)
		g.events.Append("gate reject %s: bundled supply, mint and dev blacklisted", mint)
		return "", fmt.Errorf("engine: risk gate %s: bundled supply: %w", mint, domain.ErrGateReject)
	}

	if report.Label != "Good" {
		g.events.Append("gate reject %s: risk label %q", mint, report.Label)
		return "", fmt.Errorf("engine: risk gate %s: label %q: %w", mint, report.Label, domain.ErrGateReject)
	}

	if report.MaxHolderPct > g.maxHolderPct {
		g.events.Append("gate reject %s: top holder %.1f%% > %.1f%%", mint, report.MaxHolderPct, g.maxHolderPct)
		return "", fmt.Errorf("engine: risk gate %s: holder concentration %.1f%%: %w", mint, report.MaxHolderPct, domain.ErrGateReject)
	}

	return report.Authority, nil
}
