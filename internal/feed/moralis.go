package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelex/snipebot/internal/domain"
)

// MoralisFeed polls the Moralis trending-token endpoint at a fixed interval.
// It is optional; without an API key the app never starts it.
type MoralisFeed struct {
	url      string
	apiKey   string
	interval time.Duration
	client   *http.Client
	em       emitter
	logger   *slog.Logger
}

// NewMoralisFeed creates the trending poller pushing into out.
func NewMoralisFeed(url, apiKey string, interval time.Duration, out chan<- domain.TokenSignal, logger *slog.Logger) *MoralisFeed {
	l := logger.With(slog.String("component", "moralis_feed"))
	return &MoralisFeed{
		url:      url,
		apiKey:   apiKey,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		em:       emitter{out: out, logger: l},
		logger:   l,
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and skipped; the
// next tick tries again.
func (f *MoralisFeed) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	f.logger.Info("moralis feed started", slog.Duration("interval", f.interval))
	for {
		if err := f.poll(ctx); err != nil {
			f.logger.Warn("moralis poll failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *MoralisFeed) poll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("feed: moralis: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feed: moralis: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed: moralis: status %d", resp.StatusCode)
	}

	var payload struct {
		Result []struct {
			Mint         string `json:"mint"`
			TokenAddress string `json:"tokenAddress"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("feed: moralis: decode: %w", err)
	}

	for _, r := range payload.Result {
		mint := r.Mint
		if mint == "" {
			mint = r.TokenAddress
		}
		if mint == "" {
			continue
		}
		f.em.emit(mint, domain.SourceMoralis)
	}
	return nil
}
