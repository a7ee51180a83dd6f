package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelex/snipebot/internal/domain"
)

// bitqueryQuery asks for the most recent pump.fun DEX trades; the base
// currency of each trade is a candidate mint.
const bitqueryQuery = `{
  Solana {
    DEXTrades(
      limit: {count: 20}
      orderBy: {descending: Block_Time}
      where: {Trade: {Dex: {ProtocolName: {is: "pump"}}}}
    ) {
      Trade {
        Buy {
          Currency {
            MintAddress
          }
        }
      }
    }
  }
}`

// BitqueryFeed polls the Bitquery GraphQL API for recently traded launches.
// Optional; enabled only when an API key is configured.
type BitqueryFeed struct {
	url      string
	apiKey   string
	interval time.Duration
	client   *http.Client
	em       emitter
	logger   *slog.Logger
}

// NewBitqueryFeed creates the GraphQL poller pushing into out.
func NewBitqueryFeed(url, apiKey string, interval time.Duration, out chan<- domain.TokenSignal, logger *slog.Logger) *BitqueryFeed {
	l := logger.With(slog.String("component", "bitquery_feed"))
	return &BitqueryFeed{
		url:      url,
		apiKey:   apiKey,
		interval: interval,
		client:   &http.Client{Timeout: 15 * time.Second},
		em:       emitter{out: out, logger: l},
		logger:   l,
	}
}

// Run polls until ctx is cancelled.
func (f *BitqueryFeed) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	f.logger.Info("bitquery feed started", slog.Duration("interval", f.interval))
	for {
		if err := f.poll(ctx); err != nil {
			f.logger.Warn("bitquery poll failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *BitqueryFeed) poll(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"query": bitqueryQuery})
	if err != nil {
		return fmt.Errorf("feed: bitquery: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feed: bitquery: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feed: bitquery: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed: bitquery: status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Solana struct {
				DEXTrades []struct {
					Trade struct {
						Buy struct {
							Currency struct {
								MintAddress string `json:"MintAddress"`
							} `json:"Currency"`
						} `json:"Buy"`
					} `json:"Trade"`
				} `json:"DEXTrades"`
			} `json:"Solana"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("feed: bitquery: decode: %w", err)
	}

	for _, t := range payload.Data.Solana.DEXTrades {
		if mint := t.Trade.Buy.Currency.MintAddress; mint != "" {
			f.em.emit(mint, domain.SourceBitquery)
		}
	}
	return nil
}
