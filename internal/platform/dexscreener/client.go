// Package dexscreener implements the domain.MarketData oracle against the
// DEX Screener token API. Every call carries a bounded timeout and converts
// any transport, status, or decode failure into domain.ErrNoData so a flaky
// upstream can never stall or crash the pipeline.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avelex/snipebot/internal/domain"
)

// Client queries the DEX Screener latest-pairs endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Client for the given base URL (e.g.
// "https://api.dexscreener.com"). timeout bounds every request.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "dexscreener")),
		now:     time.Now,
	}
}

// floatish tolerates the API returning numbers either as JSON numbers or as
// quoted strings (priceNative in particular is a string).
type floatish float64

func (f *floatish) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = floatish(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = floatish(v)
	return nil
}

type pair struct {
	BaseToken struct {
		Address string `json:"address"`
	} `json:"baseToken"`
	PriceNative   floatish `json:"priceNative"`
	PairCreatedAt int64    `json:"pairCreatedAt"`
	Liquidity     struct {
		Base floatish `json:"base"`
	} `json:"liquidity"`
	Volume struct {
		H1 floatish `json:"h1"`
		H6 floatish `json:"h6"`
	} `json:"volume"`
	Holders             int      `json:"holders"`
	HolderConcentration floatish `json:"holderConcentration"`
	BuyTxns             int      `json:"buyTxns"`
}

type tokenResponse struct {
	Pairs []pair `json:"pairs"`
}

// fetchPair returns the first pair whose base token matches mint.
func (c *Client) fetchPair(ctx context.Context, mint string) (pair, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pair{}, fmt.Errorf("dexscreener: create request: %w", domain.ErrNoData)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("token lookup failed", slog.String("mint", mint), slog.String("error", err.Error()))
		return pair{}, fmt.Errorf("dexscreener: %v: %w", err, domain.ErrNoData)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("token lookup bad status", slog.String("mint", mint), slog.Int("status", resp.StatusCode))
		return pair{}, fmt.Errorf("dexscreener: status %d: %w", resp.StatusCode, domain.ErrNoData)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return pair{}, fmt.Errorf("dexscreener: decode: %v: %w", err, domain.ErrNoData)
	}

	for _, p := range body.Pairs {
		if p.BaseToken.Address == mint {
			return p, nil
		}
	}
	return pair{}, fmt.Errorf("dexscreener: no pair for %s: %w", mint, domain.ErrNoData)
}

// Price returns the native-quoted price for mint.
func (c *Client) Price(ctx context.Context, mint string) (float64, error) {
	p, err := c.fetchPair(ctx, mint)
	if err != nil {
		return 0, err
	}
	if p.PriceNative <= 0 {
		return 0, fmt.Errorf("dexscreener: no price for %s: %w", mint, domain.ErrNoData)
	}
	return float64(p.PriceNative), nil
}

// PoolAge returns how long ago the token's pair was created.
func (c *Client) PoolAge(ctx context.Context, mint string) (time.Duration, error) {
	p, err := c.fetchPair(ctx, mint)
	if err != nil {
		return 0, err
	}
	if p.PairCreatedAt == 0 {
		return 0, fmt.Errorf("dexscreener: no creation time for %s: %w", mint, domain.ErrNoData)
	}
	created := p.PairCreatedAt
	// Millisecond timestamps are 13 digits; normalize to seconds.
	if created > 1e12 {
		created /= 1000
	}
	age := c.now().Sub(time.Unix(created, 0))
	if age < 0 {
		age = 0
	}
	return age, nil
}

// VolumeLiquidity returns the pool's liquidity and volume snapshot.
func (c *Client) VolumeLiquidity(ctx context.Context, mint string) (domain.PoolStats, error) {
	p, err := c.fetchPair(ctx, mint)
	if err != nil {
		return domain.PoolStats{}, err
	}
	return domain.PoolStats{
		Liquidity: float64(p.Liquidity.Base),
		Volume1h:  float64(p.Volume.H1),
		Volume6h:  float64(p.Volume.H6),
	}, nil
}

// HolderStats returns the holder-distribution snapshot.
func (c *Client) HolderStats(ctx context.Context, mint string) (domain.HolderStats, error) {
	p, err := c.fetchPair(ctx, mint)
	if err != nil {
		return domain.HolderStats{}, err
	}
	return domain.HolderStats{
		Holders:      p.Holders,
		MaxHolderPct: float64(p.HolderConcentration),
	}, nil
}

// LiquiditySample returns a point-in-time liquidity/buy-pressure probe used
// by the Rapid pre-gate.
func (c *Client) LiquiditySample(ctx context.Context, mint string) (domain.LiquiditySample, error) {
	p, err := c.fetchPair(ctx, mint)
	if err != nil {
		return domain.LiquiditySample{}, err
	}
	return domain.LiquiditySample{
		Liquidity: float64(p.Liquidity.Base),
		Buys:      p.BuyTxns,
	}, nil
}

var _ domain.MarketData = (*Client)(nil)
