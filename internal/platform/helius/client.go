// Package helius implements the wallet balance oracle over Solana JSON-RPC.
package helius

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

const lamportsPerSol = 1e9

// Client calls getBalance on a Helius RPC endpoint.
type Client struct {
	rpcURL string
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client. When rpcURL is empty it is derived from the API key.
func New(rpcURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if rpcURL == "" && apiKey != "" {
		rpcURL = fmt.Sprintf("https://rpc.helius.xyz/?api-key=%s", apiKey)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		rpcURL: rpcURL,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With(slog.String("component", "helius")),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result struct {
		Value int64 `json:"value"`
	} `json:"result"`
}

// Balance returns the wallet balance in SOL. Any failure is reported as
// ErrNoData; the caller keeps its previously cached value.
func (c *Client) Balance(ctx context.Context, wallet string) (float64, error) {
	if c.rpcURL == "" || wallet == "" {
		return 0, fmt.Errorf("helius: not configured: %w", domain.ErrNoData)
	}

	payload, err := json.Marshal([]rpcRequest{{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getBalance",
		Params:  []any{wallet},
	}})
	if err != nil {
		return 0, fmt.Errorf("helius: marshal: %w", domain.ErrNoData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("helius: create request: %w", domain.ErrNoData)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("getBalance failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("helius: %v: %w", err, domain.ErrNoData)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("helius: status %d: %w", resp.StatusCode, domain.ErrNoData)
	}

	var results []rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, fmt.Errorf("helius: decode: %v: %w", err, domain.ErrNoData)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("helius: empty batch response: %w", domain.ErrNoData)
	}

	return float64(results[0].Result.Value) / lamportsPerSol, nil
}

var _ domain.BalanceOracle = (*Client)(nil)
