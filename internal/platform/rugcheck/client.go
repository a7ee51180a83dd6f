// Package rugcheck implements the domain.RiskChecker against the rugcheck
// token screening API.
package rugcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avelex/snipebot/internal/domain"
)

// Client queries the rugcheck screening endpoint. Errors from Check make the
// caller's gate fail closed, so no failure mode here may masquerade as a
// clean report.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the given base URL (e.g. "https://rugcheck.xyz").
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "rugcheck")),
	}
}

type report struct {
	Label        string  `json:"label"`
	SupplyType   string  `json:"supply_type"`
	MaxHolderPct float64 `json:"max_holder_pct"`
	Mint         string  `json:"mint"`
	Authority    string  `json:"authority"`
}

// Check fetches the risk report for mint. The endpoint occasionally serves
// an HTML error page with a 200 status; a non-JSON content type is treated
// as a failure rather than decoded on faith.
func (c *Client) Check(ctx context.Context, mint string) (domain.RiskReport, error) {
	url := fmt.Sprintf("%s/api/check/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("rugcheck: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("check failed", slog.String("mint", mint), slog.String("error", err.Error()))
		return domain.RiskReport{}, fmt.Errorf("rugcheck: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RiskReport{}, fmt.Errorf("rugcheck: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		c.logger.Warn("non-JSON response", slog.String("mint", mint), slog.String("content_type", ct))
		return domain.RiskReport{}, fmt.Errorf("rugcheck: unexpected content type %q", ct)
	}

	var rep report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		return domain.RiskReport{}, fmt.Errorf("rugcheck: decode: %w", err)
	}

	return domain.RiskReport{
		Label:        rep.Label,
		SupplyType:   rep.SupplyType,
		MaxHolderPct: rep.MaxHolderPct,
		Mint:         rep.Mint,
		Authority:    rep.Authority,
	}, nil
}

var _ domain.RiskChecker = (*Client)(nil)
