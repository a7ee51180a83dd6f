// Package gateway delivers buy/sell commands to the external execution bot
// over its Telegram chat. The protocol is textual: "/buy <mint> <amount>
// [limit <price>]" and "/sell <mint> <percent>%". Delivery acceptance by the
// Telegram API says nothing about order fills; the bot has no structured
// acknowledgement channel.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelex/snipebot/internal/domain"
)

// Telegram sends execution commands via the Telegram Bot API sendMessage
// endpoint.
type Telegram struct {
	apiBase string
	token   string
	chatID  string
	http    *http.Client
	logger  *slog.Logger
}

// NewTelegram creates a gateway posting to the given chat. apiBase overrides
// the Telegram API host for tests; pass "" for the production endpoint.
func NewTelegram(apiBase, token, chatID string, logger *slog.Logger) *Telegram {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &Telegram{
		apiBase: apiBase,
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With(slog.String("component", "exec_gateway")),
	}
}

// Buy sends a market buy, or a limit buy when limit is non-nil.
func (t *Telegram) Buy(ctx context.Context, mint string, amount float64, limit *float64) error {
	cmd := fmt.Sprintf("/buy %s %g", mint, amount)
	if limit != nil {
		cmd += fmt.Sprintf(" limit %.7f", *limit)
	}
	return t.send(ctx, cmd)
}

// Sell sends a sell for the given percent of the remaining position.
func (t *Telegram) Sell(ctx context.Context, mint string, percent int) error {
	if percent <= 0 || percent > 100 {
		percent = 100
	}
	return t.send(ctx, fmt.Sprintf("/sell %s %d%%", mint, percent))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("gateway: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	t.logger.Info("sending command", slog.String("command", text))

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gateway: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

var _ domain.ExecutionGateway = (*Telegram)(nil)
