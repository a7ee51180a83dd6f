package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avelex/snipebot/internal/domain"
)

const (
	pumpHandshakeTimeout = 15 * time.Second
	pumpReadTimeout      = 90 * time.Second
	pumpReconnectDelay   = 2 * time.Second
)

// PumpFunFeed subscribes to new-token launch events over the pumpportal
// WebSocket and emits one signal per launch. It reconnects with a fixed
// delay on any disconnect.
type PumpFunFeed struct {
	wsURL  string
	em     emitter
	logger *slog.Logger
}

// NewPumpFunFeed creates the launch feed pushing into out.
func NewPumpFunFeed(wsURL string, out chan<- domain.TokenSignal, logger *slog.Logger) *PumpFunFeed {
	l := logger.With(slog.String("component", "pumpfun_feed"))
	return &PumpFunFeed{
		wsURL:  wsURL,
		em:     emitter{out: out, logger: l},
		logger: l,
	}
}

// Run connects and consumes until ctx is cancelled, reconnecting on
// disconnect.
func (f *PumpFunFeed) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("pumpfun ws disconnected, reconnecting", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pumpReconnectDelay):
		}
	}
}

// launchEvent is the subset of the pumpportal new-token payload we read.
// Service-level messages (subscription acks) carry no mint and are skipped.
type launchEvent struct {
	Mint string `json:"mint"`
}

func (f *PumpFunFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: pumpHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	sub := map[string]string{"method": "subscribeNewToken"}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	f.logger.Info("pumpfun ws subscribed", slog.String("url", f.wsURL))

	for {
		conn.SetReadDeadline(time.Now().Add(pumpReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev launchEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			f.logger.Debug("unparseable ws message", slog.Int("payload_len", len(data)))
			continue
		}
		if ev.Mint == "" {
			continue
		}
		f.em.emit(ev.Mint, domain.SourcePumpFun)
	}
}
