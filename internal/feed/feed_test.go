package feed

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelex/snipebot/internal/domain"
)

func TestEmitterDropsWhenQueueFull(t *testing.T) {
	out := make(chan domain.TokenSignal, 1)
	em := emitter{out: out, logger: slog.Default()}

	em.emit("MintA", domain.SourcePumpFun)
	em.emit("MintB", domain.SourcePumpFun) // queue full, dropped

	require.Len(t, out, 1)
	sig := <-out
	assert.Equal(t, "MintA", sig.Mint)
	assert.NotEmpty(t, sig.ID)
	assert.False(t, sig.SeenAt.IsZero())
}

func TestMoralisPollEmitsTrendingMints(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[{"mint":"MintA"},{"tokenAddress":"MintB"},{"mint":""}]}`))
	}))
	defer srv.Close()

	out := make(chan domain.TokenSignal, 8)
	f := NewMoralisFeed(srv.URL, "key123", time.Minute, out, slog.Default())

	require.NoError(t, f.poll(context.Background()))
	assert.Equal(t, "key123", gotKey)
	require.Len(t, out, 2)
	assert.Equal(t, "MintA", (<-out).Mint)
	sig := <-out
	assert.Equal(t, "MintB", sig.Mint)
	assert.Equal(t, domain.SourceMoralis, sig.Source)
}

func TestMoralisPollToleratesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	out := make(chan domain.TokenSignal, 8)
	f := NewMoralisFeed(srv.URL, "key", time.Minute, out, slog.Default())

	assert.Error(t, f.poll(context.Background()))
	assert.Empty(t, out)
}

func TestBitqueryPollEmitsTradedMints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer bq-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"Solana":{"DEXTrades":[
			{"Trade":{"Buy":{"Currency":{"MintAddress":"MintA"}}}},
			{"Trade":{"Buy":{"Currency":{"MintAddress":""}}}},
			{"Trade":{"Buy":{"Currency":{"MintAddress":"MintB"}}}}
		]}}}`))
	}))
	defer srv.Close()

	out := make(chan domain.TokenSignal, 8)
	f := NewBitqueryFeed(srv.URL, "bq-key", time.Minute, out, slog.Default())

	require.NoError(t, f.poll(context.Background()))
	require.Len(t, out, 2)
	assert.Equal(t, domain.SourceBitquery, (<-out).Source)
	assert.Equal(t, "MintB", (<-out).Mint)
}

func TestPumpFunFeedEmitsLaunches(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Expect the subscription command first.
		var cmd map[string]string
		require.NoError(t, conn.ReadJSON(&cmd))
		assert.Equal(t, "subscribeNewToken", cmd["method"])

		conn.WriteJSON(map[string]string{"message": "subscribed"}) // ack, no mint
		conn.WriteJSON(map[string]any{"mint": "MintA", "name": "Token A"})
		conn.WriteJSON(map[string]any{"mint": "MintB"})

		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	out := make(chan domain.TokenSignal, 8)
	f := NewPumpFunFeed(wsURL, out, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	var mints []string
	for len(mints) < 2 {
		select {
		case sig := <-out:
			assert.Equal(t, domain.SourcePumpFun, sig.Source)
			mints = append(mints, sig.Mint)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for launch signals")
		}
	}
	assert.Equal(t, []string{"MintA", "MintB"}, mints)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
