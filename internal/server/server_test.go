package server

import (
	"context"
	"encoding/json"
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
	"github.com/avelex/snipebot/internal/store"
)

func newSnapshotter(t *testing.T) (*Snapshotter, *store.Book) {
	t.Helper()
	book := store.NewBook()
	events := store.NewEventLog(10)
	stats := store.NewStats()
	events.Append("test event")
	return NewSnapshotter(book, events, stats), book
}

func TestStatusEndpointReturnsSnapshot(t *testing.T) {
	snaps, book := newSnapshotter(t)
	book.SetWalletBalance(1.5)
	require.NoError(t, book.Open(domain.Position{Mint: "MintA", Strategy: domain.StrategyRapid, Size: 0.07, Phase: domain.PhaseFilled}))

	srv := NewServer(0, snaps, nil, slog.Default())
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.StatusSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "running", snap.Status)
	assert.InDelta(t, 1.5, snap.WalletBalance, 1e-12)
	assert.InDelta(t, 0.07, snap.Exposure, 1e-12)
	require.Len(t, snap.OpenPositions, 1)
	assert.Equal(t, "MintA", snap.OpenPositions[0].Mint)
	assert.Len(t, snap.Strategies, 3, "all strategies reported even with no closes")
}

func TestHealthz(t *testing.T) {
	snaps, _ := newSnapshotter(t)
	srv := NewServer(0, snaps, nil, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHubStreamsSnapshots(t *testing.T) {
	snaps, book := newSnapshotter(t)
	book.SetWalletBalance(2.0)
	hub := NewHub(snaps, 20*time.Millisecond, nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Initial frame arrives without waiting for a tick, then ticks follow.
	for i := 0; i < 2; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var snap domain.StatusSnapshot
		require.NoError(t, json.Unmarshal(data, &snap))
		assert.InDelta(t, 2.0, snap.WalletBalance, 1e-12)
	}
}

func TestHubDeliversFirstFrameAcrossShutdown(t *testing.T) {
	snaps, _ := newSnapshotter(t)
	hub := NewHub(snaps, time.Millisecond, nil, slog.Default())

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// Clients connecting while the hub shuts down must still get their
	// queued first frame; shutdown closing a half-registered client's send
	// channel would otherwise kill the handler before the frame goes out.
	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- hub.Run(ctx) }()

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		cancel()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err = conn.ReadMessage()
		require.NoError(t, err, "first frame must arrive even when shutdown races the connect")

		require.ErrorIs(t, <-done, context.Canceled)
		conn.Close()
	}
}
