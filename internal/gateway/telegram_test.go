package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Telegram, *[]string) {
	t.Helper()
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/sendMessage", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chat42", body["chat_id"])
		sent = append(sent, body["text"])
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return NewTelegram(srv.URL, "tok", "chat42", slog.Default()), &sent
}

func TestBuyCommandFormat(t *testing.T) {
	g, sent := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, g.Buy(ctx, "MintA", 0.07, nil))

	limit := 0.00097
	require.NoError(t, g.Buy(ctx, "MintB", 0.1, &limit))

	require.Len(t, *sent, 2)
	assert.Equal(t, "/buy MintA 0.07", (*sent)[0])
	assert.Equal(t, "/buy MintB 0.1 limit 0.0009700", (*sent)[1])
}

func TestSellCommandFormat(t *testing.T) {
	g, sent := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, g.Sell(ctx, "MintA", 85))
	require.NoError(t, g.Sell(ctx, "MintA", 0)) // out of range falls back to full exit

	require.Len(t, *sent, 2)
	assert.Equal(t, "/sell MintA 85%", (*sent)[0])
	assert.Equal(t, "/sell MintA 100%", (*sent)[1])
}

func TestSendErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	g := NewTelegram(srv.URL, "tok", "chat42", slog.Default())
	err := g.Buy(context.Background(), "MintA", 0.07, nil)
	assert.ErrorContains(t, err, "401")
}
