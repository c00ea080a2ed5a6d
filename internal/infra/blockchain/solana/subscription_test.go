package solana

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/solwatch/solwatch/internal/pkg/logger"
	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

func TestParseSignature(t *testing.T) {
	t.Run("should extract the signature from a logs notification", func(t *testing.T) {
		message := []byte(`{
			"jsonrpc": "2.0",
			"method": "logsNotification",
			"params": {
				"result": {
					"context": {"slot": 5208469},
					"value": {"signature": "sig-abc", "err": null, "logs": []}
				},
				"subscription": 24040
			}
		}`)

		signature, ok := parseSignature(message)
		require.True(t, ok)
		assert.Equal(t, "sig-abc", signature)
	})

	t.Run("should skip the subscription confirmation", func(t *testing.T) {
		_, ok := parseSignature([]byte(`{"jsonrpc": "2.0", "result": 24040, "id": 1}`))
		assert.False(t, ok)
	})

	t.Run("should skip malformed frames", func(t *testing.T) {
		_, ok := parseSignature([]byte(`not json`))
		assert.False(t, ok)
	})
}

func TestSubscription(t *testing.T) {
	upgrader := websocket.Upgrader{}

	notification := func(signature string) string {
		return `{
			"jsonrpc": "2.0",
			"method": "logsNotification",
			"params": {"result": {"value": {"signature": "` + signature + `"}}, "subscription": 1}
		}`
	}

	t.Run("should subscribe and deliver deduplicated signatures", func(t *testing.T) {
		received := make(chan map[string]any, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			require.NoError(t, err)
			defer conn.Close()

			var request map[string]any
			require.NoError(t, conn.ReadJSON(&request))
			received <- request

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc": "2.0", "result": 1, "id": 1}`)))
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notification("sig-1"))))
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notification("sig-1"))))
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notification("sig-2"))))

			// Hold the connection open until the client goes away.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}))
		defer server.Close()

		endpoint := strings.Replace(server.URL, "http", "ws", 1)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		events, err := NewSubscription(endpoint, "watched-wallet").Subscribe(ctx)
		require.NoError(t, err)

		request := <-received
		assert.Equal(t, "logsSubscribe", request["method"])
		params, ok := request["params"].([]any)
		require.True(t, ok)
		require.Len(t, params, 2)
		assert.Equal(t, map[string]any{"mentions": []any{"watched-wallet"}}, params[0])
		assert.Equal(t, map[string]any{"commitment": "confirmed"}, params[1])

		var got []txreport.SignatureEvent
		timeout := time.After(5 * time.Second)
		for len(got) < 2 {
			select {
			case event := <-events:
				got = append(got, event)
			case <-timeout:
				t.Fatalf("timed out waiting for signature events, got %d", len(got))
			}
		}

		assert.Equal(t, "sig-1", got[0].Signature)
		assert.Equal(t, "sig-2", got[1].Signature)
	})

	t.Run("should close the events channel on cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}))
		defer server.Close()

		endpoint := strings.Replace(server.URL, "http", "ws", 1)

		ctx, cancel := context.WithCancel(t.Context())

		events, err := NewSubscription(endpoint, "watched-wallet").Subscribe(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, open := <-events:
			assert.False(t, open)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for the events channel to close")
		}
	})
}
