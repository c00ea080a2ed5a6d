package solana

import (
	"context"
	"encoding/json"
	"time"

	"github.com/solwatch/solwatch/internal/pkg/logger"
	"github.com/solwatch/solwatch/internal/pkg/types"
	"github.com/solwatch/solwatch/internal/pkg/x/chflow"
	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/gorilla/websocket"
)

const (
	// signatureChannelBufferSize absorbs short bursts of notifications while
	// the processor pool is busy.
	signatureChannelBufferSize = 64

	defaultHandshakeTimeout = 10 * time.Second
	defaultPingInterval     = 30 * time.Second
	defaultReadTimeout      = 90 * time.Second
	defaultWriteTimeout     = 10 * time.Second

	initialReconnectWait = time.Second
	maxReconnectWait     = 30 * time.Second
)

// subscription streams transaction signatures mentioning the watched wallet
// from a Solana WebSocket endpoint via logsSubscribe. It reconnects with
// capped exponential backoff whenever the connection drops.
type subscription struct {
	endpoint string
	wallet   string
	dialer   *websocket.Dialer
}

var _ txreport.SignatureStream = (*subscription)(nil)

// NewSubscription creates a signature stream for the given wallet against the
// given WebSocket endpoint.
func NewSubscription(endpoint, wallet string) *subscription {
	return &subscription{
		endpoint: endpoint,
		wallet:   wallet,
		dialer: &websocket.Dialer{
			HandshakeTimeout: defaultHandshakeTimeout,
		},
	}
}

// logsSubscribeRequest builds the logsSubscribe frame filtering on
// transactions that mention the watched wallet.
func (s *subscription) logsSubscribeRequest() any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "logsSubscribe",
		"params": []any{
			map[string]any{"mentions": []string{s.wallet}},
			map[string]any{"commitment": commitmentConfirmed},
		},
	}
}

// logsNotification is the shape of a logsSubscribe push message. Frames with
// another method (e.g. the subscription confirmation) leave Method empty or
// different and are skipped.
type logsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Signature string `json:"signature"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// parseSignature extracts the transaction signature from a push frame,
// reporting false for anything that is not a logs notification.
func parseSignature(message []byte) (string, bool) {
	var notification logsNotification
	if err := json.Unmarshal(message, &notification); err != nil {
		return "", false
	}

	if notification.Method != "logsNotification" {
		return "", false
	}

	signature := notification.Params.Result.Value.Signature
	return signature, signature != ""
}

// Subscribe implements txreport.SignatureStream. The returned channel is
// closed once the context is canceled.
func (s *subscription) Subscribe(ctx context.Context) (<-chan txreport.SignatureEvent, error) {
	events := make(chan txreport.SignatureEvent, signatureChannelBufferSize)

	go func() {
		defer close(events)

		wait := initialReconnectWait
		for ctx.Err() == nil {
			startedAt := time.Now()
			err := s.consumeConnection(ctx, events)
			if ctx.Err() != nil {
				return
			}

			// A session that survived a while earns a fresh backoff.
			if time.Since(startedAt) > maxReconnectWait {
				wait = initialReconnectWait
			}

			logger.Warn(ctx, "signature subscription dropped, reconnecting",
				"endpoint", s.endpoint,
				"wallet", s.wallet,
				"wait", wait.String(),
				"error", err,
			)

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			wait = min(wait*2, maxReconnectWait)
		}
	}()

	return events, nil
}

// consumeConnection dials, subscribes, and pumps notifications into the
// events channel until the connection or the context ends.
func (s *subscription) consumeConnection(ctx context.Context, events chan<- txreport.SignatureEvent) error {
	conn, _, err := s.dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	// Force the blocking read below to unwind when the context ends.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if err := conn.WriteJSON(s.logsSubscribeRequest()); err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(defaultReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(defaultReadTimeout))
	})

	go s.keepAlive(ctx, conn, done)

	// The node may deliver the same signature more than once per session.
	seen := types.NewSet[string]()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(defaultReadTimeout))

		signature, ok := parseSignature(message)
		if !ok || seen.Has(signature) {
			continue
		}
		seen.Add(signature)

		if !chflow.Send(ctx, events, txreport.SignatureEvent{Signature: signature}) {
			return ctx.Err()
		}
	}
}

// keepAlive sends periodic pings so intermediaries keep the connection open.
func (s *subscription) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(defaultPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(defaultWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
