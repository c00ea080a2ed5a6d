// Package solana implements the chain-facing collaborators of the pipeline
// against a Solana JSON-RPC node: transaction fetching, account reads, and
// the WebSocket signature subscription for a watched wallet.
package solana

import (
	"github.com/solwatch/solwatch/internal/pkg/resilience/retry"
	"github.com/solwatch/solwatch/internal/pkg/transport/jsonrpc"
	"github.com/solwatch/solwatch/internal/tokenmeta"
	"github.com/solwatch/solwatch/internal/txreport"
)

// commitmentConfirmed is the confirmation level every RPC call uses.
const commitmentConfirmed = "confirmed"

// client talks to a Solana node via a JSON-RPC client, optionally retrying
// transient failures. It implements both the transaction fetcher and the
// account store collaborators.
type client struct {
	conn  jsonrpc.Client
	retry retry.Retry
}

var (
	_ txreport.TransactionFetcher = (*client)(nil)
	_ tokenmeta.AccountStore      = (*client)(nil)
)

type config struct {
	retry retry.Retry
}

// Option configures the client.
type Option func(*config)

// WithRetry wraps every RPC call with the given retry policy.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// NewClient creates a Solana RPC client on top of the given JSON-RPC
// connection.
func NewClient(conn jsonrpc.Client, opts ...Option) *client {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:  conn,
		retry: cfg.retry,
	}
}
