package txreport

import (
	"context"

	"github.com/shopspring/decimal"
)

// TokenBalance is one entry of a transaction's pre or post token balance
// snapshot: the balance of a single token account at that point in time.
type TokenBalance struct {
	// AccountIndex is the position of the token account in the transaction's
	// account list. Pre and post entries are paired by this index.
	AccountIndex int

	// Owner is the wallet that owns the token account.
	Owner string

	// Mint is the base58 address of the token's mint.
	Mint string

	// Amount is the balance in display units (already adjusted for decimals).
	Amount decimal.Decimal

	// Decimals is the mint precision as reported alongside the balance.
	Decimals uint8
}

// Transaction is the slice of a confirmed Solana transaction this service
// cares about: the account list and the balance snapshots taken before and
// after execution. Transactions are transient: fetched, processed, discarded.
type Transaction struct {
	Signature string

	// AccountKeys lists every account touched by the transaction, in the order
	// the lamport balance arrays are indexed by.
	AccountKeys []string

	// HasMeta reports whether the node returned the metadata section holding
	// the balance snapshots. Without it no deltas can be computed.
	HasMeta bool

	// PreBalances and PostBalances hold each account's lamports before and
	// after execution, indexed by position in AccountKeys.
	PreBalances  []uint64
	PostBalances []uint64

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// TransactionFetcher retrieves full transactions by signature. Implementations
// are expected to query at confirmed commitment and tolerate versioned
// transactions; any retry or timeout policy belongs to them.
type TransactionFetcher interface {
	// GetTransaction returns the transaction for the signature, or found=false
	// if the node has no record of it.
	GetTransaction(ctx context.Context, signature string) (tx Transaction, found bool, err error)
}

// SignatureEvent is one notification from the subscription stream: a
// transaction signature that mentioned the watched wallet, plus the delivery
// error if the stream failed to decode it.
type SignatureEvent struct {
	Signature string
	Err       error
}

// SignatureStream delivers signatures of new transactions involving the
// watched wallet. Ordering is best effort and duplicates are possible; the
// processor guards against both.
type SignatureStream interface {
	// Subscribe starts the stream and returns the event channel. The channel
	// is closed when the context is canceled.
	Subscribe(ctx context.Context) (<-chan SignatureEvent, error)
}
