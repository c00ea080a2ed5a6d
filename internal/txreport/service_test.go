package txreport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/solwatch/solwatch/internal/pkg/logger"
	"github.com/solwatch/solwatch/internal/tokenmeta"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init(logger.WithLevel("error"))
}

type fetcherStub struct {
	mu    sync.Mutex
	txs   map[string]Transaction
	err   error
	calls int
}

func (f *fetcherStub) GetTransaction(_ context.Context, signature string) (Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return Transaction{}, false, f.err
	}

	tx, ok := f.txs[signature]
	return tx, ok, nil
}

type resolverStub struct {
	metadata map[string]tokenmeta.Metadata
}

func (r *resolverStub) Resolve(_ context.Context, mint string) tokenmeta.Metadata {
	if md, ok := r.metadata[mint]; ok {
		return md
	}
	return tokenmeta.Sentinel
}

type notifierStub struct {
	mu      sync.Mutex
	reports []ActivityReport
	err     error
}

func (n *notifierStub) NotifyActivity(_ context.Context, report ActivityReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.reports = append(n.reports, report)
	return n.err
}

func (n *notifierStub) all() []ActivityReport {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]ActivityReport(nil), n.reports...)
}

type streamStub struct {
	events chan SignatureEvent
}

func (s *streamStub) Subscribe(ctx context.Context) (<-chan SignatureEvent, error) {
	go func() {
		<-ctx.Done()
		close(s.events)
	}()
	return s.events, nil
}

type guardStub struct {
	mu        sync.Mutex
	claimErr  error
	claimed   []string
	processed []string
}

func (g *guardStub) ClaimSignature(_ context.Context, signature string, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.claimed = append(g.claimed, signature)
	return g.claimErr
}

func (g *guardStub) MarkSignatureProcessed(_ context.Context, signature string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.processed = append(g.processed, signature)
	return nil
}

func soldHalfSOLTransaction() Transaction {
	return Transaction{
		AccountKeys:  []string{watchedWallet, otherWallet},
		HasMeta:      true,
		PreBalances:  []uint64{2_000_000_000, 0},
		PostBalances: []uint64{1_500_000_000, 500_000_000},
	}
}

func TestProcessSignature(t *testing.T) {
	t.Run("unknown signature aborts with ErrTransactionNotFound", func(t *testing.T) {
		svc := New(watchedWallet, &fetcherStub{}, &resolverStub{}, &notifierStub{}, nil)

		err := svc.ProcessSignature(t.Context(), "missing")

		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})

	t.Run("missing metadata section aborts with ErrMissingTransactionMeta", func(t *testing.T) {
		fetcher := &fetcherStub{txs: map[string]Transaction{
			"sig": {AccountKeys: []string{watchedWallet}},
		}}

		svc := New(watchedWallet, fetcher, &resolverStub{}, &notifierStub{}, nil)

		err := svc.ProcessSignature(t.Context(), "sig")

		assert.ErrorIs(t, err, ErrMissingTransactionMeta)
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		cause := errors.New("rpc down")
		fetcher := &fetcherStub{err: cause}

		svc := New(watchedWallet, fetcher, &resolverStub{}, &notifierStub{}, nil)

		err := svc.ProcessSignature(t.Context(), "sig")

		assert.ErrorIs(t, err, cause)
	})

	t.Run("no deltas means no notification", func(t *testing.T) {
		fetcher := &fetcherStub{txs: map[string]Transaction{
			"sig": {
				AccountKeys:  []string{watchedWallet},
				HasMeta:      true,
				PreBalances:  []uint64{1_000_000_000},
				PostBalances: []uint64{1_000_000_000},
			},
		}}
		notifier := &notifierStub{}

		svc := New(watchedWallet, fetcher, &resolverStub{}, notifier, nil)

		require.NoError(t, svc.ProcessSignature(t.Context(), "sig"))
		assert.Empty(t, notifier.all())
	})

	t.Run("reports native and token movements with resolved metadata", func(t *testing.T) {
		tx := soldHalfSOLTransaction()
		tx.PreTokenBalances = []TokenBalance{
			{AccountIndex: 3, Owner: watchedWallet, Mint: mintX, Amount: decimal.RequireFromString("10.0")},
		}
		tx.PostTokenBalances = []TokenBalance{
			{AccountIndex: 3, Owner: watchedWallet, Mint: mintX, Amount: decimal.RequireFromString("14.25")},
		}

		fetcher := &fetcherStub{txs: map[string]Transaction{"sig": tx}}
		resolver := &resolverStub{metadata: map[string]tokenmeta.Metadata{
			mintX: {Name: "USD Coin", Symbol: "USDC", Decimals: 2},
		}}
		notifier := &notifierStub{}

		svc := New(watchedWallet, fetcher, resolver, notifier, nil)

		require.NoError(t, svc.ProcessSignature(t.Context(), "sig"))

		reports := notifier.all()
		require.Len(t, reports, 1)
		require.Len(t, reports[0].Movements, 2)
		assert.Equal(t, "Token: SOL, Sold: 0.500000000 SOL", reports[0].Movements[0].String())
		assert.Equal(t, "Token: USD Coin ("+mintX+"), Bought: 4.25 USDC", reports[0].Movements[1].String())
	})

	t.Run("unresolvable mint falls back to the sentinel", func(t *testing.T) {
		tx := Transaction{
			AccountKeys: []string{watchedWallet},
			HasMeta:     true,
			PostTokenBalances: []TokenBalance{
				{AccountIndex: 1, Owner: watchedWallet, Mint: mintX, Amount: decimal.NewFromInt(3)},
			},
		}

		fetcher := &fetcherStub{txs: map[string]Transaction{"sig": tx}}
		notifier := &notifierStub{}

		svc := New(watchedWallet, fetcher, &resolverStub{}, notifier, nil)

		require.NoError(t, svc.ProcessSignature(t.Context(), "sig"))

		reports := notifier.all()
		require.Len(t, reports, 1)
		assert.Equal(t, "Token: Unknown ("+mintX+"), Bought: 3 UNKNOWN", reports[0].Movements[0].String())
	})
}

func TestStart(t *testing.T) {
	t.Run("processes streamed signatures", func(t *testing.T) {
		stream := &streamStub{events: make(chan SignatureEvent, 2)}
		fetcher := &fetcherStub{txs: map[string]Transaction{
			"sig-1": soldHalfSOLTransaction(),
		}}
		notifier := &notifierStub{}

		svc := New(watchedWallet, fetcher, &resolverStub{}, notifier, stream)

		require.NoError(t, svc.Start(t.Context()))

		stream.events <- SignatureEvent{Signature: "sig-1"}

		assert.Eventually(t, func() bool {
			return len(notifier.all()) == 1
		}, time.Second, 10*time.Millisecond)

		svc.Close()
	})

	t.Run("cannot be started twice", func(t *testing.T) {
		stream := &streamStub{events: make(chan SignatureEvent)}

		svc := New(watchedWallet, &fetcherStub{}, &resolverStub{}, &notifierStub{}, stream)
		defer svc.Close()

		require.NoError(t, svc.Start(t.Context()))
		assert.ErrorIs(t, svc.Start(t.Context()), ErrServiceAlreadyStarted)
	})
}

func TestHandleSignature(t *testing.T) {
	t.Run("already finished signatures are skipped", func(t *testing.T) {
		fetcher := &fetcherStub{}
		guard := &guardStub{claimErr: ErrAlreadyFinished}

		svc := New(watchedWallet, fetcher, &resolverStub{}, &notifierStub{}, nil, WithIdempotencyGuard(guard))

		svc.handleSignature(t.Context(), "sig-1")

		assert.Zero(t, fetcher.calls)
		assert.Empty(t, guard.processed)
	})

	t.Run("successful processing marks the signature", func(t *testing.T) {
		fetcher := &fetcherStub{txs: map[string]Transaction{
			"sig-1": soldHalfSOLTransaction(),
		}}
		guard := &guardStub{}

		svc := New(watchedWallet, fetcher, &resolverStub{}, &notifierStub{}, nil, WithIdempotencyGuard(guard))

		svc.handleSignature(t.Context(), "sig-1")

		assert.Equal(t, []string{"sig-1"}, guard.claimed)
		assert.Equal(t, []string{"sig-1"}, guard.processed)
	})

	t.Run("processing failure leaves the signature unmarked", func(t *testing.T) {
		guard := &guardStub{}

		svc := New(watchedWallet, &fetcherStub{}, &resolverStub{}, &notifierStub{}, nil, WithIdempotencyGuard(guard))

		svc.handleSignature(t.Context(), "unknown-sig")

		assert.Empty(t, guard.processed)
	})
}
