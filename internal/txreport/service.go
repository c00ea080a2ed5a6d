// Package txreport turns confirmed transactions of a single watched wallet
// into per-asset movement reports: it derives balance deltas from the
// transaction's pre/post snapshots, resolves each moved token's metadata, and
// emits formatted activity lines.
package txreport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/solwatch/solwatch/internal/pkg/logger"
	"github.com/solwatch/solwatch/internal/tokenmeta"

	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 4
	defaultClaimTTL    = 5 * time.Minute
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrTransactionNotFound indicates the node has no record for the
	// requested signature. Processing of that signature aborts; other in-flight
	// work is unaffected.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrMissingTransactionMeta indicates the transaction exists but lacks the
	// balance snapshot section, so no deltas can be derived from it.
	ErrMissingTransactionMeta = errors.New("transaction metadata section missing")
)

// MetadataResolver resolves a mint into display metadata. Resolution never
// fails: unknown or unreachable mints come back as a sentinel value.
type MetadataResolver interface {
	Resolve(ctx context.Context, mint string) tokenmeta.Metadata
}

// Service is the transaction processing entrypoint.
type Service interface {
	// ProcessSignature fetches, interprets, and reports a single transaction.
	ProcessSignature(ctx context.Context, signature string) error

	// Start consumes the signature stream until the context is canceled or
	// Close is called, processing each signature on a bounded worker pool.
	Start(ctx context.Context) error

	// Close stops the stream consumption and waits for in-flight work.
	Close()
}

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc func()

	wallet       string
	transactions TransactionFetcher
	metadata     MetadataResolver
	notifier     ActivityNotifier
	stream       SignatureStream

	guard       IdempotencyGuard
	concurrency int
	claimTTL    time.Duration
}

var _ Service = (*service)(nil)

type config struct {
	guard       IdempotencyGuard
	concurrency int
	claimTTL    time.Duration
}

// Option configures the processor.
type Option func(*config)

// WithIdempotencyGuard installs a guard so each signature is processed at most
// once. Default: no guard, duplicates are processed again.
func WithIdempotencyGuard(g IdempotencyGuard) Option {
	return func(c *config) {
		c.guard = g
	}
}

// WithConcurrency bounds how many signatures are processed in parallel.
// Default: 4.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithClaimTTL overrides how long an idempotency claim may be held before a
// crashed worker's signature becomes claimable again. Default: 5 minutes.
func WithClaimTTL(d time.Duration) Option {
	return func(c *config) {
		c.claimTTL = d
	}
}

// New creates a transaction processor for the given watched wallet.
func New(wallet string, tf TransactionFetcher, mr MetadataResolver, an ActivityNotifier, ss SignatureStream, opts ...Option) *service {
	cfg := config{
		guard:       nopIdempotencyGuard{},
		concurrency: defaultConcurrency,
		claimTTL:    defaultClaimTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		wallet:       wallet,
		transactions: tf,
		metadata:     mr,
		notifier:     an,
		stream:       ss,
		guard:        cfg.guard,
		concurrency:  cfg.concurrency,
		claimTTL:     cfg.claimTTL,
	}
}

// ProcessSignature implements Service.
//
// Failures obtaining the transaction itself abort this signature only.
// Failures inside metadata resolution never abort processing: they surface as
// sentinel metadata on the affected movement.
func (s *service) ProcessSignature(ctx context.Context, signature string) error {
	tx, found, err := s.transactions.GetTransaction(ctx, signature)
	if err != nil {
		return fmt.Errorf("fetching transaction %s: %w", signature, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, signature)
	}
	if !tx.HasMeta {
		return fmt.Errorf("%w: %s", ErrMissingTransactionMeta, signature)
	}

	deltas, err := ComputeDeltas(tx, s.wallet)
	if err != nil {
		return fmt.Errorf("computing deltas for %s: %w", signature, err)
	}

	if len(deltas) == 0 {
		logger.Debug(ctx, "transaction caused no balance changes for watched wallet",
			"signature", signature,
			"wallet", s.wallet,
		)
		return nil
	}

	movements := make([]Movement, 0, len(deltas))
	for _, delta := range deltas {
		if delta.Native() {
			movements = append(movements, newNativeMovement(delta.Change))
			continue
		}

		metadata := s.metadata.Resolve(ctx, delta.Mint)
		movements = append(movements, newTokenMovement(delta, metadata))
	}

	return s.notifier.NotifyActivity(ctx, ActivityReport{
		Wallet:    s.wallet,
		Signature: signature,
		Movements: movements,
	})
}

// Start implements Service.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	events, err := s.stream.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	go s.consume(ctx, events, done)

	s.closeFunc = func() {
		cancel()
		<-done
	}
	s.isStarted = true
	return nil
}

// Close implements Service. Safe to call even if the service never started.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// consume drains the signature stream into a bounded worker pool and waits for
// all in-flight work before signalling done.
func (s *service) consume(ctx context.Context, events <-chan SignatureEvent, done chan<- struct{}) {
	defer close(done)

	pool := new(errgroup.Group)
	pool.SetLimit(s.concurrency)

	for event := range events {
		if event.Err != nil {
			logger.Error(ctx, "signature stream delivery failure", "error", event.Err)
			continue
		}

		signature := event.Signature
		pool.Go(func() error {
			s.handleSignature(ctx, signature)
			return nil
		})
	}

	_ = pool.Wait()
}

// handleSignature wraps one signature's processing with the idempotency guard
// and keeps every failure local to that signature.
func (s *service) handleSignature(ctx context.Context, signature string) {
	if err := s.guard.ClaimSignature(ctx, signature, s.claimTTL); err != nil {
		if errors.Is(err, ErrStillInProgress) || errors.Is(err, ErrAlreadyFinished) {
			logger.Debug(ctx, "skipping already handled signature", "signature", signature)
			return
		}

		// Guard-level failures must not stall the pipeline; a duplicate report
		// is preferable to a missing one.
		logger.Warn(ctx, "idempotency claim failed, processing anyway",
			"signature", signature,
			"error", err,
		)
	}

	if err := s.ProcessSignature(ctx, signature); err != nil {
		logger.Error(ctx, "transaction processing failed",
			"signature", signature,
			"error", err,
		)
		return
	}

	if err := s.guard.MarkSignatureProcessed(ctx, signature); err != nil {
		logger.Error(ctx, "error marking signature as processed",
			"signature", signature,
			"error", err,
		)
	}
}
