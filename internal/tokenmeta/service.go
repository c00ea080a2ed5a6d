package tokenmeta

import (
	"context"
	"time"

	"github.com/solwatch/solwatch/internal/pkg/logger"
	"github.com/solwatch/solwatch/internal/pkg/solana"
)

// mintDecimalsOffset is the byte position of the decimals field inside an SPL
// mint account.
const mintDecimalsOffset = 44

// defaultTransientRetryWindow is how long a transient failure entry suppresses
// re-fetching before the resolver tries again.
const defaultTransientRetryWindow = 30 * time.Second

// AccountStore supplies raw account bytes for an address. It is implemented by
// the Solana RPC client; any timeout or retry policy lives there, not here.
type AccountStore interface {
	// GetAccountData returns the raw bytes stored at the given base58 address.
	// A nil or empty slice with a nil error means the account does not exist.
	GetAccountData(ctx context.Context, address string) ([]byte, error)
}

// Service resolves mints into metadata.
type Service interface {
	// Resolve returns the metadata for the given mint. It never fails: every
	// error path degrades to the sentinel value. Results, including the
	// sentinel, are cached so repeated calls for the same mint perform no I/O.
	Resolve(ctx context.Context, mint string) Metadata
}

type service struct {
	accounts AccountStore
	cache    Cache

	transientRetryWindow time.Duration
	now                  func() time.Time
}

var _ Service = (*service)(nil)

type config struct {
	transientRetryWindow time.Duration
}

// Option configures the resolver.
type Option func(*config)

// WithTransientRetryWindow overrides how long a transient failure is cached
// before the mint becomes eligible for re-fetching.
func WithTransientRetryWindow(d time.Duration) Option {
	return func(c *config) {
		c.transientRetryWindow = d
	}
}

// New creates a metadata resolver reading accounts from the given store and
// memoizing into the given cache.
func New(accounts AccountStore, cache Cache, opts ...Option) *service {
	cfg := config{
		transientRetryWindow: defaultTransientRetryWindow,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		accounts:             accounts,
		cache:                cache,
		transientRetryWindow: cfg.transientRetryWindow,
		now:                  time.Now,
	}
}

// Resolve implements Service.
func (s *service) Resolve(ctx context.Context, mint string) Metadata {
	entry, found, err := s.cache.Get(ctx, mint)
	if err != nil {
		logger.Warn(ctx, "metadata cache lookup failed, resolving from chain",
			"mint", mint,
			"error", err,
		)
	} else if found && !s.eligibleForRetry(entry) {
		return entry.Metadata
	}

	entry = s.resolveFromChain(ctx, mint)

	if err := s.cache.Put(ctx, mint, entry); err != nil {
		logger.Warn(ctx, "failed to cache resolved metadata",
			"mint", mint,
			"error", err,
		)
	}

	return entry.Metadata
}

// eligibleForRetry reports whether a cached entry should be ignored and the
// mint resolved again. Resolved and absent entries are final; transient
// failures become retryable once the grace window has passed.
func (s *service) eligibleForRetry(entry Entry) bool {
	if entry.Final() {
		return false
	}
	return s.now().Sub(entry.FetchedAt) >= s.transientRetryWindow
}

// resolveFromChain performs the full two-account lookup: the Metaplex metadata
// account at the mint's derived address, then the mint account itself for the
// decimals byte. Failures never propagate; they collapse into an absent or
// transient sentinel entry.
func (s *service) resolveFromChain(ctx context.Context, mint string) Entry {
	mintKey, err := solana.PubkeyFromBase58(mint)
	if err != nil {
		logger.Warn(ctx, "mint is not a valid public key", "mint", mint, "error", err)
		return s.entry(EntryAbsent, Sentinel)
	}

	metadataAddress, err := solana.DeriveMetadataAddress(mintKey)
	if err != nil {
		logger.Warn(ctx, "metadata address derivation failed", "mint", mint, "error", err)
		return s.entry(EntryAbsent, Sentinel)
	}

	raw, err := s.accounts.GetAccountData(ctx, metadataAddress.String())
	if err != nil {
		logger.Warn(ctx, "metadata account fetch failed",
			"mint", mint,
			"metadata.address", metadataAddress.String(),
			"error", err,
		)
		return s.entry(EntryTransient, Sentinel)
	}
	if len(raw) == 0 {
		return s.entry(EntryAbsent, Sentinel)
	}

	name, symbol, err := DecodeMetadata(raw)
	if err != nil {
		logger.Warn(ctx, "metadata account is malformed",
			"mint", mint,
			"metadata.address", metadataAddress.String(),
			"error", err,
		)
		return s.entry(EntryAbsent, Sentinel)
	}

	return s.entry(EntryResolved, Metadata{
		Name:     name,
		Symbol:   symbol,
		Decimals: s.fetchDecimals(ctx, mint),
	})
}

// fetchDecimals reads the decimals byte from the mint account. A missing or
// short account defaults to zero decimal places.
func (s *service) fetchDecimals(ctx context.Context, mint string) uint8 {
	raw, err := s.accounts.GetAccountData(ctx, mint)
	if err != nil {
		logger.Warn(ctx, "mint account fetch failed, defaulting decimals to 0",
			"mint", mint,
			"error", err,
		)
		return 0
	}

	if len(raw) <= mintDecimalsOffset {
		return 0
	}

	return raw[mintDecimalsOffset]
}

func (s *service) entry(state EntryState, metadata Metadata) Entry {
	return Entry{
		Metadata:  metadata,
		State:     state,
		FetchedAt: s.now(),
	}
}
