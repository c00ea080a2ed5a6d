package txreport

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStillInProgress indicates the signature is currently being processed
	// by another worker.
	ErrStillInProgress = errors.New("signature processing still in progress")

	// ErrAlreadyFinished indicates the signature was already fully processed.
	ErrAlreadyFinished = errors.New("signature processing already finished")
)

// IdempotencyGuard coordinates workers so each transaction signature is
// processed at most once, even when the subscription stream redelivers it or
// two notifications race. Durable implementations (e.g. Redis) also survive
// restarts.
type IdempotencyGuard interface {
	// ClaimSignature attempts to take exclusive rights to process a signature.
	// The claim expires after ttl so a crashed worker does not block the
	// signature forever.
	//
	// Returns ErrStillInProgress if another worker holds the claim,
	// ErrAlreadyFinished if the signature was already processed, or any other
	// error for guard-level failures.
	ClaimSignature(ctx context.Context, signature string, ttl time.Duration) error

	// MarkSignatureProcessed finalizes a claim after successful processing,
	// preventing the signature from ever being claimed again.
	MarkSignatureProcessed(ctx context.Context, signature string) error
}

// nopIdempotencyGuard treats every signature as unseen. Suitable when
// duplicate reports are acceptable or a single process is running.
type nopIdempotencyGuard struct{}

var _ IdempotencyGuard = (*nopIdempotencyGuard)(nil)

func (nopIdempotencyGuard) ClaimSignature(context.Context, string, time.Duration) error {
	return nil
}

func (nopIdempotencyGuard) MarkSignatureProcessed(context.Context, string) error {
	return nil
}
