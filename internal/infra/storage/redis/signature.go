package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/redis/go-redis/v9"
)

const (
	// signatureKeyPrefix namespaces all idempotency entries for processed
	// transaction signatures.
	signatureKeyPrefix = "txreport"

	// signatureDone is the terminal value marking a signature as fully
	// processed.
	signatureDone = "done"
)

func signatureIdempotencyKey(signature string) string {
	return fmt.Sprintf("%s:idempotency:%s", signatureKeyPrefix, signature)
}

// ClaimSignature attempts to take exclusive rights to process a transaction
// signature.
//
// If the key is already marked as done it returns ErrAlreadyFinished; if it
// exists but is not done, another worker holds the claim and it returns
// ErrStillInProgress. Otherwise an empty value is reserved with the given TTL
// so a crashed worker releases the signature eventually.
func (c *client) ClaimSignature(ctx context.Context, signature string, ttl time.Duration) error {
	key := signatureIdempotencyKey(signature)

	val, err := c.conn.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if val == signatureDone {
		return txreport.ErrAlreadyFinished
	}

	ok, err := c.conn.SetNX(ctx, key, "", ttl).Result()
	if err != nil {
		return err
	}

	if !ok {
		return txreport.ErrStillInProgress
	}

	return nil
}

// MarkSignatureProcessed finalizes a claim by writing the done marker with no
// expiration, so the signature is never reported twice.
func (c *client) MarkSignatureProcessed(ctx context.Context, signature string) error {
	key := signatureIdempotencyKey(signature)
	return c.conn.Set(ctx, key, signatureDone, 0).Err()
}

var _ txreport.IdempotencyGuard = (*client)(nil)
