package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solwatch/solwatch/internal/tokenmeta"

	"github.com/redis/go-redis/v9"
)

// tokenMetadataKeyPrefix namespaces the cached token metadata entries.
const tokenMetadataKeyPrefix = "tokenmeta"

func tokenMetadataKey(mint string) string {
	return fmt.Sprintf("%s:metadata:%s", tokenMetadataKeyPrefix, mint)
}

// cacheEntry is the Redis representation of a tokenmeta cache entry.
type cacheEntry struct {
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Decimals  uint8     `json:"decimals"`
	State     string    `json:"state"`
	FetchedAt time.Time `json:"fetched_at"`
}

func toCacheEntry(entry tokenmeta.Entry) cacheEntry {
	return cacheEntry{
		Name:      entry.Metadata.Name,
		Symbol:    entry.Metadata.Symbol,
		Decimals:  entry.Metadata.Decimals,
		State:     string(entry.State),
		FetchedAt: entry.FetchedAt,
	}
}

func (e cacheEntry) toEntry() tokenmeta.Entry {
	return tokenmeta.Entry{
		Metadata: tokenmeta.Metadata{
			Name:     e.Name,
			Symbol:   e.Symbol,
			Decimals: e.Decimals,
		},
		State:     tokenmeta.EntryState(e.State),
		FetchedAt: e.FetchedAt,
	}
}

// Get implements tokenmeta.Cache. A missing or unparsable key is reported as
// a cache miss so the resolver falls back to the chain.
func (c *client) Get(ctx context.Context, mint string) (tokenmeta.Entry, bool, error) {
	raw, err := c.conn.Get(ctx, tokenMetadataKey(mint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return tokenmeta.Entry{}, false, nil
		}
		return tokenmeta.Entry{}, false, err
	}

	var stored cacheEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return tokenmeta.Entry{}, false, nil
	}

	return stored.toEntry(), true, nil
}

// Put implements tokenmeta.Cache. Entries are stored without expiration; the
// resolver's own retry window governs when transient entries are re-fetched.
func (c *client) Put(ctx context.Context, mint string, entry tokenmeta.Entry) error {
	raw, err := json.Marshal(toCacheEntry(entry))
	if err != nil {
		return err
	}

	return c.conn.Set(ctx, tokenMetadataKey(mint), raw, 0).Err()
}

var _ tokenmeta.Cache = (*client)(nil)
