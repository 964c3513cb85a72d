package geocode

import (
	"context"
	"strings"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Memoized wraps a Client with an in-process cache keyed on the normalized
// input string. Entries never expire and are never evicted; the cache lives
// exactly as long as the process. Unmatched results are cached too, so a
// given input always maps to the same output without a second API call.
type Memoized struct {
	inner Client
	cache *cache.Cache
}

// NewMemoized wraps inner with process-lifetime memoization.
func NewMemoized(inner Client) *Memoized {
	return &Memoized{
		inner: inner,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// cacheKey normalizes an input string the same way regardless of case or
// surrounding whitespace.
func cacheKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Geocode implements Client. Errors are not cached, so a transient network
// failure for one input does not poison later lookups of the same input.
func (m *Memoized) Geocode(ctx context.Context, address string) (*Result, error) {
	key := cacheKey(address)

	if v, found := m.cache.Get(key); found {
		r := v.(*Result)
		zap.L().Debug("geocode cache hit", zap.String("key", key), zap.Bool("matched", r.Matched))
		return r, nil
	}

	result, err := m.inner.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	m.cache.Set(key, result, cache.NoExpiration)
	return result, nil
}

// Len reports the number of memoized entries.
func (m *Memoized) Len() int {
	return m.cache.ItemCount()
}
