package service

import (
	"context"
	"time"

	"coin_exchange/internal/domain"
	"coin_exchange/internal/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache key and expiry for the quote snapshot. The TTL is deliberately tiny:
// the cache only absorbs the ~1 req/s fan-out of streaming clients, the store
// stays authoritative.
const (
	quoteCacheKey = "coins"
	quoteCacheTTL = time.Second
)

// QuoteCache is the slice of the cache the price feed needs. The production
// implementation is Redis; tests substitute an in-memory fake.
type QuoteCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisQuoteCache adapts a redis client to QuoteCache.
type RedisQuoteCache struct {
	Client *redis.Client
}

var _ QuoteCache = RedisQuoteCache{}

func (c RedisQuoteCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return utils.GetCache(ctx, c.Client, key, dest)
}

func (c RedisQuoteCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return utils.SetCache(ctx, c.Client, key, value, ttl)
}

func (c RedisQuoteCache) Delete(ctx context.Context, key string) error {
	return utils.DeleteCache(ctx, c.Client, key)
}

// PriceFeed serves current coin prices for the streaming quote endpoint from
// a short-lived cached snapshot of the whole coin table.
type PriceFeed struct {
	db    *gorm.DB
	cache QuoteCache
}

// NewPriceFeed creates a PriceFeed backed by the given store and cache.
func NewPriceFeed(db *gorm.DB, cache QuoteCache) *PriceFeed {
	return &PriceFeed{db: db, cache: cache}
}

// GetPrice returns the current quote for one coin. On a cache miss the whole
// coin list is loaded from the store and cached for a second.
func (f *PriceFeed) GetPrice(ctx context.Context, coinID uint) (*domain.Coin, error) {
	var coins []domain.Coin
	found, err := f.cache.Get(ctx, quoteCacheKey, &coins)
	if err != nil || !found {
		// Miss, or cache unreachable: fall back to the authoritative store.
		if err := f.db.WithContext(ctx).Find(&coins).Error; err != nil {
			return nil, err
		}
		_ = f.cache.Set(ctx, quoteCacheKey, coins, quoteCacheTTL)
	}
	for i := range coins {
		if coins[i].ID == coinID {
			return &coins[i], nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "Coin Was Not Found!")
}
