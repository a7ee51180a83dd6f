package redis

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelex/snipebot/internal/domain"
)

// CachedMarket decorates a market-data provider with a short-TTL redis price
// cache. Only Price is cached: the evaluator re-reads every open mint each
// sweep and entry paths may hit the same mint from several feeds within
// seconds. All other calls pass straight through. Cache failures fall back
// to the oracle; the cache can only make things faster, never wrong for
// longer than the TTL.
type CachedMarket struct {
	domain.MarketData
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedMarket wraps next with a price cache of the given TTL.
func NewCachedMarket(c *Client, next domain.MarketData, ttl time.Duration, logger *slog.Logger) *CachedMarket {
	return &CachedMarket{
		MarketData: next,
		rdb:        c.Underlying(),
		ttl:        ttl,
		logger:     logger.With(slog.String("component", "price_cache")),
	}
}

func priceKey(mint string) string {
	return "snipebot:price:" + mint
}

// Price returns the cached quote when fresh, otherwise asks the oracle and
// stores the result.
func (m *CachedMarket) Price(ctx context.Context, mint string) (float64, error) {
	if v, err := m.rdb.Get(ctx, priceKey(mint)).Result(); err == nil {
		if price, perr := strconv.ParseFloat(v, 64); perr == nil {
			return price, nil
		}
	}

	price, err := m.MarketData.Price(ctx, mint)
	if err != nil {
		return 0, err
	}
	set := m.rdb.Set(ctx, priceKey(mint), strconv.FormatFloat(price, 'f', -1, 64), m.ttl)
	if serr := set.Err(); serr != nil {
		m.logger.Debug("price cache write failed", slog.String("error", serr.Error()))
	}
	return price, nil
}

var _ domain.MarketData = (*CachedMarket)(nil)
