package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/sweetsavoury/battletally/internal/domain"
	"github.com/sweetsavoury/battletally/internal/observability"
)

// KV is the slice of the store the classification cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// ProductAPI is the remote catalog lookup, satisfied by shopify.Client.
type ProductAPI interface {
	ProductSide(ctx context.Context, shopDomain string, productID int64) (domain.Side, error)
}

// Classifier resolves a product to its battle side through three layers:
// an in-process LRU, a store-backed cache entry with a TTL, and finally the
// commerce API. Only resolved sides are cached, so a product the merchant has
// not tagged yet is re-checked on every event until it resolves.
type Classifier struct {
	lru     *expirable.LRU[string, domain.Side]
	kv      KV
	api     ProductAPI
	ttl     time.Duration
	logger  *zap.Logger
	metrics observability.Metrics
}

func New(kv KV, api ProductAPI, size int, ttl time.Duration, logger *zap.Logger, metrics observability.Metrics) *Classifier {
	if size <= 0 {
		size = 1
	}
	return &Classifier{
		lru:     expirable.NewLRU[string, domain.Side](size, nil, ttl),
		kv:      kv,
		api:     api,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func cacheKey(shopDomain string, productID int64) string {
	return fmt.Sprintf("battle:side:%s:%d", shopDomain, productID)
}

// Classify returns the product's side, or SideNone when neither the metafield
// nor the tags resolve it. Remote lookup errors propagate so the caller can
// abort the whole event.
func (c *Classifier) Classify(ctx context.Context, shopDomain string, productID int64) (domain.Side, error) {
	key := cacheKey(shopDomain, productID)

	start := time.Now()
	if side, ok := c.lru.Get(key); ok {
		c.metrics.IncCacheHit()
		c.metrics.ObserveClassify("lru", msSince(start))
		return side, nil
	}

	if raw, ok, err := c.kv.Get(ctx, key); err != nil {
		return domain.SideNone, fmt.Errorf("classification cache read: %w", err)
	} else if ok {
		if side := domain.ParseSide(raw); side != domain.SideNone {
			c.lru.Add(key, side)
			c.metrics.IncCacheHit()
			c.metrics.ObserveClassify("store", msSince(start))
			return side, nil
		}
		// Unparseable cache entry, fall through to the API.
		c.logger.Warn("dropping bad classification cache entry",
			zap.String("key", key),
			zap.String("value", raw),
		)
	}
	c.metrics.IncCacheMiss()

	side, err := c.api.ProductSide(ctx, shopDomain, productID)
	if err != nil {
		return domain.SideNone, err
	}
	c.metrics.ObserveClassify("api", msSince(start))

	if side == domain.SideNone {
		c.logger.Info("product has no battle side",
			zap.String("shop", shopDomain),
			zap.Int64("product_id", productID),
		)
		return domain.SideNone, nil
	}

	c.lru.Add(key, side)
	if err := c.kv.SetTTL(ctx, key, string(side), c.ttl); err != nil {
		// The cache is a disposable projection; losing a write only costs a
		// re-classification later.
		c.logger.Warn("classification cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return side, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
