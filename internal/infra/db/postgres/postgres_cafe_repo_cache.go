package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
	"cafe-passport/internal/infra/metrics"
	red "cafe-passport/internal/infra/redis"
)

var _ repository.CafeRepository = (*cafeRepoCacheDecorator)(nil)

// cafeRepoCacheDecorator caches the cafe directory in Redis. The directory
// changes rarely and is read on every discovery request, so a short TTL plus
// write-through invalidation is enough.
type cafeRepoCacheDecorator struct {
	inner repository.CafeRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCafeRepoCacheDecorator(inner repository.CafeRepository, cache red.RedisClient) repository.CafeRepository {
	return &cafeRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   5 * time.Minute,
	}
}

const cafeListKey = "cafes:all"

func cafeKey(id string) string { return fmt.Sprintf("cafe:id:%s", id) }

func (d *cafeRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Cafe) error {
	_ = d.cache.Del(ctx, cafeKey(c.ID), cafeListKey)
	return d.inner.Save(ctx, tx, c)
}

func (d *cafeRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Cafe, error) {
	// Inside a transaction the read must see the tx's own writes.
	if inTx(tx) {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := cafeKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("cafe", "hit")
		var cafe model.Cafe
		if json.Unmarshal([]byte(val), &cafe) == nil {
			return &cafe, nil
		}
	}

	metrics.IncCacheRequest("cafe", "miss")
	cafe, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(cafe); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return cafe, nil
}

func (d *cafeRepoCacheDecorator) List(ctx context.Context, tx repository.Tx) ([]*model.Cafe, error) {
	val, err := d.cache.Get(ctx, cafeListKey)
	if err == nil {
		metrics.IncCacheRequest("cafe_list", "hit")
		var cafes []*model.Cafe
		if json.Unmarshal([]byte(val), &cafes) == nil {
			return cafes, nil
		}
	}

	metrics.IncCacheRequest("cafe_list", "miss")
	cafes, err := d.inner.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(cafes); err == nil {
		_ = d.cache.Set(ctx, cafeListKey, bytes, d.ttl)
	}
	return cafes, nil
}

func (d *cafeRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, cafeKey(id), cafeListKey)
	return d.inner.Delete(ctx, tx, id)
}
