package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// Returns the remaining stock, or -1 when the reservation is denied.
var reserveStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
if current >= quantity then
	return redis.call('DECRBY', key, quantity)
end

return -1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetStock(ctx context.Context, productID string) (int, error) {
	stock, err := r.client.Get(ctx, stockKeyPrefix+productID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get stock: %w", err)
	}
	return stock, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, productID string, quantity int) error {
	return r.client.Set(ctx, stockKeyPrefix+productID, quantity, 0).Err()
}

func (r *RedisAdapter) ReserveStock(ctx context.Context, productID string, quantity int) (domain.ReservationOutcome, error) {
	key := stockKeyPrefix + productID

	remaining, err := reserveStockScript.Run(ctx, r.client, []string{key}, quantity).Int()
	if err != nil {
		return domain.ReservationOutcome{}, err
	}
	if remaining < 0 {
		return domain.ReservationOutcome{}, nil
	}
	return domain.ReservationOutcome{Granted: true, Remaining: remaining}, nil
}

// ReleaseStock relies on INCRBY treating a missing key as zero.
func (r *RedisAdapter) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	return r.client.IncrBy(ctx, stockKeyPrefix+productID, int64(quantity)).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

var (
	_ port.StockRepository  = (*RedisAdapter)(nil)
	_ port.IdempotencyStore = (*RedisAdapter)(nil)
)
