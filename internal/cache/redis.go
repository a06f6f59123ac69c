package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

const (
	keyPrefix = "coupon_code:"
	genPrefix = "coupon_gen:"
)

var errStaleGeneration = errors.New("coupon cache generation moved")

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisCouponCache shares the code lookup cache between instances. Redis
// errors are logged and treated as misses.
type RedisCouponCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCouponCache(client *redis.Client, ttl time.Duration) *RedisCouponCache {
	return &RedisCouponCache{client: client, ttl: ttl}
}

func (c *RedisCouponCache) Get(ctx context.Context, code string) (*models.Coupon, uint64, bool) {
	vals, err := c.client.MGet(ctx, keyPrefix+code, genPrefix+code).Result()
	if err != nil {
		log.Printf("redis mget %s: %v", code, err)
		return nil, 0, false
	}

	var gen uint64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseUint(s, 10, 64); err != nil {
			log.Printf("redis generation %s: %v", code, err)
			return nil, 0, false
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var coupon models.Coupon
	if err := json.Unmarshal([]byte(raw), &coupon); err != nil {
		log.Printf("redis decode %s: %v", code, err)
		return nil, gen, false
	}
	return &coupon, gen, true
}

// Set writes under WATCH on the generation key, so an Invalidate from any
// instance between Get and Set aborts the write.
func (c *RedisCouponCache) Set(ctx context.Context, code string, coupon *models.Coupon, gen uint64) {
	if coupon == nil || c.ttl <= 0 {
		return
	}
	val, err := json.Marshal(coupon)
	if err != nil {
		log.Printf("redis encode %s: %v", code, err)
		return
	}

	genKey := genPrefix + code
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyPrefix+code, val, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
	default:
		log.Printf("redis set %s: %v", code, err)
	}
}

func (c *RedisCouponCache) Invalidate(ctx context.Context, codes ...string) {
	if len(codes) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, code := range codes {
			pipe.Incr(ctx, genPrefix+code)
			pipe.Del(ctx, keyPrefix+code)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("redis invalidate %v: %v", codes, err)
	}
}

func (c *RedisCouponCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
