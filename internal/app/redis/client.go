package redis

import (
	"context"
	"fmt"
	"time"

	"backend/internal/app/config"

	"github.com/go-redis/redis/v8"
)

// Клиент кэша деталей заявок. Горячие GET одной заявки идут из Redis,
// смена статуса инвалидирует запись.

const requestDetailKeyPrefix = "request:detail:"

type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Password:    cfg.Password,
		Username:    cfg.User,
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DB:          0,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot ping redis: %w", err)
	}

	return &Client{cfg: cfg, client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func requestDetailKey(id uint) string {
	return fmt.Sprintf("%s%d", requestDetailKeyPrefix, id)
}

// SetRequestDetail кладёт сериализованный ответ детали заявки с TTL
func (c *Client) SetRequestDetail(ctx context.Context, id uint, payload []byte) error {
	ttl := c.cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return c.client.Set(ctx, requestDetailKey(id), payload, ttl).Err()
}

// GetRequestDetail возвращает закэшированный ответ или redis.Nil
func (c *Client) GetRequestDetail(ctx context.Context, id uint) ([]byte, error) {
	return c.client.Get(ctx, requestDetailKey(id)).Bytes()
}

// InvalidateRequestDetail сбрасывает кэш после мутации заявки
func (c *Client) InvalidateRequestDetail(ctx context.Context, id uint) error {
	return c.client.Del(ctx, requestDetailKey(id)).Err()
}
