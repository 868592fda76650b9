package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"video-tracking-system/internal/models"

	"github.com/go-redis/redis/v8"
)

// VideoCache caches immutable video metadata. Counters are never cached:
// they change on every report and must be read from the store.
type VideoCache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

func NewVideoCache(addr, password string, db int, ttl time.Duration) (*VideoCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &VideoCache{
		client:  client,
		enabled: true,
		ttl:     ttl,
	}, nil
}

// NewDisabled returns a cache that always misses.
func NewDisabled() *VideoCache {
	return &VideoCache{enabled: false}
}

func videoKey(id string) string {
	return fmt.Sprintf("video:meta:%s", id)
}

func (c *VideoCache) GetVideo(ctx context.Context, id string) (*models.VideoMetadata, error) {
	if !c.enabled {
		return nil, nil
	}

	data, err := c.client.Get(ctx, videoKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var meta models.VideoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *VideoCache) SetVideo(ctx context.Context, meta *models.VideoMetadata) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, videoKey(meta.ID), data, c.ttl).Err()
}

func (c *VideoCache) Close() error {
	if !c.enabled {
		return nil
	}
	return c.client.Close()
}
