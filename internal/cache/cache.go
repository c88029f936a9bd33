package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// Cache provides read-through caching for the public discovery surface
// using Redis. Only published content is ever cached; owner and admin
// views always read the document store directly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new cache instance and verifies the connection.
func NewCache(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.CacheTTL}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Podcast Cache Operations

// SetPodcast caches a published podcast document.
func (c *Cache) SetPodcast(ctx context.Context, podcast *models.Podcast) error {
	data, err := json.Marshal(podcast)
	if err != nil {
		return fmt.Errorf("failed to marshal podcast: %w", err)
	}

	key := fmt.Sprintf("podcast:%s", podcast.ID)
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// GetPodcast retrieves a published podcast from cache. A nil result with
// nil error is a cache miss.
func (c *Cache) GetPodcast(ctx context.Context, podcastID string) (*models.Podcast, error) {
	key := fmt.Sprintf("podcast:%s", podcastID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get podcast from cache: %w", err)
	}

	var podcast models.Podcast
	if err := json.Unmarshal(data, &podcast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal podcast: %w", err)
	}

	return &podcast, nil
}

// DeletePodcast removes a podcast from cache. Called on every mutation so
// stale published views never outlive a status change.
func (c *Cache) DeletePodcast(ctx context.Context, podcastID string) error {
	key := fmt.Sprintf("podcast:%s", podcastID)
	return c.client.Del(ctx, key).Err()
}

// Profile Cache Operations

// SetProfile caches a public creator profile. Only the trimmed public
// view is ever written here; the full account document stays out of Redis.
func (c *Cache) SetProfile(ctx context.Context, profile *models.CreatorProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	key := fmt.Sprintf("profile:%s", profile.ID)
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// GetProfile retrieves a public creator profile from cache.
func (c *Cache) GetProfile(ctx context.Context, accountID string) (*models.CreatorProfile, error) {
	key := fmt.Sprintf("profile:%s", accountID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get profile from cache: %w", err)
	}

	var profile models.CreatorProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// DeleteProfile removes a creator profile from cache.
func (c *Cache) DeleteProfile(ctx context.Context, accountID string) error {
	key := fmt.Sprintf("profile:%s", accountID)
	return c.client.Del(ctx, key).Err()
}
