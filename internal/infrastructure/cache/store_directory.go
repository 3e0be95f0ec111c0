package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UnknownSellerName is returned when a store's display name cannot be
// resolved. Lookups degrade to this rather than failing the request.
const UnknownSellerName = "Unknown Seller"

// StoreDirectory resolves store display names
type StoreDirectory interface {
	// GetStoreName returns the display name for a store, or
	// UnknownSellerName when the store is not known
	GetStoreName(ctx context.Context, storeID uuid.UUID) string

	// SetStoreName registers or refreshes a store's display name
	SetStoreName(ctx context.Context, storeID uuid.UUID, name string) error
}

// NopStoreDirectory is the fallback when no Redis instance is
// configured. Every lookup resolves to UnknownSellerName.
type NopStoreDirectory struct{}

// GetStoreName always returns UnknownSellerName
func (NopStoreDirectory) GetStoreName(ctx context.Context, storeID uuid.UUID) string {
	return UnknownSellerName
}

// SetStoreName discards the name
func (NopStoreDirectory) SetStoreName(ctx context.Context, storeID uuid.UUID, name string) error {
	return nil
}

var _ StoreDirectory = NopStoreDirectory{}

// RedisStoreDirectory implements StoreDirectory backed by Redis.
// Store profiles live in a separate seller-management system; this cache
// holds the names that fulfillment and settlement views need.
type RedisStoreDirectory struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisDirectoryConfig holds Redis connection configuration
type RedisDirectoryConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStoreDirectory creates a new Redis-backed store directory
func NewRedisStoreDirectory(cfg RedisDirectoryConfig, logger *zap.Logger) (*RedisStoreDirectory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStoreDirectory{
		client:    client,
		keyPrefix: "store:name:",
		ttl:       24 * time.Hour,
		logger:    logger,
	}, nil
}

// NewRedisStoreDirectoryWithClient creates a directory with an existing
// Redis client. Useful for testing or when sharing a client.
func NewRedisStoreDirectoryWithClient(client *redis.Client, logger *zap.Logger) *RedisStoreDirectory {
	return &RedisStoreDirectory{
		client:    client,
		keyPrefix: "store:name:",
		ttl:       24 * time.Hour,
		logger:    logger,
	}
}

// GetStoreName returns the display name for a store. A miss or a Redis
// error both degrade to UnknownSellerName.
func (d *RedisStoreDirectory) GetStoreName(ctx context.Context, storeID uuid.UUID) string {
	name, err := d.client.Get(ctx, d.keyPrefix+storeID.String()).Result()
	if err != nil {
		if err != redis.Nil {
			d.logger.Warn("store directory lookup failed",
				zap.String("store_id", storeID.String()),
				zap.Error(err),
			)
		}
		return UnknownSellerName
	}
	return name
}

// SetStoreName registers or refreshes a store's display name
func (d *RedisStoreDirectory) SetStoreName(ctx context.Context, storeID uuid.UUID, name string) error {
	if err := d.client.Set(ctx, d.keyPrefix+storeID.String(), name, d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store seller name: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (d *RedisStoreDirectory) Close() error {
	return d.client.Close()
}

// Ensure RedisStoreDirectory implements StoreDirectory
var _ StoreDirectory = (*RedisStoreDirectory)(nil)
