package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/config"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the credential under a single key so several client
// processes of one profile share a session.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *logger.Logger
}

// NewRedisClient connects and pings.
func NewRedisClient(cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", cfg.Address), zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

func NewRedisStore(client *redis.Client, key string, log *logger.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, logger: log.Named("RedisCredentialStore")}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		s.logger.Error("Redis Get operation failed", zap.String("key", s.key), zap.Error(err))
		return "", fmt.Errorf("RedisStore.Load for key '%s': %w", s.key, err)
	}
	return val, nil
}

// Save stores the token without expiry; the server decides when it dies.
func (s *RedisStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		s.logger.Error("Redis Set operation failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("RedisStore.Save for key '%s': %w", s.key, err)
	}
	s.logger.Debug("Redis Set operation successful", zap.String("key", s.key))
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.logger.Error("Redis Del operation failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("RedisStore.Clear for key '%s': %w", s.key, err)
	}
	return nil
}
