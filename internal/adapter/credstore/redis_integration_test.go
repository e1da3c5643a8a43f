package credstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/config"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not construct docker pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start Redis resource")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cfg := config.RedisConfig{Address: resource.GetHostPort("6379/tcp")}
	var client *redis.Client
	require.NoError(t, pool.Retry(func() error {
		var errRetry error
		client, errRetry = NewRedisClient(cfg, logger.NewNop())
		return errRetry
	}))
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	key := fmt.Sprintf("board:credential:%s", t.Name())
	s := NewRedisStore(client, key, logger.NewNop())

	tok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "abc"))
	tok, err = NewRedisStore(client, key, logger.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear(ctx))
	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
