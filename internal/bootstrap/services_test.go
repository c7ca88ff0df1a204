package bootstrap

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probeops/console/config"
)

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Backend.APIURL = "http://localhost:5000"
	cfg.Redis.URI = "localhost:6379"
	cfg.Sanitize()
	return cfg
}

func TestNewServices_WiresContainer(t *testing.T) {
	// Constructing clients does not dial, so no infrastructure is needed.
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	container, err := NewServices(&ServiceDeps{
		Config:      testConfig(),
		RedisClient: client,
	})
	require.NoError(t, err)

	assert.NotNil(t, container.Sessions)
	assert.NotNil(t, container.RateLimits)
	assert.NotNil(t, container.APIKeys)
	assert.NotNil(t, container.Probes)
	assert.Nil(t, container.Audit, "audit repo requires a database")
	assert.Nil(t, container.Metrics, "metrics are off by default")
}

func TestNewServices_RequiresConfigAndRedis(t *testing.T) {
	_, err := NewServices(nil)
	assert.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testConfig()})
	assert.Error(t, err)
}

func TestNewServices_RejectsEmptyBackendURL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	cfg := testConfig()
	cfg.Backend.APIURL = ""

	_, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: client})
	assert.Error(t, err)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Addr = ":9191"

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	container, err := NewServices(&ServiceDeps{Config: cfg, RedisClient: client})
	require.NoError(t, err)

	server := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg,
		Services: container,
		Version:  "test",
	})
	require.NotNil(t, server)
	assert.Equal(t, ":9191", server.Addr)
	assert.NotNil(t, server.Handler)

	assert.Nil(t, NewHTTPServer(nil))
}

func TestShutdownTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, shutdownTimeout(nil))

	cfg := testConfig()
	cfg.HTTP.ShutdownTimeout = 3 * time.Second
	assert.Equal(t, 3*time.Second, shutdownTimeout(cfg))
}
