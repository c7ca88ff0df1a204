package testutil

// Package testutil provides shared helpers for integration tests. Tests that
// need real infrastructure (Redis, Postgres) skip themselves when it is not
// reachable, so the unit suite stays runnable anywhere.

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/probeops/console/internal/migrate"
)

// TestingTB is the subset of testing.TB the helpers need. Declared locally
// so helpers stay usable from benchmarks and fuzz targets.
type TestingTB interface {
	Helper()
	Fatal(args ...any)
	Logf(format string, args ...any)
	Skipf(format string, args ...any)
	Cleanup(func())
}

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns default test database configuration.
// Defaults to port 55432 (local test DB from docker-compose test profile).
// CI environments should set TEST_DB_PORT=5432 explicitly.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "probeops"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "probeops"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "probeops"),
	}
}

// SetupTestDB opens the test database, skipping the test when it is not
// reachable, and applies the production migrations.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	cfg := DefaultTestDBConfig()
	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		cfg.User, cfg.Password, hostPort, cfg.DBName)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("Failed to open database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		t.Skipf("Postgres not available at %s: %v", hostPort, pingErr)
		return nil
	}

	if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
		t.Fatal("Failed to run migrations:", migrateErr)
	}

	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("warning: failed to close test db: %v", cerr)
		}
	})

	return db
}

// CleanupAuditEvents truncates the audit table between tests.
func CleanupAuditEvents(t TestingTB, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec(`TRUNCATE auth_audit_events RESTART IDENTITY`); err != nil {
		t.Fatal("Failed to truncate auth_audit_events:", err)
	}
}

// SetupTestRedis connects to the test Redis instance, skipping the test when
// none is reachable. The database is flushed before handing it over.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := getEnvOrDefault("TEST_REDIS_ADDR", "localhost:6379")
	client := redis.NewClient(&redis.Options{Addr: addr, DB: testRedisDB()})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
		return nil
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatal("Failed to flush test redis db:", err)
	}

	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close test redis client: %v", cerr)
		}
	})

	return client
}

// testRedisDB picks a non-default DB so test flushes never touch real data.
func testRedisDB() int {
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		var db int
		if _, err := fmt.Sscanf(v, "%d", &db); err == nil && db >= 0 {
			return db
		}
	}
	return 9
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
