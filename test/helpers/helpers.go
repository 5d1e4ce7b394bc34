// Package helpers provides shared setup for integration tests.
package helpers

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
)

// SetupTestDB connects to the test database and ensures the schema exists.
// Connection details come from TEST_DB_* environment variables with local
// defaults.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:               envOr("TEST_DB_HOST", "localhost"),
			Port:               envIntOr("TEST_DB_PORT", 5432),
			Name:               envOr("TEST_DB_NAME", "football_engine_test"),
			User:               envOr("TEST_DB_USER", "test"),
			Password:           envOr("TEST_DB_PASSWORD", "test"),
			SSLMode:            "disable",
			MaxConnections:     5,
			MaxIdleConnections: 2,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	require.NoError(t, err, "failed to initialize test database")

	return db
}

// TeardownTestDB truncates the engine tables and closes the pool.
func TeardownTestDB(t *testing.T, db *database.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{"calibration_curves", "prediction_log", "settled_tickets"}
	for _, table := range tables {
		_, err := db.GetPool().Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err, "failed to truncate %s", table)
	}

	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
