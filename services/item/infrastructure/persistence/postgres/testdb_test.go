package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ghuser/stockhub/pkg/logger"
	"github.com/ghuser/stockhub/pkg/migrator"
)

var (
	dbOnce    sync.Once
	sharedDSN string
	dbInitErr error
)

// setupTestDB starts one postgres container per test binary, applies the item
// migrations and returns a pool that is closed on cleanup. Skipped unless
// INTEGRATION_TESTS=1.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run postgres integration tests")
	}

	dbOnce.Do(func() {
		sharedDSN, dbInitErr = startContainerAndMigrate()
	})
	if dbInitErr != nil {
		t.Fatalf("failed to set up test database: %v", dbInitErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "stockhub",
				"POSTGRES_PASSWORD": "stockhub",
				"POSTGRES_DB":       "stockhub_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	dsn := fmt.Sprintf("postgres://stockhub:stockhub@%s:%s/stockhub_test?sslmode=disable", host, port.Port())

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return "", fmt.Errorf("sql open: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := migrator.Up(ctx, db, os.DirFS(migrationsPath()), logger.Nop()); err != nil {
		return "", err
	}
	return dsn, nil
}

// migrationsPath resolves <repo>/migrations/item from this file's location.
func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "..", "migrations", "item")
}
