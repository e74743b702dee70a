package db

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testPool is the shared pool for all tests in package db.
// nil when PostgreSQL could not be started (tests skip).
var testPool *pgxpool.Pool

// testDSN points at the same database as testPool.
var testDSN string

// TestMain starts a PostgreSQL 16 container and applies migrations.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Printf("postgres container unavailable, db tests will skip: %v", err)
		os.Exit(m.Run())
	}

	code := func() int {
		defer func() {
			_ = container.Terminate(ctx)
		}()

		host, err := container.Host(ctx)
		if err != nil {
			log.Printf("getting container host: %v", err)
			return 1
		}
		port, err := container.MappedPort(ctx, "5432")
		if err != nil {
			log.Printf("getting container port: %v", err)
			return 1
		}
		dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

		testDSN = dsn
		testPool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			log.Printf("connecting to test db: %v", err)
			return 1
		}
		defer testPool.Close()

		if err := RunMigrations(ctx, dsn); err != nil {
			log.Printf("running migrations: %v", err)
			return 1
		}

		return m.Run()
	}()
	os.Exit(code)
}

// setupTestDB returns the shared pool with nav_layers truncated,
// or skips the test when no database is available.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testPool == nil {
		tb.Skip("postgres not available")
	}

	if _, err := testPool.Exec(context.Background(), "TRUNCATE nav_layers"); err != nil {
		tb.Logf("cleanup warning: %v", err) // non-fatal
	}
	return testPool
}
