package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/linskybing/regscan/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// IntegrationEnv gates tests that need Docker or an external database.
const IntegrationEnv = "REGSCAN_INTEGRATION"

// PostgresConfig returns a store config pointing at a throwaway Postgres.
// TEST_DB_DSN reuses an existing server instead of starting a container.
// The test is skipped unless REGSCAN_INTEGRATION=1.
func PostgresConfig(t testing.TB) *config.Config {
	t.Helper()
	if os.Getenv(IntegrationEnv) != "1" {
		t.Skipf("set %s=1 to run Postgres integration tests", IntegrationEnv)
	}
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		return &config.Config{DBDriver: config.DriverPostgres, DBDSN: dsn}
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_USER":     "test",
			"POSTGRES_DB":       "regscan",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/regscan?sslmode=disable", host, port.Port())
	return &config.Config{DBDriver: config.DriverPostgres, DBDSN: dsn}
}
