// Package testdb starts a throwaway postgres for tests that need the
// row-level policies.
package testdb

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/config"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
)

// RLSRole is the role created by the migrations.
const RLSRole = "grocery_app"

// TestDB wraps a test database instance
type TestDB struct {
	DB        *gorm.DB
	Config    *config.Config
	Container testcontainers.Container
}

// Close cleans up the test database
func (td *TestDB) Close() error {
	if td.Container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return td.Container.Terminate(ctx)
	}
	return nil
}

// Scope returns a user scope that assumes the policy-bound role.
func (td *TestDB) Scope() *database.Scope {
	return database.NewScope(td.DB, td.Config.DBRLSRole)
}

// SetupTestDB starts postgres, applies the goose migrations and returns a
// connection as the superuser. Policies apply once a Scope assumes RLSRole.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	const (
		user     = "grocer"
		password = "grocerpass"
		name     = "grocerylist"
	)
	dsn := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), name)
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       name,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForSQL("5432/tcp", "postgres", dsn),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	testDB.Config = &config.Config{
		Env:         config.Test,
		DBDriver:    database.DriverPostgres,
		DatabaseURL: dsn(host, port),
		DBRLSRole:   RLSRole,
	}

	log := logging.Discard()
	db, err := database.New(testDB.Config, log)
	require.NoError(t, err, "failed to connect to postgres container")
	require.NoError(t, database.Migrate(ctx, db, log), "failed to apply migrations")
	testDB.DB = db

	return testDB
}
