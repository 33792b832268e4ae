package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nepse-stock-scryper/pkg/postgres"
)

// testDB is a migrated PostgreSQL container with both a raw and a gorm handle.
type testDB struct {
	gorm      *gorm.DB
	conn      *sql.DB
	container testcontainers.Container
}

func setupTestDB(t *testing.T) *testDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("nepse_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open connection: %v", err)
	}

	tdb := &testDB{conn: conn, container: pgContainer}
	t.Cleanup(func() { tdb.cleanup(t) })

	if err := tdb.runMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tdb.gorm, err = postgres.Open(gormpostgres.New(gormpostgres.Config{Conn: conn}), postgres.Config{LogLevel: "silent"})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return tdb
}

func (tdb *testDB) runMigrations() error {
	driver, err := migratepostgres.WithInstance(tdb.conn, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	_, filename, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (tdb *testDB) cleanup(t *testing.T) {
	t.Helper()
	if tdb.conn != nil {
		_ = tdb.conn.Close()
	}
	if err := tdb.container.Terminate(context.Background()); err != nil {
		t.Errorf("failed to terminate container: %v", err)
	}
}

func (tdb *testDB) truncate(t *testing.T) {
	t.Helper()
	if _, err := tdb.conn.Exec("TRUNCATE TABLE daily_market_data, companies CASCADE"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
