// Package testing provides a throwaway PostgreSQL database for repository tests
package testing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	stdtesting "testing"

	"github.com/amirphl/referral-hub/config"
	"github.com/amirphl/referral-hub/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// maintenanceDB is connected to while creating and dropping test databases
const maintenanceDB = "postgres"

// TestDB is a freshly migrated database that lives for one test
type TestDB struct {
	DB   *gorm.DB
	Name string
	conn config.DatabaseConfig
}

// serverConfig reads the TEST_DB_* variables
func serverConfig() config.DatabaseConfig {
	port, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil {
		port = 5432
	}
	return config.DatabaseConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASSWORD", "postgres"),
		SSLMode:  envOr("TEST_DB_SSL_MODE", "disable"),
		Name:     maintenanceDB,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func open(conn config.DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(conn.DSN()+" connect_timeout=3"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// withMaintenance runs statements against the maintenance database
func withMaintenance(conn config.DatabaseConfig, stmts ...string) error {
	conn.Name = maintenanceDB
	db, err := open(conn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer closeDB(db)

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SetupTestDB creates a uniquely named database and migrates the service tables into it
func SetupTestDB() (*TestDB, error) {
	conn := serverConfig()
	name := "referral_hub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	if err := withMaintenance(conn, "CREATE DATABASE "+name); err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	conn.Name = name
	db, err := open(conn)
	if err != nil {
		_ = withMaintenance(conn, "DROP DATABASE IF EXISTS "+name)
		return nil, fmt.Errorf("connect to %s: %w", name, err)
	}

	tdb := &TestDB{DB: db, Name: name, conn: conn}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		_ = tdb.TeardownTestDB()
		return nil, fmt.Errorf("migrate %s: %w", name, err)
	}
	return tdb, nil
}

// TeardownTestDB closes the connection pool and drops the database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB != nil {
		closeDB(tdb.DB)
		tdb.DB = nil
	}
	return withMaintenance(tdb.conn,
		fmt.Sprintf("SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()", tdb.Name),
		"DROP DATABASE IF EXISTS "+tdb.Name,
	)
}

// ClearAllTables empties every service table, children first
func (tdb *TestDB) ClearAllTables() error {
	return tdb.DB.Exec("TRUNCATE TABLE referral_requests, referrals, tags, users CASCADE").Error
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// TestWithDB runs fn against a throwaway database that is dropped when the test ends.
// The test is skipped when no PostgreSQL server is reachable.
func TestWithDB(t stdtesting.TB, fn func(*TestDB)) {
	t.Helper()
	tdb, err := SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		if err := tdb.TeardownTestDB(); err != nil {
			t.Logf("drop %s: %v", tdb.Name, err)
		}
	})

	fn(tdb)
}

// CreateTestContext returns the context repository tests run under
func CreateTestContext() context.Context {
	return context.Background()
}
