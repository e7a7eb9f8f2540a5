package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for Postgres.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// Database wraps the sql.DB connection with a name and logger.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabaseConfiguration reads the configuration from HYBRIDNLU_DB_* environment variables.
// A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("HYBRIDNLU_DB_HOST"),
		Port:     os.Getenv("HYBRIDNLU_DB_PORT"),
		Database: os.Getenv("HYBRIDNLU_DB_DATABASE"),
		Username: os.Getenv("HYBRIDNLU_DB_USERNAME"),
		Password: os.Getenv("HYBRIDNLU_DB_PASSWORD"),
		Schema:   os.Getenv("HYBRIDNLU_DB_SCHEMA"),
		SSLMode:  os.Getenv("HYBRIDNLU_DB_SSLMODE"),
	}
	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, NewError("database configuration", fmt.Errorf("HYBRIDNLU_DB_HOST, HYBRIDNLU_DB_PORT, HYBRIDNLU_DB_DATABASE and HYBRIDNLU_DB_USERNAME must be set"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// ConnectionString builds the lib/pq connection string.
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode, c.Schema,
	)
}

// NewDatabase opens and pings the connection. It panics if the database is not reachable.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = DiscardLogger()
	}

	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database %s: %v", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: db,
	}
}

// NewTestDatabase opens a database with a debug logger for tests.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test_db", config, NewLogger(os.Stdout, slog.LevelDebug))
}

// SetTestDatabaseConfigEnvs sets the HYBRIDNLU_DB_* variables for the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv("HYBRIDNLU_DB_HOST", "localhost")
	t.Setenv("HYBRIDNLU_DB_PORT", dbPort)
	t.Setenv("HYBRIDNLU_DB_DATABASE", "database")
	t.Setenv("HYBRIDNLU_DB_USERNAME", "user")
	t.Setenv("HYBRIDNLU_DB_PASSWORD", "password")
	t.Setenv("HYBRIDNLU_DB_SCHEMA", "public")
	t.Setenv("HYBRIDNLU_DB_SSLMODE", "disable")
}
