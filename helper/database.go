package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the PostgreSQL connection settings,
// read from the environment (and an optional local .env file).
type DatabaseConfiguration struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	Database string `env:"DB_DATABASE" env-default:"database"`
	Username string `env:"DB_USERNAME" env-default:"user"`
	Password string `env:"DB_PASSWORD" env-default:"password"`
	Schema   string `env:"DB_SCHEMA" env-default:"public"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

// NewDatabaseConfiguration reads the database configuration from the
// environment. A .env file in the working directory is loaded first if
// present; missing variables fall back to defaults.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// Optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := &DatabaseConfiguration{}
	err := cleanenv.ReadEnv(config)
	if err != nil {
		return nil, NewError("read database configuration", err)
	}

	return config, nil
}

// ConnectionString builds the lib/pq connection string
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
		c.Schema,
	)
}

// Database wraps the shared sql.DB connection with its logger
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection to the configured PostgreSQL database.
// It panics if the database is unreachable, as nothing can run without it.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		log.Panicf("error pinging database: %v", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: db,
		Logger:   logger,
	}
}

// Close closes the underlying database connection
func (d *Database) Close() error {
	if d.Instance != nil {
		return d.Instance.Close()
	}
	return nil
}
