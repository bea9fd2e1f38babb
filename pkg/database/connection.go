package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/aboragab2030/barada-booking-server/pkg/config"
	"github.com/aboragab2030/barada-booking-server/pkg/logger"
)

// DB represents the database connection
type DB struct {
	*sql.DB
	config *config.DatabaseConfig
	logger *logger.Logger
}

// NewConnection opens a pooled PostgreSQL connection. The clinic deployment
// starts the service and the database together, so the initial ping retries
// for a short window instead of failing on the first refused connection.
func NewConnection(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	sqlDB, err := sql.Open("postgres", buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := pingWithRetry(sqlDB, log); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")
	return &DB{
		DB:     sqlDB,
		config: cfg,
		logger: log,
	}, nil
}

func pingWithRetry(sqlDB *sql.DB, log *logger.Logger) error {
	const attempts = 5

	var err error
	for i := 1; i <= attempts; i++ {
		if err = sqlDB.Ping(); err == nil {
			return nil
		}
		if i < attempts {
			log.Warnf("Database not ready (attempt %d/%d): %v", i, attempts, err)
			time.Sleep(time.Duration(i) * time.Second)
		}
	}
	return err
}

// buildConnectionString constructs the PostgreSQL connection string
func buildConnectionString(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}
