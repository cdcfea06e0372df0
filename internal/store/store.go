package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-sync-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetActiveIntegration retrieves the active integration for a store and
// provider type. Returns nil without error when none exists.
func (s *Store) GetActiveIntegration(ctx context.Context, storeID int64, providerType string) (*models.Integration, error) {
	var integration models.Integration
	err := s.db.GetContext(ctx, &integration,
		"SELECT * FROM integrations WHERE store_id = $1 AND provider_type = $2 ORDER BY updated_at DESC LIMIT 1",
		storeID, providerType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// InsertSyncRun persists one run-history row
func (s *Store) InsertSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (store_id, provider_type, total_operations, successful_operations, failed_operations, duration_ms, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, run, query,
		run.StoreID, run.ProviderType, run.TotalOperations, run.SuccessfulOperations,
		run.FailedOperations, run.DurationMs, run.Summary)
}

// GetRecentSyncRuns retrieves the most recent run-history rows for a store
func (s *Store) GetRecentSyncRuns(ctx context.Context, storeID int64, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM sync_runs WHERE store_id = $1 ORDER BY created_at DESC LIMIT $2",
		storeID, limit)
	return runs, err
}
