package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ClassificationEntry is a cached classification result keyed by the hash
// of the image it was computed from. The image bytes themselves are never
// stored.
type ClassificationEntry struct {
	ImageHash  string
	ResultJSON string
	CreatedAt  time.Time
}

// Store defines the interface for classification result persistence.
type Store interface {
	// GetClassification returns the cached entry for the hash, or nil
	// if there is none.
	GetClassification(imageHash string) (*ClassificationEntry, error)
	SetClassification(entry *ClassificationEntry) error
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS classifications (
		image_hash TEXT PRIMARY KEY,
		result_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create classifications table: %w", err)
	}
	return nil
}

// GetClassification implements Store.
func (s *SQLiteStore) GetClassification(imageHash string) (*ClassificationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := &ClassificationEntry{ImageHash: imageHash}
	err := s.db.QueryRow(
		"SELECT result_json, created_at FROM classifications WHERE image_hash = ?",
		imageHash,
	).Scan(&entry.ResultJSON, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query classification: %w", err)
	}

	return entry, nil
}

// SetClassification implements Store.
func (s *SQLiteStore) SetClassification(entry *ClassificationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO classifications (image_hash, result_json, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(image_hash) DO UPDATE SET result_json = excluded.result_json, created_at = excluded.created_at`,
		entry.ImageHash, entry.ResultJSON, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
