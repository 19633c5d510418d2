// Package store provides ArtifactStore implementations: a SQLite store for
// durable caching and an in-memory store for tests and zero-config runs.
// Artifacts are append-only; neither implementation supports update or
// delete.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lumenlearn/semcache/internal/domain"
)

// SQLiteStore implements domain.ArtifactStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		request_basis TEXT NOT NULL,
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		embedding_ref TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_content_hash ON artifacts(content_hash);
	CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Insert appends a new artifact.
func (s *SQLiteStore) Insert(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, request_basis, content, content_hash, embedding_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		artifact.ID, artifact.RequestBasis, artifact.Content,
		artifact.ContentHash, artifact.EmbeddingRef, artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	return nil
}

// FindByHash returns the earliest artifact with the given content hash, or
// domain.ErrArtifactNotFound. The earliest is canonical on hash collision.
func (s *SQLiteStore) FindByHash(ctx context.Context, hash string) (*domain.Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request_basis, content, content_hash, embedding_ref, created_at
		 FROM artifacts WHERE content_hash = ? ORDER BY created_at ASC LIMIT 1`, hash)

	artifact, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query by hash: %w", err)
	}
	return artifact, nil
}

// FindByIDs returns artifacts for the given ids, skipping unknown ids.
func (s *SQLiteStore) FindByIDs(ctx context.Context, ids []string) ([]*domain.Artifact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_basis, content, content_hash, embedding_ref, created_at
		 FROM artifacts WHERE id IN (`+placeholders+`) ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query by ids: %w", err)
	}
	defer rows.Close()

	return collectArtifacts(rows)
}

// ScanAll returns up to limit artifacts in creation order; limit <= 0 means
// no limit.
func (s *SQLiteStore) ScanAll(ctx context.Context, limit int) ([]*domain.Artifact, error) {
	query := `SELECT id, request_basis, content, content_hash, embedding_ref, created_at
		 FROM artifacts ORDER BY created_at ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifacts: %w", err)
	}
	defer rows.Close()

	return collectArtifacts(rows)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*domain.Artifact, error) {
	var artifact domain.Artifact
	var embeddingRef sql.NullString

	err := row.Scan(&artifact.ID, &artifact.RequestBasis, &artifact.Content,
		&artifact.ContentHash, &embeddingRef, &artifact.CreatedAt)
	if err != nil {
		return nil, err
	}
	artifact.EmbeddingRef = embeddingRef.String
	return &artifact, nil
}

func collectArtifacts(rows *sql.Rows) ([]*domain.Artifact, error) {
	var artifacts []*domain.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return artifacts, nil
}
