package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/mobility/internal/docstore"
)

// DocumentMedium stores docstore documents as rows of the documents table.
type DocumentMedium struct {
	db *DB
}

// NewDocumentMedium creates a new DocumentMedium
func NewDocumentMedium(db *DB) *DocumentMedium {
	return &DocumentMedium{db: db}
}

// Load returns the stored document body.
func (m *DocumentMedium) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := m.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrDocumentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", name, err)
	}
	return body, nil
}

// Save replaces the whole document.
func (m *DocumentMedium) Save(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO documents (name, body, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			version = documents.version + 1,
			updated_at = excluded.updated_at
	`
	if _, err := m.db.ExecContext(ctx, query, name, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	return nil
}

// Version returns how many times a document has been written, or 0 if never.
func (m *DocumentMedium) Version(ctx context.Context, name string) (int64, error) {
	var version int64
	err := m.db.QueryRowContext(ctx, `SELECT version FROM documents WHERE name = ?`, name).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get document version: %w", err)
	}
	return version, nil
}
