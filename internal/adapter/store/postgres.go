package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arturoeanton/go-annotate-ollama/internal/domain"
	"github.com/arturoeanton/go-annotate-ollama/internal/port"
	"github.com/lib/pq"
)

// PostgresStore implements port.AnnotationStore on Postgres with pgvector.
// Every write is a single statement, which is all the atomicity this core
// requires.
type PostgresStore struct {
	db        *sql.DB
	dimension int
}

// NewPostgresStore opens a connection, bootstraps the schema, and returns a
// store instance. dimension is the pgvector column width and must match the
// embedding model.
func NewPostgresStore(databaseURL string, dimension int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db, dimension: dimension}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB, used by the resource provider that
// shares this connection pool.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) initSchema() error {
	schema := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS annotations (
		id               TEXT PRIMARY KEY,
		resource_id      TEXT NOT NULL,
		owner_id         TEXT NOT NULL,
		highlighted_text TEXT NOT NULL,
		start_offset     INTEGER NOT NULL,
		end_offset       INTEGER NOT NULL,
		context_before   TEXT NOT NULL DEFAULT '',
		context_after    TEXT NOT NULL DEFAULT '',
		note             TEXT NOT NULL DEFAULT '',
		tags             TEXT[] NOT NULL DEFAULT '{}',
		is_shared        BOOLEAN NOT NULL DEFAULT FALSE,
		embedding        vector(%d),
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_resource ON annotations (resource_id);
	CREATE INDEX IF NOT EXISTS idx_annotations_owner ON annotations (owner_id);

	CREATE TABLE IF NOT EXISTS resources (
		id      TEXT PRIMARY KEY,
		title   TEXT NOT NULL,
		content TEXT NOT NULL
	);
	`, s.dimension)

	_, err := s.db.Exec(schema)
	return err
}

const annotationColumns = `id, resource_id, owner_id, highlighted_text, start_offset, end_offset,
	context_before, context_after, note, tags, is_shared, embedding::text, created_at, updated_at`

// Create inserts a new annotation record.
func (s *PostgresStore) Create(ctx context.Context, a *domain.Annotation) error {
	query := `INSERT INTO annotations (id, resource_id, owner_id, highlighted_text, start_offset, end_offset,
	                                   context_before, context_after, note, tags, is_shared, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.ResourceID, a.OwnerID, a.HighlightedText, a.StartOffset, a.EndOffset,
		a.ContextBefore, a.ContextAfter, a.Note, pq.Array(a.Tags), a.IsShared, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create annotation: %w", err)
	}
	return nil
}

// GetByID retrieves an annotation by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE id = $1`
	a, err := scanAnnotation(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrAnnotationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	return a, nil
}

// Update applies the mutable-field patch in one statement; NULL patch values
// leave the column untouched.
func (s *PostgresStore) Update(ctx context.Context, id string, patch domain.Patch, updatedAt time.Time) (*domain.Annotation, error) {
	query := `UPDATE annotations SET
	            note      = COALESCE($2, note),
	            tags      = COALESCE($3, tags),
	            is_shared = COALESCE($4, is_shared),
	            updated_at = $5
	          WHERE id = $1
	          RETURNING ` + annotationColumns

	var tags interface{}
	if patch.Tags != nil {
		tags = pq.Array(*patch.Tags)
	}

	a, err := scanAnnotation(s.db.QueryRowContext(ctx, query, id, patch.Note, tags, patch.IsShared, updatedAt))
	if err == sql.ErrNoRows {
		return nil, port.ErrAnnotationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update annotation: %w", err)
	}
	return a, nil
}

// Delete removes an annotation.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrAnnotationNotFound
	}
	return nil
}

// AttachEmbedding stores the vector for an existing annotation. updated_at
// is deliberately left alone: embedding attachment is not a user mutation.
func (s *PostgresStore) AttachEmbedding(ctx context.Context, id string, vector []float32) error {
	query := `UPDATE annotations SET embedding = $2::vector WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, vectorToString(vector))
	if err != nil {
		return fmt.Errorf("attach embedding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrAnnotationNotFound
	}
	return nil
}

// ListByResource returns all annotations on a resource, newest first.
func (s *PostgresStore) ListByResource(ctx context.Context, resourceID string) ([]*domain.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations
	          WHERE resource_id = $1 ORDER BY created_at DESC, id DESC`
	return s.list(ctx, query, resourceID)
}

// ListVisible returns annotations owned by userID plus shared ones, newest
// first.
func (s *PostgresStore) ListVisible(ctx context.Context, userID string) ([]*domain.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations
	          WHERE owner_id = $1 OR is_shared ORDER BY created_at DESC, id DESC`
	return s.list(ctx, query, userID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnnotation(row rowScanner) (*domain.Annotation, error) {
	var (
		a         domain.Annotation
		embedding sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.ResourceID, &a.OwnerID, &a.HighlightedText, &a.StartOffset, &a.EndOffset,
		&a.ContextBefore, &a.ContextAfter, &a.Note, pq.Array(&a.Tags), &a.IsShared,
		&embedding, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if embedding.Valid {
		a.Embedding, err = parseVector(embedding.String)
		if err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
	}
	return &a, nil
}
