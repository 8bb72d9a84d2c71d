package resource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arturoeanton/go-annotate-ollama/internal/port"
	"github.com/lib/pq"
)

// PostgresProvider reads resources from the shared Postgres database. The
// surrounding system writes them; this service only looks them up for offset
// validation, context extraction, and export titles.
type PostgresProvider struct {
	db *sql.DB
}

// NewPostgresProvider creates a provider on an existing connection pool.
func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

var _ port.ResourceProvider = (*PostgresProvider)(nil)

// GetContent returns the raw text body of a resource.
func (p *PostgresProvider) GetContent(ctx context.Context, resourceID string) (string, error) {
	var content string
	err := p.db.QueryRowContext(ctx, `SELECT content FROM resources WHERE id = $1`, resourceID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", port.ErrResourceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get resource content: %w", err)
	}
	return content, nil
}

// GetTitle returns the resource title.
func (p *PostgresProvider) GetTitle(ctx context.Context, resourceID string) (string, error) {
	var title string
	err := p.db.QueryRowContext(ctx, `SELECT title FROM resources WHERE id = $1`, resourceID).Scan(&title)
	if err == sql.ErrNoRows {
		return "", port.ErrResourceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get resource title: %w", err)
	}
	return title, nil
}

// GetTitles resolves many titles in one query; unknown ids are omitted.
func (p *PostgresProvider) GetTitles(ctx context.Context, resourceIDs []string) (map[string]string, error) {
	titles := make(map[string]string, len(resourceIDs))
	if len(resourceIDs) == 0 {
		return titles, nil
	}

	rows, err := p.db.QueryContext(ctx, `SELECT id, title FROM resources WHERE id = ANY($1)`, pq.Array(resourceIDs))
	if err != nil {
		return nil, fmt.Errorf("get resource titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan resource title: %w", err)
		}
		titles[id] = title
	}
	return titles, rows.Err()
}
