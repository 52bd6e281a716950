package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true — if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search queries the projects table using plainto_tsquery and ts_rank,
// with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}

	where := "p.fts @@ " + tsQuery
	if q.Category != "" {
		where += fmt.Sprintf(" AND p.categories @> jsonb_build_array($%d::text)", len(args)+1)
		args = append(args, q.Category)
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM projects p WHERE %s", where)

	dataSQL := fmt.Sprintf(`
		SELECT p.id::text, p.slug, p.title,
			ts_headline('english', coalesce(p.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
			coalesce(p.categories::text, '[]')
		FROM projects p
		WHERE %s
		ORDER BY ts_rank(p.fts, %s) DESC
		LIMIT %d OFFSET %d`, tsQuery, where, tsQuery, limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var categories string
		if err := rows.Scan(&r.ID, &r.Slug, &r.Title, &r.Snippet, &categories); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		if err := json.Unmarshal([]byte(categories), &r.Categories); err != nil {
			return nil, 0, fmt.Errorf("pgfts decode categories: %w", err)
		}
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable project records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]ProjectRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, slug, title,
			coalesce(description, ''), coalesce(overview, ''),
			coalesce(technologies::text, '[]'),
			coalesce(categories::text, '[]'),
			coalesce(achievements::text, '[]')
		FROM projects
	`)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	defer rows.Close()

	records := make([]ProjectRecord, 0)
	for rows.Next() {
		var r ProjectRecord
		var technologies, categories, achievements string
		if err := rows.Scan(&r.ID, &r.Slug, &r.Title, &r.Description, &r.Overview,
			&technologies, &categories, &achievements); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if err := json.Unmarshal([]byte(technologies), &r.Technologies); err != nil {
			return nil, fmt.Errorf("decode technologies: %w", err)
		}
		if err := json.Unmarshal([]byte(categories), &r.Categories); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
		if err := json.Unmarshal([]byte(achievements), &r.Achievements); err != nil {
			return nil, fmt.Errorf("decode achievements: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return records, nil
}
