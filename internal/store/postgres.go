package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"portfolio/api/internal/content"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

const projectColumns = `
	id, title, slug, COALESCE(description, ''), COALESCE(duration, ''),
	project_date, project_location,
	COALESCE(technologies::text, '[]'), COALESCE(categories::text, '[]'), COALESCE(achievements::text, '[]'),
	overview, objective, key_achievements, theory_approach, tech_used,
	technical_deep_dive, challenges_solutions, review, future_improvements,
	COALESCE(sections_order::text, ''), COALESCE(sections_visibility::text, ''), COALESCE(content_type::text, ''),
	COALESCE(code_snippets::text, ''),
	show_toc, COALESCE(toc_position, 'left'),
	content_version, last_edited, created_at, updated_at`

func (s *PostgresStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		item, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE slug=$1
	`, slug)
	item, err := scanProject(row)
	if err != nil {
		return Project{}, err
	}
	return item, nil
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE slug=$1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) InsertProject(ctx context.Context, item Project) (Project, error) {
	fields, err := encodeProjectFields(item)
	if err != nil {
		return Project{}, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (
			title, slug, description, duration, project_date, project_location,
			technologies, categories, achievements,
			overview, objective, key_achievements, theory_approach, tech_used,
			technical_deep_dive, challenges_solutions, review, future_improvements,
			sections_order, sections_visibility, content_type, code_snippets,
			show_toc, toc_position, content_version
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7::jsonb, $8::jsonb, $9::jsonb,
			$10, $11, $12, $13, $14,
			$15, $16, $17, $18,
			$19::jsonb, $20::jsonb, $21::jsonb, $22::jsonb,
			$23, $24, 1
		)
		RETURNING `+projectColumns,
		item.Title, item.Slug, item.Description, item.Duration, item.ProjectDate, item.ProjectLocation,
		fields.technologies, fields.categories, fields.achievements,
		fields.sections[content.SectionOverview], fields.sections[content.SectionObjective],
		fields.sections[content.SectionKeyAchievements], fields.sections[content.SectionTheoryApproach],
		fields.sections[content.SectionTechUsed], fields.sections[content.SectionTechnicalDeepDive],
		fields.sections[content.SectionChallengesSolution], fields.sections[content.SectionReview],
		fields.sections[content.SectionFutureImprovements],
		fields.sectionsOrder, fields.visibility, fields.contentTypes, fields.codeSnippets,
		item.ShowTOC, fields.tocPosition,
	)
	created, err := scanProject(row)
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateProjectBySlug(ctx context.Context, slug string, item Project) (Project, error) {
	fields, err := encodeProjectFields(item)
	if err != nil {
		return Project{}, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE projects SET
			title=$2, description=$3, duration=$4, project_date=$5, project_location=$6,
			technologies=$7::jsonb, categories=$8::jsonb, achievements=$9::jsonb,
			overview=$10, objective=$11, key_achievements=$12, theory_approach=$13, tech_used=$14,
			technical_deep_dive=$15, challenges_solutions=$16, review=$17, future_improvements=$18,
			sections_order=$19::jsonb, sections_visibility=$20::jsonb, content_type=$21::jsonb,
			code_snippets=$22::jsonb,
			show_toc=$23, toc_position=$24,
			content_version=$25, last_edited=$26, updated_at=NOW()
		WHERE slug=$1
		RETURNING `+projectColumns,
		slug,
		item.Title, item.Description, item.Duration, item.ProjectDate, item.ProjectLocation,
		fields.technologies, fields.categories, fields.achievements,
		fields.sections[content.SectionOverview], fields.sections[content.SectionObjective],
		fields.sections[content.SectionKeyAchievements], fields.sections[content.SectionTheoryApproach],
		fields.sections[content.SectionTechUsed], fields.sections[content.SectionTechnicalDeepDive],
		fields.sections[content.SectionChallengesSolution], fields.sections[content.SectionReview],
		fields.sections[content.SectionFutureImprovements],
		fields.sectionsOrder, fields.visibility, fields.contentTypes, fields.codeSnippets,
		item.ShowTOC, fields.tocPosition,
		item.ContentVersion, item.LastEdited,
	)
	updated, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, err
		}
		return Project{}, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return s.distinctArrayValues(ctx, "categories")
}

func (s *PostgresStore) DistinctTechnologies(ctx context.Context) ([]string, error) {
	return s.distinctArrayValues(ctx, "technologies")
}

func (s *PostgresStore) distinctArrayValues(ctx context.Context, column string) ([]string, error) {
	// column is one of two fixed identifiers, never user input.
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT elem
		FROM projects, jsonb_array_elements_text(COALESCE(`+column+`, '[]'::jsonb)) AS elem
		ORDER BY elem ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", column, err)
	}
	return values, nil
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (the slug index on create).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type encodedProject struct {
	technologies  string
	categories    string
	achievements  string
	sections      map[content.SectionID]*string
	sectionsOrder *string
	visibility    *string
	contentTypes  *string
	codeSnippets  *string
	tocPosition   string
}

func encodeProjectFields(item Project) (encodedProject, error) {
	technologies, err := encodeStringList(item.Technologies)
	if err != nil {
		return encodedProject{}, err
	}
	categories, err := encodeStringList(item.Categories)
	if err != nil {
		return encodedProject{}, err
	}
	achievements, err := encodeStringList(item.Achievements)
	if err != nil {
		return encodedProject{}, err
	}

	sections := make(map[content.SectionID]*string, len(content.RegisteredSections()))
	for _, id := range content.RegisteredSections() {
		sections[id] = nullableText(item.Sections[id])
	}

	sectionsOrder, err := encodeNullableJSON(item.SectionsOrder, len(item.SectionsOrder) == 0)
	if err != nil {
		return encodedProject{}, err
	}
	visibility, err := encodeNullableJSON(item.Visibility, len(item.Visibility) == 0)
	if err != nil {
		return encodedProject{}, err
	}
	contentTypes, err := encodeNullableJSON(item.ContentTypes, len(item.ContentTypes) == 0)
	if err != nil {
		return encodedProject{}, err
	}
	codeSnippets, err := encodeNullableJSON(item.CodeSnippets, len(item.CodeSnippets) == 0)
	if err != nil {
		return encodedProject{}, err
	}

	tocPosition := item.TOCPosition
	if tocPosition == "" {
		tocPosition = "left"
	}

	return encodedProject{
		technologies:  technologies,
		categories:    categories,
		achievements:  achievements,
		sections:      sections,
		sectionsOrder: sectionsOrder,
		visibility:    visibility,
		contentTypes:  contentTypes,
		codeSnippets:  codeSnippets,
		tocPosition:   tocPosition,
	}, nil
}

func encodeStringList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(encoded), nil
}

func encodeNullableJSON(value any, empty bool) (*string, error) {
	if empty {
		return nil, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	text := string(encoded)
	return &text, nil
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		item          Project
		technologies  string
		categories    string
		achievements  string
		sectionBodies [9]sql.NullString
		sectionsOrder string
		visibility    string
		contentTypes  string
		codeSnippets  string
	)
	err := row.Scan(
		&item.ID, &item.Title, &item.Slug, &item.Description, &item.Duration,
		&item.ProjectDate, &item.ProjectLocation,
		&technologies, &categories, &achievements,
		&sectionBodies[0], &sectionBodies[1], &sectionBodies[2], &sectionBodies[3], &sectionBodies[4],
		&sectionBodies[5], &sectionBodies[6], &sectionBodies[7], &sectionBodies[8],
		&sectionsOrder, &visibility, &contentTypes,
		&codeSnippets,
		&item.ShowTOC, &item.TOCPosition,
		&item.ContentVersion, &item.LastEdited, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return Project{}, err
	}

	if err := json.Unmarshal([]byte(technologies), &item.Technologies); err != nil {
		return Project{}, fmt.Errorf("decode technologies: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &item.Categories); err != nil {
		return Project{}, fmt.Errorf("decode categories: %w", err)
	}
	if err := json.Unmarshal([]byte(achievements), &item.Achievements); err != nil {
		return Project{}, fmt.Errorf("decode achievements: %w", err)
	}

	item.Sections = make(map[content.SectionID]string)
	for i, id := range content.RegisteredSections() {
		if sectionBodies[i].Valid && sectionBodies[i].String != "" {
			item.Sections[id] = sectionBodies[i].String
		}
	}

	if sectionsOrder != "" {
		if err := json.Unmarshal([]byte(sectionsOrder), &item.SectionsOrder); err != nil {
			return Project{}, fmt.Errorf("decode sections_order: %w", err)
		}
	}
	if visibility != "" {
		if err := json.Unmarshal([]byte(visibility), &item.Visibility); err != nil {
			return Project{}, fmt.Errorf("decode sections_visibility: %w", err)
		}
	}
	if contentTypes != "" {
		if err := json.Unmarshal([]byte(contentTypes), &item.ContentTypes); err != nil {
			return Project{}, fmt.Errorf("decode content_type: %w", err)
		}
	}
	if codeSnippets != "" {
		if err := json.Unmarshal([]byte(codeSnippets), &item.CodeSnippets); err != nil {
			return Project{}, fmt.Errorf("decode code_snippets: %w", err)
		}
	}
	return item, nil
}
