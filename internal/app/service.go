package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"portfolio/api/internal/auth"
	"portfolio/api/internal/config"
	"portfolio/api/internal/content"
	"portfolio/api/internal/search"
	"portfolio/api/internal/session"
	"portfolio/api/internal/store"
	"portfolio/api/internal/util"
)

// Session identifies an authenticated admin. Handlers receive it explicitly
// instead of consulting any ambient auth state.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Subject       string    `json:"subject,omitempty"`
	Role          string    `json:"role,omitempty"`
	Token         string    `json:"token,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt,omitzero"`
}

// CreateProjectInput carries the fields accepted when creating a project.
// Slug is optional; when empty it is derived from the title.
type CreateProjectInput struct {
	Title           string                       `json:"title"`
	Slug            string                       `json:"slug"`
	Description     string                       `json:"description"`
	Duration        string                       `json:"duration"`
	ProjectDate     *string                      `json:"project_date"`
	ProjectLocation *string                      `json:"project_location"`
	Technologies    []string                     `json:"technologies"`
	Categories      []string                     `json:"categories"`
	Achievements    []string                     `json:"achievements"`
	Sections        map[content.SectionID]string `json:"sections"`
	SectionsOrder   []string                     `json:"sections_order"`
	Visibility      map[string]bool              `json:"sections_visibility"`
	ContentTypes    map[string]string            `json:"content_type"`
	CodeSnippets    []content.CodeSnippet        `json:"code_snippets"`
	ShowTOC         *bool                        `json:"show_toc"`
	TOCPosition     string                       `json:"toc_position"`
}

// ProjectPatch is a full-replace update payload. Array fields clear to empty
// when absent, section and TOC control fields reset to their defaults; only
// Title, Description and Duration fall back to the stored value when omitted.
// ContentVersion is accepted for wire compatibility but never trusted: the
// server bumps the stored version by exactly one on every successful update.
type ProjectPatch struct {
	Title           *string                       `json:"title"`
	Description     *string                       `json:"description"`
	Duration        *string                       `json:"duration"`
	ProjectDate     *string                       `json:"project_date"`
	ProjectLocation *string                       `json:"project_location"`
	Technologies    *[]string                     `json:"technologies"`
	Categories      *[]string                     `json:"categories"`
	Achievements    *[]string                     `json:"achievements"`
	Sections        *map[content.SectionID]string `json:"sections"`
	SectionsOrder   *[]string                     `json:"sections_order"`
	Visibility      *map[string]bool              `json:"sections_visibility"`
	ContentTypes    *map[string]string            `json:"content_type"`
	CodeSnippets    *[]content.CodeSnippet        `json:"code_snippets"`
	ShowTOC         *bool                         `json:"show_toc"`
	TOCPosition     *string                       `json:"toc_position"`
	ContentVersion  *int                          `json:"content_version"`
}

// PageSection is a resolved section plus its rendered HTML body.
type PageSection struct {
	content.ResolvedSection
	HTML string `json:"html,omitempty"`
}

// ProjectPage is the fully resolved read model for a project detail page.
type ProjectPage struct {
	Project  store.Project   `json:"project"`
	Sections []PageSection   `json:"sections"`
	TOC      content.Outline `json:"toc"`
}

type projectStore interface {
	ListProjects(context.Context) ([]store.Project, error)
	GetProjectBySlug(context.Context, string) (store.Project, error)
	SlugExists(context.Context, string) (bool, error)
	InsertProject(context.Context, store.Project) (store.Project, error)
	UpdateProjectBySlug(context.Context, string, store.Project) (store.Project, error)
	DistinctCategories(context.Context) ([]string, error)
	DistinctTechnologies(context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type sessionStore interface {
	SaveAdminSession(ctx context.Context, tokenHash, subject string, expiresAt time.Time) error
	LookupAdminSession(ctx context.Context, tokenHash string) (session.SessionData, error)
	RevokeAdminSession(ctx context.Context, tokenHash string) error
}

type searchService interface {
	Search(q search.Query) search.Response
	IndexProject(p search.ProjectRecord)
}

type uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}

type Service struct {
	cfg      config.Config
	store    projectStore
	sessions sessionStore
	search   searchService
	uploads  uploader
}

// New wires the service. Sessions, search, and uploads are optional; pass nil
// to disable the corresponding surface.
func New(cfg config.Config, dataStore *store.PostgresStore, sessions *session.RedisStore, searchSvc *search.Service, uploads uploader) *Service {
	s := &Service{
		cfg:   cfg,
		store: dataStore,
	}
	if sessions != nil {
		s.sessions = sessions
	}
	if searchSvc != nil {
		s.search = searchSvc
	}
	if uploads != nil {
		s.uploads = uploads
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ListProjects returns all projects ordered by id.
func (s *Service) ListProjects(ctx context.Context) ([]store.Project, error) {
	items, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if items == nil {
		items = []store.Project{}
	}
	return items, nil
}

// GetProject returns one project by slug.
func (s *Service) GetProject(ctx context.Context, slug string) (store.Project, error) {
	item, err := s.store.GetProjectBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return store.Project{}, err
	}
	return item, nil
}

// GetProjectPage returns the project with its resolved, rendered sections and
// table of contents.
func (s *Service) GetProjectPage(ctx context.Context, slug string) (ProjectPage, error) {
	item, err := s.store.GetProjectBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return ProjectPage{}, err
	}

	view := item.View()
	resolved := content.ResolveSections(view)
	sections := make([]PageSection, 0, len(resolved))
	for _, section := range resolved {
		page := PageSection{ResolvedSection: section}
		if section.Kind == content.KindProse {
			page.HTML = content.RenderSection(section.Content, section.ContentType)
		}
		sections = append(sections, page)
	}

	return ProjectPage{
		Project:  item,
		Sections: sections,
		TOC:      content.BuildTOC(view),
	}, nil
}

// Categories returns the distinct category values across all projects.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	values, err := s.store.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Technologies returns the distinct technology values across all projects.
func (s *Service) Technologies(ctx context.Context) ([]string, error) {
	values, err := s.store.DistinctTechnologies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list technologies: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// CreateProject validates input, derives a unique slug, and inserts the
// project with content_version 1.
func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput) (store.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return store.Project{}, validationError("title is required", nil)
	}

	base := slugify(input.Slug)
	if base == "" {
		base = slugify(title)
	}
	if base == "" {
		base = "project"
	}

	slug, err := s.availableSlug(ctx, base)
	if err != nil {
		return store.Project{}, fmt.Errorf("derive slug: %w", err)
	}

	showTOC := true
	if input.ShowTOC != nil {
		showTOC = *input.ShowTOC
	}
	tocPosition := strings.TrimSpace(input.TOCPosition)
	if tocPosition == "" {
		tocPosition = "left"
	}

	item := store.Project{
		Title:           title,
		Slug:            slug,
		Description:     input.Description,
		Duration:        strings.TrimSpace(input.Duration),
		ProjectDate:     blankToNil(input.ProjectDate),
		ProjectLocation: blankToNil(input.ProjectLocation),
		Technologies:    sanitizeList(input.Technologies),
		Categories:      sanitizeList(input.Categories),
		Achievements:    sanitizeList(input.Achievements),
		Sections:        sanitizeSections(input.Sections),
		SectionsOrder:   sanitizeOrder(input.SectionsOrder),
		Visibility:      input.Visibility,
		ContentTypes:    sanitizeContentTypes(input.ContentTypes),
		CodeSnippets:    sanitizeSnippets(input.CodeSnippets),
		ShowTOC:         showTOC,
		TOCPosition:     tocPosition,
	}

	created, err := s.store.InsertProject(ctx, item)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.Project{}, conflictError("TITLE_CONFLICT", "A project with this slug already exists")
		}
		return store.Project{}, fmt.Errorf("insert project: %w", err)
	}

	s.indexProject(created)
	return created, nil
}

// UpdateProject replaces the project stored under slug with the patch. The
// payload is authoritative: array and section fields it omits are cleared,
// TOC controls reset to their defaults. The stored content version is bumped
// by one and last_edited is refreshed, regardless of what the client sent.
func (s *Service) UpdateProject(ctx context.Context, slug string, patch ProjectPatch) (store.Project, error) {
	current, err := s.store.GetProjectBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return store.Project{}, err
	}

	next := current
	if patch.Title != nil {
		if title := strings.TrimSpace(*patch.Title); title != "" {
			next.Title = title
		}
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Duration != nil {
		next.Duration = strings.TrimSpace(*patch.Duration)
	}
	next.ProjectDate = blankToNil(patch.ProjectDate)
	next.ProjectLocation = blankToNil(patch.ProjectLocation)
	next.Technologies = sanitizeList(deref(patch.Technologies))
	next.Categories = sanitizeList(deref(patch.Categories))
	next.Achievements = sanitizeList(deref(patch.Achievements))
	next.Sections = sanitizeSections(deref(patch.Sections))
	next.SectionsOrder = sanitizeOrder(deref(patch.SectionsOrder))
	next.Visibility = deref(patch.Visibility)
	next.ContentTypes = sanitizeContentTypes(deref(patch.ContentTypes))
	next.CodeSnippets = sanitizeSnippets(deref(patch.CodeSnippets))
	next.ShowTOC = patch.ShowTOC == nil || *patch.ShowTOC
	next.TOCPosition = "left"
	if patch.TOCPosition != nil {
		if pos := strings.TrimSpace(*patch.TOCPosition); pos != "" {
			next.TOCPosition = pos
		}
	}

	next.Slug = current.Slug
	next.ContentVersion = current.ContentVersion + 1
	now := time.Now().UTC()
	next.LastEdited = &now

	updated, err := s.store.UpdateProjectBySlug(ctx, current.Slug, next)
	if err != nil {
		return store.Project{}, err
	}

	s.indexProject(updated)
	return updated, nil
}

// Search queries the search facade. Returns an empty response when search is
// not configured.
func (s *Service) Search(ctx context.Context, text, category string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Total: 0, Query: text}
	}
	return s.search.Search(search.Query{
		Text:     text,
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
}

// Upload stores a file in object storage and returns its public URL.
func (s *Service) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if s.uploads == nil {
		return "", domainError(http.StatusServiceUnavailable, "UPLOAD_UNAVAILABLE", "Object storage not configured", nil)
	}
	url, err := s.uploads.Upload(ctx, filename, contentType, r, size)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return url, nil
}

// AdminLogin verifies the admin password and issues a session token.
func (s *Service) AdminLogin(ctx context.Context, password string) (Session, error) {
	if s.cfg.AdminPasswordHash == "" {
		return Session{}, domainError(http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Admin authentication not configured", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password", nil)
	}

	expiresAt := time.Now().Add(s.cfg.SessionTTL)
	token, err := auth.IssueToken([]byte(s.cfg.SessionSecret), auth.Claims{
		Sub:  "admin",
		Role: "admin",
		JTI:  util.NewID("jti"),
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.SaveAdminSession(ctx, auth.HashToken(token), "admin", expiresAt); err != nil {
			return Session{}, fmt.Errorf("save session: %w", err)
		}
	}

	return Session{
		Authenticated: true,
		Subject:       "admin",
		Role:          "admin",
		Token:         token,
		ExpiresAt:     expiresAt,
	}, nil
}

// SessionFromToken validates a bearer token and returns the session it
// represents. When a session store is configured the token must also still be
// present there, so logout revokes it immediately.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.SessionSecret), token)
	if err != nil {
		return Session{}, err
	}

	if s.sessions != nil {
		if _, err := s.sessions.LookupAdminSession(ctx, auth.HashToken(token)); err != nil {
			return Session{}, auth.ErrInvalidToken
		}
	}

	return Session{
		Authenticated: true,
		Subject:       claims.Sub,
		Role:          claims.Role,
		Token:         token,
		ExpiresAt:     time.Unix(claims.Exp, 0),
	}, nil
}

// AdminLogout revokes the session behind the token. Invalid tokens are
// ignored; logout always succeeds from the client's point of view.
func (s *Service) AdminLogout(ctx context.Context, token string) error {
	if token == "" || s.sessions == nil {
		return nil
	}
	if _, err := auth.ParseToken([]byte(s.cfg.SessionSecret), token); err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			return nil
		}
		return err
	}
	return s.sessions.RevokeAdminSession(ctx, auth.HashToken(token))
}

func (s *Service) indexProject(item store.Project) {
	if s.search == nil {
		return
	}
	overview := item.Sections[content.SectionOverview]
	s.search.IndexProject(search.ProjectRecord{
		ID:           fmt.Sprintf("%d", item.ID),
		Slug:         item.Slug,
		Title:        item.Title,
		Description:  item.Description,
		Overview:     overview,
		Technologies: item.Technologies,
		Categories:   item.Categories,
		Achievements: item.Achievements,
	})
}

func (s *Service) availableSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		if i > 50 {
			return base + "-" + util.NewID("")[:8], nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	return strings.Trim(nonSlugChars.ReplaceAllString(lowered, "-"), "-")
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}

func sanitizeList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func sanitizeSections(sections map[content.SectionID]string) map[content.SectionID]string {
	if sections == nil {
		return nil
	}
	cleaned := make(map[content.SectionID]string, len(sections))
	for id, body := range sections {
		if content.Lookup(id) == nil {
			continue
		}
		cleaned[id] = body
	}
	return cleaned
}

func sanitizeOrder(order []string) []string {
	cleaned := make([]string, 0, len(order))
	for _, key := range order {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func sanitizeContentTypes(types map[string]string) map[string]string {
	if types == nil {
		return nil
	}
	cleaned := make(map[string]string, len(types))
	for key, value := range types {
		if value != string(content.TypeMarkdown) && value != string(content.TypeText) {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

func sanitizeSnippets(snippets []content.CodeSnippet) []content.CodeSnippet {
	cleaned := make([]content.CodeSnippet, 0, len(snippets))
	for _, snippet := range snippets {
		if strings.TrimSpace(snippet.Code) == "" {
			continue
		}
		if strings.TrimSpace(snippet.ID) == "" {
			snippet.ID = uuid.NewString()
		}
		if strings.TrimSpace(snippet.Language) == "" {
			snippet.Language = "text"
		}
		cleaned = append(cleaned, snippet)
	}
	return cleaned
}
