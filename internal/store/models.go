package store

import (
	"time"

	"portfolio/api/internal/content"
)

// Project is one row of the projects table. The modular section bodies live
// in Sections keyed by registry id; slug is unique and immutable after
// creation; ContentVersion increases by exactly one per successful update.
type Project struct {
	ID              int                          `json:"id"`
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
	ShowTOC         bool                         `json:"show_toc"`
	TOCPosition     string                       `json:"toc_position"`
	ContentVersion  int                          `json:"content_version"`
	LastEdited      *time.Time                   `json:"last_edited"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

// View projects the record into the slice the content package consumes.
func (p Project) View() content.ProjectView {
	return content.ProjectView{
		Description:   p.Description,
		Sections:      p.Sections,
		Achievements:  p.Achievements,
		Technologies:  p.Technologies,
		CodeSnippets:  p.CodeSnippets,
		SectionsOrder: p.SectionsOrder,
		Visibility:    p.Visibility,
		ContentTypes:  p.ContentTypes,
		ShowTOC:       p.ShowTOC,
		TOCPosition:   p.TOCPosition,
	}
}
