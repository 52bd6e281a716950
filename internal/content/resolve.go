package content

import "strings"

// Structural pseudo-sections. These render the database-native lists and the
// code snippets; they never go through the markdown path.
const (
	StructuralAchievements SectionID = "achievements"
	StructuralTechnologies SectionID = "technologies"
	StructuralCodeSnippets SectionID = "code_snippets"
)

// SectionKind distinguishes prose sections from the structural ones.
type SectionKind string

const (
	KindProse SectionKind = "prose"
	KindList  SectionKind = "list"
	KindCode  SectionKind = "code"
)

// CodeSnippet is one entry of a project's code_snippets collection.
type CodeSnippet struct {
	ID          string `json:"id"`
	Language    string `json:"language"`
	Code        string `json:"code"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectView is the slice of a project record that section resolution needs.
type ProjectView struct {
	Description   string
	Sections      map[SectionID]string
	Achievements  []string
	Technologies  []string
	CodeSnippets  []CodeSnippet
	SectionsOrder []string
	Visibility    map[string]bool
	ContentTypes  map[string]string
	ShowTOC       bool
	TOCPosition   string
}

// ResolvedSection is one display-ready section in its final position.
type ResolvedSection struct {
	ID          SectionID     `json:"id"`
	Title       string        `json:"title"`
	Icon        string        `json:"icon"`
	Kind        SectionKind   `json:"kind"`
	Content     string        `json:"content,omitempty"`
	ContentType ContentType   `json:"contentType,omitempty"`
	Items       []string      `json:"items,omitempty"`
	Snippets    []CodeSnippet `json:"snippets,omitempty"`
}

// canonicalOrder is the default value of sections_order: the sequence the
// project page renders when a project defines no explicit order.
var canonicalOrder = []SectionID{
	SectionObjective,
	StructuralAchievements,
	StructuralTechnologies,
	SectionTheoryApproach,
	SectionTechnicalDeepDive,
	SectionChallengesSolution,
	SectionReview,
	SectionFutureImprovements,
	StructuralCodeSnippets,
}

// ResolveSections computes the ordered, display-eligible section list for a
// project. A stored sections_order overrides the canonical default; unknown
// keys in it are skipped. A section is eligible only when its content is
// non-blank after trimming and its visibility entry is absent or true.
// Projects with no modular content but a non-empty legacy description fall
// back to the parsed description.
func ResolveSections(view ProjectView) []ResolvedSection {
	sections := view.Sections
	if !hasModularContent(sections) && strings.TrimSpace(view.Description) != "" {
		sections = legacySections(view.Description)
	}

	resolved := make([]ResolvedSection, 0, len(canonicalOrder))
	for _, id := range resolutionOrder(view.SectionsOrder) {
		if !visible(view.Visibility, id) {
			continue
		}
		switch id {
		case StructuralAchievements:
			if section, ok := listSection(id, SectionKeyAchievements, view.Achievements); ok {
				resolved = append(resolved, section)
			}
		case StructuralTechnologies:
			if section, ok := listSection(id, SectionTechUsed, view.Technologies); ok {
				resolved = append(resolved, section)
			}
		case StructuralCodeSnippets:
			if len(view.CodeSnippets) == 0 {
				continue
			}
			resolved = append(resolved, ResolvedSection{
				ID:       id,
				Title:    "Code Snippets",
				Icon:     "code",
				Kind:     KindCode,
				Snippets: view.CodeSnippets,
			})
		default:
			cfg := Lookup(id)
			if cfg == nil {
				continue
			}
			body := strings.TrimSpace(sections[id])
			if body == "" {
				continue
			}
			resolved = append(resolved, ResolvedSection{
				ID:          id,
				Title:       cfg.Title,
				Icon:        cfg.Icon,
				Kind:        KindProse,
				Content:     body,
				ContentType: contentTypeFor(view.ContentTypes, *cfg),
			})
		}
	}
	return resolved
}

// Outline is the navigable table of contents derived from the resolved list.
type Outline struct {
	Show     bool           `json:"show"`
	Position string         `json:"position"`
	Entries  []OutlineEntry `json:"entries"`
}

type OutlineEntry struct {
	ID    SectionID `json:"id"`
	Title string    `json:"title"`
}

// BuildTOC derives the outline from the same ordered, visible section list the
// renderer uses.
func BuildTOC(view ProjectView) Outline {
	position := view.TOCPosition
	if position == "" {
		position = "left"
	}
	outline := Outline{Show: view.ShowTOC, Position: position, Entries: []OutlineEntry{}}
	for _, section := range ResolveSections(view) {
		outline.Entries = append(outline.Entries, OutlineEntry{ID: section.ID, Title: section.Title})
	}
	return outline
}

func resolutionOrder(stored []string) []SectionID {
	if len(stored) == 0 {
		return canonicalOrder
	}
	order := make([]SectionID, 0, len(stored))
	for _, key := range stored {
		order = append(order, SectionID(key))
	}
	return order
}

func visible(visibility map[string]bool, id SectionID) bool {
	if visibility == nil {
		return true
	}
	shown, ok := visibility[string(id)]
	return !ok || shown
}

func listSection(id SectionID, configID SectionID, items []string) (ResolvedSection, bool) {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return ResolvedSection{}, false
	}
	cfg := Lookup(configID)
	return ResolvedSection{
		ID:    id,
		Title: cfg.Title,
		Icon:  cfg.Icon,
		Kind:  KindList,
		Items: kept,
	}, true
}

func contentTypeFor(types map[string]string, cfg SectionConfig) ContentType {
	if declared, ok := types[string(cfg.ID)]; ok {
		if declared == string(TypeText) {
			return TypeText
		}
		if declared == string(TypeMarkdown) {
			return TypeMarkdown
		}
	}
	return cfg.DefaultContentType
}

func hasModularContent(sections map[SectionID]string) bool {
	for _, body := range sections {
		if strings.TrimSpace(body) != "" {
			return true
		}
	}
	return false
}

func legacySections(description string) map[SectionID]string {
	parsed := ParseLegacyDescription(description)
	sections := make(map[SectionID]string, len(parsed))
	for key, body := range parsed {
		sections[RemapLegacyKey(key)] = body
	}
	return sections
}
