// Package content implements the modular project-content model: the section
// registry, the legacy description parser, section resolution for rendering,
// and the table-of-contents builder.
package content

// SectionID identifies one named content section of a project. The full key
// set is fixed at compile time by the registry below; anything outside it is
// skipped by the renderer rather than treated as an error.
type SectionID string

const (
	SectionOverview           SectionID = "overview"
	SectionObjective          SectionID = "objective"
	SectionKeyAchievements    SectionID = "key_achievements"
	SectionTheoryApproach     SectionID = "theory_approach"
	SectionTechUsed           SectionID = "tech_used"
	SectionTechnicalDeepDive  SectionID = "technical_deep_dive"
	SectionChallengesSolution SectionID = "challenges_solutions"
	SectionReview             SectionID = "review"
	SectionFutureImprovements SectionID = "future_improvements"
)

// ContentType declares how a section body is interpreted.
type ContentType string

const (
	TypeMarkdown ContentType = "markdown"
	TypeText     ContentType = "text"
)

// SectionConfig is the display metadata for one registered section.
// Icon carries the icon name the frontend maps to its icon set.
type SectionConfig struct {
	ID                 SectionID   `json:"id"`
	Title              string      `json:"title"`
	Icon               string      `json:"icon"`
	DefaultContentType ContentType `json:"defaultContentType"`
	Description        string      `json:"description"`
}

var sectionConfigs = map[SectionID]SectionConfig{
	SectionOverview: {
		ID:                 SectionOverview,
		Title:              "Overview",
		Icon:               "book-open",
		DefaultContentType: TypeMarkdown,
		Description:        "Project overview and summary",
	},
	SectionObjective: {
		ID:                 SectionObjective,
		Title:              "Objective",
		Icon:               "target",
		DefaultContentType: TypeMarkdown,
		Description:        "Project goals and objectives",
	},
	SectionKeyAchievements: {
		ID:                 SectionKeyAchievements,
		Title:              "Key Achievements",
		Icon:               "star",
		DefaultContentType: TypeMarkdown,
		Description:        "Key accomplishments and results",
	},
	SectionTheoryApproach: {
		ID:                 SectionTheoryApproach,
		Title:              "Theory & Approach",
		Icon:               "brain",
		DefaultContentType: TypeMarkdown,
		Description:        "Theoretical background and methodology",
	},
	SectionTechUsed: {
		ID:                 SectionTechUsed,
		Title:              "Technologies Used",
		Icon:               "zap",
		DefaultContentType: TypeMarkdown,
		Description:        "Technologies, frameworks, and tools",
	},
	SectionTechnicalDeepDive: {
		ID:                 SectionTechnicalDeepDive,
		Title:              "Technical Deep Dive",
		Icon:               "code",
		DefaultContentType: TypeMarkdown,
		Description:        "Detailed technical implementation",
	},
	SectionChallengesSolution: {
		ID:                 SectionChallengesSolution,
		Title:              "Challenges & Solutions",
		Icon:               "alert-triangle",
		DefaultContentType: TypeMarkdown,
		Description:        "Problems encountered and solutions",
	},
	SectionReview: {
		ID:                 SectionReview,
		Title:              "Review",
		Icon:               "eye",
		DefaultContentType: TypeMarkdown,
		Description:        "Project review and evaluation",
	},
	SectionFutureImprovements: {
		ID:                 SectionFutureImprovements,
		Title:              "Future Improvements",
		Icon:               "trending-up",
		DefaultContentType: TypeMarkdown,
		Description:        "Potential improvements and next steps",
	},
}

// DefaultSectionsOrder is the canonical render order used when a project does
// not define an explicit sections_order.
var DefaultSectionsOrder = []SectionID{
	SectionObjective,
	SectionTheoryApproach,
	SectionTechnicalDeepDive,
	SectionChallengesSolution,
	SectionReview,
	SectionFutureImprovements,
}

// Lookup returns the registry entry for id, or nil when the id is not
// registered. Callers treat nil as "skip this section".
func Lookup(id SectionID) *SectionConfig {
	cfg, ok := sectionConfigs[id]
	if !ok {
		return nil
	}
	return &cfg
}

// RegisteredSections returns every registered section id in a stable order.
func RegisteredSections() []SectionID {
	return []SectionID{
		SectionOverview,
		SectionObjective,
		SectionKeyAchievements,
		SectionTheoryApproach,
		SectionTechUsed,
		SectionTechnicalDeepDive,
		SectionChallengesSolution,
		SectionReview,
		SectionFutureImprovements,
	}
}

// DefaultSectionsVisibility returns the all-visible map over every registered id.
func DefaultSectionsVisibility() map[SectionID]bool {
	visibility := make(map[SectionID]bool, len(sectionConfigs))
	for id := range sectionConfigs {
		visibility[id] = true
	}
	return visibility
}

// DefaultContentTypes returns the all-markdown map over every registered id.
func DefaultContentTypes() map[SectionID]ContentType {
	types := make(map[SectionID]ContentType, len(sectionConfigs))
	for id, cfg := range sectionConfigs {
		types[id] = cfg.DefaultContentType
	}
	return types
}
