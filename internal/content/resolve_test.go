package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modularView() ProjectView {
	return ProjectView{
		Sections: map[SectionID]string{
			SectionObjective:          "Build a portfolio",
			SectionTheoryApproach:     "Start simple",
			SectionTechnicalDeepDive:  "Postgres behind an API",
			SectionChallengesSolution: "Scope creep",
			SectionReview:             "Went well",
		},
		Achievements: []string{"Shipped", "Documented"},
		Technologies: []string{"Go", "Postgres"},
		ShowTOC:      true,
	}
}

func sectionIDs(sections []ResolvedSection) []SectionID {
	ids := make([]SectionID, 0, len(sections))
	for _, section := range sections {
		ids = append(ids, section.ID)
	}
	return ids
}

func TestResolveSections_CanonicalOrder(t *testing.T) {
	sections := ResolveSections(modularView())

	assert.Equal(t, []SectionID{
		SectionObjective,
		StructuralAchievements,
		StructuralTechnologies,
		SectionTheoryApproach,
		SectionTechnicalDeepDive,
		SectionChallengesSolution,
		SectionReview,
	}, sectionIDs(sections))
}

func TestResolveSections_StoredOrderOverrides(t *testing.T) {
	view := modularView()
	view.SectionsOrder = []string{"review", "objective", "technologies"}

	sections := ResolveSections(view)

	assert.Equal(t, []SectionID{SectionReview, SectionObjective, StructuralTechnologies}, sectionIDs(sections))
}

func TestResolveSections_UnknownOrderKeysIgnored(t *testing.T) {
	view := modularView()
	view.SectionsOrder = []string{"objective", "no_such_section", "review"}

	sections := ResolveSections(view)

	assert.Equal(t, []SectionID{SectionObjective, SectionReview}, sectionIDs(sections))
}

func TestResolveSections_VisibilityRoundTrip(t *testing.T) {
	// A section with content and no visibility entry is shown; the same
	// section with an explicit false entry is hidden.
	for _, id := range RegisteredSections() {
		view := ProjectView{
			Sections:      map[SectionID]string{id: "some content"},
			SectionsOrder: []string{string(id)},
		}
		sections := ResolveSections(view)
		require.Len(t, sections, 1, "section %s with content should be shown", id)
		assert.Equal(t, id, sections[0].ID)

		view.Visibility = map[string]bool{string(id): false}
		assert.Empty(t, ResolveSections(view), "section %s hidden by visibility=false", id)

		view.Visibility = map[string]bool{string(id): true}
		assert.Len(t, ResolveSections(view), 1, "section %s shown by visibility=true", id)
	}
}

func TestResolveSections_BlankContentSkipped(t *testing.T) {
	view := modularView()
	view.Sections[SectionReview] = "   \n  "

	assert.NotContains(t, sectionIDs(ResolveSections(view)), SectionReview)
}

func TestResolveSections_ContentTypeDefaultsAndOverride(t *testing.T) {
	view := modularView()
	view.ContentTypes = map[string]string{"objective": "text"}

	sections := ResolveSections(view)

	require.Equal(t, SectionObjective, sections[0].ID)
	assert.Equal(t, TypeText, sections[0].ContentType)
	assert.Equal(t, TypeMarkdown, sections[3].ContentType)
}

func TestResolveSections_ListSectionsFilterBlanks(t *testing.T) {
	view := modularView()
	view.Technologies = []string{"Go", "", "  "}

	sections := ResolveSections(view)

	var technologies *ResolvedSection
	for i := range sections {
		if sections[i].ID == StructuralTechnologies {
			technologies = &sections[i]
		}
	}
	require.NotNil(t, technologies)
	assert.Equal(t, []string{"Go"}, technologies.Items)
	assert.Equal(t, KindList, technologies.Kind)
}

func TestResolveSections_CodeSnippets(t *testing.T) {
	view := modularView()
	view.CodeSnippets = []CodeSnippet{{ID: "snip-1", Language: "go", Code: "package main"}}

	sections := ResolveSections(view)

	last := sections[len(sections)-1]
	assert.Equal(t, StructuralCodeSnippets, last.ID)
	assert.Equal(t, KindCode, last.Kind)
	require.Len(t, last.Snippets, 1)
	assert.Equal(t, "go", last.Snippets[0].Language)
}

func TestResolveSections_LegacyFallback(t *testing.T) {
	view := ProjectView{
		Description:  "Intro text\n\nTHEORY & APPROACH:\nSome theory\n\nLESSONS LEARNED:\nShip earlier",
		Achievements: []string{"Finished"},
	}

	sections := ResolveSections(view)
	ids := sectionIDs(sections)

	assert.Contains(t, ids, SectionTheoryApproach)
	assert.Contains(t, ids, SectionReview) // lessons_learned remaps to review
	assert.Contains(t, ids, StructuralAchievements)

	for _, section := range sections {
		if section.ID == SectionTheoryApproach {
			assert.Equal(t, "Some theory", section.Content)
		}
	}
}

func TestResolveSections_ModularContentDisablesLegacyParse(t *testing.T) {
	view := ProjectView{
		Description: "Intro\n\nTHEORY & APPROACH:\nOld theory",
		Sections:    map[SectionID]string{SectionObjective: "New objective"},
	}

	ids := sectionIDs(ResolveSections(view))

	assert.Equal(t, []SectionID{SectionObjective}, ids)
}

func TestBuildTOC(t *testing.T) {
	view := modularView()
	view.TOCPosition = ""

	outline := BuildTOC(view)

	assert.True(t, outline.Show)
	assert.Equal(t, "left", outline.Position)
	require.Len(t, outline.Entries, 7)
	assert.Equal(t, OutlineEntry{ID: SectionObjective, Title: "Objective"}, outline.Entries[0])
}

func TestBuildTOC_HonorsVisibilityAndOrder(t *testing.T) {
	view := modularView()
	view.SectionsOrder = []string{"review", "objective"}
	view.Visibility = map[string]bool{"objective": false}

	outline := BuildTOC(view)

	require.Len(t, outline.Entries, 1)
	assert.Equal(t, SectionReview, outline.Entries[0].ID)
}
