package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLegacyDescription_HeaderSplit(t *testing.T) {
	description := "Intro text\n\nTHEORY & APPROACH:\nSome theory\n\nCHALLENGES & SOLUTIONS:\nSome challenge"

	sections := ParseLegacyDescription(description)

	assert.Equal(t, "Intro text", sections["overview"])
	assert.Equal(t, "Some theory", sections["theory_and_approach"])
	assert.Equal(t, "Some challenge", sections["challenges_and_solutions"])
	assert.Len(t, sections, 3)
}

func TestParseLegacyDescription_LineScanFallback(t *testing.T) {
	// Headers without a preceding blank line are only found by the line scan.
	description := "First part\nTECHNICAL DEEP DIVE:\nDetails here\nmore details\nLESSONS LEARNED:\nUse smaller batches"

	sections := ParseLegacyDescription(description)

	assert.Equal(t, "First part", sections["overview"])
	assert.Equal(t, "Details here\nmore details", sections["technical_deep_dive"])
	assert.Equal(t, "Use smaller batches", sections["lessons_learned"])
}

func TestParseLegacyDescription_LowercaseHeaderIsBody(t *testing.T) {
	description := "Overview line\nTheory & Approach:\nnot a section"

	sections := ParseLegacyDescription(description)

	require.Contains(t, sections, "overview")
	assert.Equal(t, "Overview line\nTheory & Approach:\nnot a section", sections["overview"])
	assert.Len(t, sections, 1)
}

func TestParseLegacyDescription_NoHeadersWholeTextIsOverview(t *testing.T) {
	sections := ParseLegacyDescription("  Just a plain description.  ")

	assert.Equal(t, map[string]string{"overview": "Just a plain description."}, sections)
}

func TestParseLegacyDescription_HeaderOnlyInput(t *testing.T) {
	// A lone header with no body yields no accumulated content; the whole
	// trimmed input becomes the overview.
	sections := ParseLegacyDescription("REVIEW:")

	assert.Equal(t, "REVIEW:", sections["overview"])
}

func TestRemapLegacyKey(t *testing.T) {
	assert.Equal(t, SectionTheoryApproach, RemapLegacyKey("theory_and_approach"))
	assert.Equal(t, SectionChallengesSolution, RemapLegacyKey("challenges_and_solutions"))
	assert.Equal(t, SectionReview, RemapLegacyKey("lessons_learned"))
	assert.Equal(t, SectionID("overview"), RemapLegacyKey("overview"))
	assert.Equal(t, SectionID("unknown_key"), RemapLegacyKey("unknown_key"))
}
