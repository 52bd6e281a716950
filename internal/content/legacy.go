package content

import (
	"regexp"
	"strings"
)

// A legacy description embeds multiple sections in a single text blob using
// all-caps headers terminated by a colon, e.g.
//
//	Intro text
//
//	THEORY & APPROACH:
//	Some theory
//
// Headers are matched case-sensitively: a line with any lowercase letter is
// body content, not a header.
var (
	legacyHeaderSplit = regexp.MustCompile(`\n\n([A-Z\s&]+):\n`)
	legacyHeaderLine  = regexp.MustCompile(`^[A-Z\s&]+:$`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// legacyKeyRemap translates the header-derived keys the old free-text format
// produced into the registry's section ids. Applied by the consumer
// (section resolution), not by the parser itself.
var legacyKeyRemap = map[string]SectionID{
	"theory_and_approach":      SectionTheoryApproach,
	"challenges_and_solutions": SectionChallengesSolution,
	"lessons_learned":          SectionReview,
}

// ParseLegacyDescription splits a legacy free-text description into named
// sections. Keys are derived mechanically from whatever header text appears:
// lowercased, space runs replaced with underscores, "&" replaced with "and".
// Text before the first header becomes the "overview" section. When no header
// is found at all, the whole trimmed input becomes the overview.
func ParseLegacyDescription(description string) map[string]string {
	sections := make(map[string]string)

	parts := splitOnHeaders(description)
	if len(parts) > 1 {
		sections["overview"] = strings.TrimSpace(parts[0])
		for i := 1; i+1 < len(parts); i += 2 {
			key := legacySectionKey(parts[i])
			sections[key] = strings.TrimSpace(parts[i+1])
		}
		return sections
	}

	// No blank-line-delimited header found; fall back to a line scan where a
	// header line flushes the accumulated section before it.
	currentSection := "overview"
	var currentContent []string
	for _, line := range strings.Split(description, "\n") {
		if legacyHeaderLine.MatchString(line) {
			if len(currentContent) > 0 {
				sections[currentSection] = strings.TrimSpace(strings.Join(currentContent, "\n"))
			}
			currentSection = legacySectionKey(strings.TrimSuffix(line, ":"))
			currentContent = nil
			continue
		}
		currentContent = append(currentContent, line)
	}
	if len(currentContent) > 0 {
		sections[currentSection] = strings.TrimSpace(strings.Join(currentContent, "\n"))
	}

	if len(sections) == 0 {
		sections["overview"] = strings.TrimSpace(description)
	}
	return sections
}

// RemapLegacyKey resolves a parser-produced key to its registry section id.
func RemapLegacyKey(key string) SectionID {
	if mapped, ok := legacyKeyRemap[key]; ok {
		return mapped
	}
	return SectionID(key)
}

// splitOnHeaders reproduces a capture-group split: the result alternates
// [preamble, header1, body1, header2, body2, ...].
func splitOnHeaders(description string) []string {
	matches := legacyHeaderSplit.FindAllStringSubmatchIndex(description, -1)
	if len(matches) == 0 {
		return []string{description}
	}

	parts := make([]string, 0, 2*len(matches)+1)
	previousEnd := 0
	for _, match := range matches {
		parts = append(parts, description[previousEnd:match[0]])
		parts = append(parts, description[match[2]:match[3]])
		previousEnd = match[1]
	}
	parts = append(parts, description[previousEnd:])
	return parts
}

func legacySectionKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = whitespaceRun.ReplaceAllString(key, "_")
	key = strings.ReplaceAll(key, "&", "and")
	return key
}
