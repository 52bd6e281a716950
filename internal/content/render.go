package content

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
)

// RenderSection renders a section body according to its declared content
// type. It never fails past its own boundary: when markdown conversion
// errors, the escaped raw content is returned so one bad section cannot break
// the page. Inline math spans ($...$) pass through untouched for the
// client-side math renderer.
func RenderSection(content string, contentType ContentType) string {
	if contentType == TypeText {
		return renderPlainText(content)
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return renderPlainText(content)
	}
	return buf.String()
}

func renderPlainText(content string) string {
	paragraphs := strings.Split(strings.TrimSpace(content), "\n\n")
	var builder strings.Builder
	for _, paragraph := range paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		builder.WriteString("<p>")
		builder.WriteString(strings.ReplaceAll(html.EscapeString(trimmed), "\n", "<br>\n"))
		builder.WriteString("</p>\n")
	}
	return builder.String()
}
