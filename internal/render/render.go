// Package render turns stored article HTML into the forms clients display.
// Article content is never modified; every function works on a copy.
package render

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	ugc       *bluemonday.Policy
	strict    *bluemonday.Policy
	converter *md.Converter
}

func New() *Renderer {
	return &Renderer{
		ugc:       bluemonday.UGCPolicy(),
		strict:    bluemonday.StrictPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

// Preview returns content with scripts, event handlers and unsafe URLs removed.
func (r *Renderer) Preview(content string) string {
	return r.ugc.Sanitize(content)
}

// Markdown converts sanitized content to markdown.
func (r *Renderer) Markdown(content string) (string, error) {
	markdown, err := r.converter.ConvertString(r.Preview(content))
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return markdown, nil
}

// Excerpt returns at most limit runes of the content's plain text.
func (r *Renderer) Excerpt(content string, limit int) string {
	text := html.UnescapeString(r.strict.Sanitize(content))
	text = strings.Join(strings.Fields(text), " ")

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
