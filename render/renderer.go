// Package render turns untrusted page markup into stored page content: the
// sanitized, cross-linked HTML, a table of contents and a plain-text rendition.
package render

import (
	"fmt"
)

// Output is everything one transformation produces for storage.
type Output struct {
	HTML string // Sanitized content with wiki links and heading ids
	TOC  string // Nested heading list, "" when the page has no headings
	Text string // Plain text for previews and the search index

	Links []string // Distinct page names linked from HTML
}

// Pipeline runs the full transformation. It holds no per-call state, so one
// Pipeline can serve any number of goroutines.
type Pipeline struct {
	sanitizer *Sanitizer
}

// NewPipeline creates a Pipeline. A nil sanitizer uses NewSanitizer.
func NewPipeline(sanitizer *Sanitizer) *Pipeline {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &Pipeline{sanitizer: sanitizer}
}

// Sanitizer returns the sanitizer used by the pipeline.
func (p *Pipeline) Sanitizer() *Sanitizer {
	return p.sanitizer
}

// Transform sanitizes raw, links WikiWords, assigns heading ids, builds the
// table of contents and extracts text, all from a single parsed tree. It is
// CPU bound and blocks until done.
func (p *Pipeline) Transform(raw string) (*Output, error) {
	doc, err := Parse(p.sanitizer.Sanitize(raw))
	if err != nil {
		return nil, err
	}

	RewriteWikiLinks(doc)
	links := LinkTargets(doc)

	headings := Headings(doc)
	slugs := AssignSlugs(headings)
	toc := BuildTOC(headings, slugs)

	content, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	text, err := ExtractText(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	return &Output{HTML: content, TOC: toc, Text: text, Links: links}, nil
}
