package render

import (
	"html"
	"strings"
)

// BuildTOC renders headings as nested <ul><li> lists linking to their slugs.
// It returns "" when there are no headings.
//
// A deeper heading always opens exactly one new level, however many levels it
// skips. A shallower heading unwinds until the open level is not deeper than
// it, becomes a sibling there, and takes over that level.
func BuildTOC(headings []Heading, slugs Slugs) string {
	if len(headings) == 0 {
		return ""
	}

	var b strings.Builder
	var stack []int

	for _, h := range headings {
		if len(stack) == 0 {
			b.WriteString("<ul><li>")
			b.WriteString(tocItem(h, slugs))
			stack = append(stack, h.Level)
			continue
		}

		top := stack[len(stack)-1]
		switch {
		case h.Level > top:
			b.WriteString("<ul><li>")
			stack = append(stack, h.Level)
		case h.Level == top:
			b.WriteString("</li><li>")
		default:
			// The outermost list stays open so the result is one tree.
			for len(stack) > 1 && stack[len(stack)-1] > h.Level {
				b.WriteString("</li></ul>")
				stack = stack[:len(stack)-1]
			}
			b.WriteString("</li><li>")
			stack[len(stack)-1] = h.Level
		}
		b.WriteString(tocItem(h, slugs))
	}

	for range stack {
		b.WriteString("</li></ul>")
	}

	return b.String()
}

func tocItem(h Heading, slugs Slugs) string {
	text := html.EscapeString(h.Text)
	slug, ok := slugs[h.Node]
	if !ok {
		return text
	}
	return `<a href="#` + html.EscapeString(slug) + `">` + text + `</a>`
}
