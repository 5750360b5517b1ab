package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Bullet prefixes each list item in extracted text.
const Bullet = "• "

// ExtractText renders the document as plain text for previews and search.
// Paragraphs and headings end with a blank line, list items become bullet
// lines, and trailing whitespace is trimmed from every line.
func ExtractText(doc *Document) (string, error) {
	var b strings.Builder
	writeText(&b, doc.root)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))

	if !utf8.ValidString(text) {
		return "", ErrInvalidEncoding
	}
	return text, nil
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		writeChildren(b, n)
		b.WriteString("\n\n")
	case atom.Br:
		b.WriteString("\n")
	case atom.Li:
		b.WriteString(Bullet)
		writeChildren(b, n)
		b.WriteString("\n")
	case atom.Ul, atom.Ol:
		writeChildren(b, n)
		b.WriteString("\n")
	default:
		writeChildren(b, n)
	}
}

func writeChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}
