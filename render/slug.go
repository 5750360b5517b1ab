package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fallbackSlug is used for headings whose text has no slug-safe characters.
const fallbackSlug = "heading"

// Heading is one non-empty h1-h6 element in document order.
type Heading struct {
	Level int
	Text  string
	Node  *html.Node
}

// Slugs maps each heading element to the id assigned to it.
type Slugs map[*html.Node]string

// Headings selects every h1-h6 element with non-empty trimmed text.
func Headings(doc *Document) []Heading {
	var headings []Heading
	goquery.NewDocumentFromNode(doc.root).
		Find("h1, h2, h3, h4, h5, h6").
		Each(func(_ int, s *goquery.Selection) {
			n := s.Nodes[0]
			text := strings.TrimSpace(textContent(n))
			if text == "" {
				return
			}
			headings = append(headings, Heading{
				Level: int(n.Data[1] - '0'),
				Text:  text,
				Node:  n,
			})
		})
	return headings
}

// Slugify lowercases text, turns whitespace runs into single hyphens, drops
// everything outside [a-z0-9-] and trims hyphens from both ends.
func Slugify(text string) string {
	lower := cases.Lower(language.Und).String(text)

	var b strings.Builder
	inSpace := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "-")
}

// AssignSlugs gives every heading a unique id attribute. The first heading
// with a given base slug keeps it; the Nth repeat gets "-N".
func AssignSlugs(headings []Heading) Slugs {
	slugs := make(Slugs, len(headings))
	seen := map[string]int{}
	used := map[string]bool{}

	for _, h := range headings {
		base := Slugify(h.Text)
		if base == "" {
			base = fallbackSlug
		}

		seen[base]++
		n := seen[base]
		slug := base
		if n > 1 {
			slug = base + "-" + strconv.Itoa(n)
		}
		for used[slug] {
			n++
			slug = base + "-" + strconv.Itoa(n)
		}
		used[slug] = true

		setAttr(h.Node, "id", slug)
		slugs[h.Node] = slug
	}

	return slugs
}
