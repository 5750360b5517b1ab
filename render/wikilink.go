package render

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WikiPrefix is the path under which wiki pages are served.
const WikiPrefix = "/wiki/"

// escapeMarker suppresses the link for the WikiWord that follows it.
const escapeMarker = '!'

var (
	wikiWordPattern *regexp.Regexp
	wikiWordOnce    sync.Once
)

// wikiWords returns the shared WikiWord matcher, compiling it on first use.
// A compile failure is a build defect and panics.
func wikiWords() *regexp.Regexp {
	wikiWordOnce.Do(func() {
		wikiWordPattern = regexp.MustCompile(`(?:[A-Z][a-z0-9]+){2,}`)
	})
	return wikiWordPattern
}

// replacement is a text node scheduled to be swapped for new nodes.
type replacement struct {
	target *html.Node
	nodes  []*html.Node
}

// RewriteWikiLinks turns WikiWords in text nodes into links to their pages.
// Text already inside an anchor is left alone, as is any WikiWord directly
// preceded by '!'. It returns the number of links created.
//
// Targets are collected before the tree is touched so that newly inserted
// anchors are never scanned again.
func RewriteWikiLinks(doc *Document) int {
	var pending []replacement
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			return
		}
		if n.Type == html.TextNode {
			if nodes := linkWikiWords(n.Data); nodes != nil {
				pending = append(pending, replacement{target: n, nodes: nodes})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc.root)

	links := 0
	for _, r := range pending {
		parent := r.target.Parent
		for _, n := range r.nodes {
			if n.Type == html.ElementNode {
				links++
			}
			parent.InsertBefore(n, r.target)
		}
		parent.RemoveChild(r.target)
	}
	return links
}

// linkWikiWords splits text around its linkable WikiWords. It returns nil
// when nothing in text needs a link.
func linkWikiWords(text string) []*html.Node {
	matches := wikiWords().FindAllStringIndex(text, -1)
	if matches == nil {
		return nil
	}

	var nodes []*html.Node
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && text[start-1] == escapeMarker {
			continue
		}
		if start > last {
			nodes = append(nodes, textNode(text[last:start]))
		}
		nodes = append(nodes, wikiLinkNode(text[start:end]))
		last = end
	}
	if nodes == nil {
		return nil
	}
	if last < len(text) {
		nodes = append(nodes, textNode(text[last:]))
	}
	return nodes
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func wikiLinkNode(word string) *html.Node {
	a := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr:     []html.Attribute{{Key: "href", Val: WikiPrefix + word}},
	}
	a.AppendChild(textNode(word))
	return a
}

// LinkTargets lists the distinct page names linked from doc through
// WikiPrefix, in document order. Hand-written links count as well as
// rewritten WikiWords; fragments and queries are ignored.
func LinkTargets(doc *Document) []string {
	var targets []string
	seen := map[string]bool{}

	goquery.NewDocumentFromNode(doc.root).
		Find(`a[href^="` + WikiPrefix + `"]`).
		Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			name := strings.TrimPrefix(href, WikiPrefix)
			if i := strings.IndexAny(name, "#?"); i >= 0 {
				name = name[:i]
			}
			if unescaped, err := url.PathUnescape(name); err == nil {
				name = unescaped
			}
			if name == "" || seen[name] {
				return
			}
			seen[name] = true
			targets = append(targets, name)
		})

	return targets
}
