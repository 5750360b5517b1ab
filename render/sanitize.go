package render

import (
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// LinkRel is forced onto every anchor that survives sanitization.
const LinkRel = "noopener noreferrer"

// Sanitizer cleans untrusted HTML against a fixed allow-list.
// It is safe for concurrent use; the policy is never mutated after construction.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the wiki's allow-list: the UGC defaults plus video and
// source, class and id on any element, and mailto links.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()

	p.AllowElements("video", "source")
	p.AllowAttrs("controls", "width", "height", "src").OnElements("video")
	p.AllowAttrs("src", "type").OnElements("source")
	p.AllowAttrs("class", "id").Globally()

	p.AllowURLSchemes("mailto")
	p.AllowRelativeURLs(true)

	// rel is rewritten wholesale by forceLinkRel below.
	p.RequireNoFollowOnLinks(false)

	return &Sanitizer{policy: p}
}

// Sanitize strips everything outside the allow-list and normalizes the rel
// attribute of every anchor. It never fails.
func (s *Sanitizer) Sanitize(raw string) string {
	return forceLinkRel(s.policy.Sanitize(raw))
}

// forceLinkRel re-emits the token stream of already-clean markup, replacing
// any rel attribute on <a> start tags with LinkRel.
func forceLinkRel(clean string) string {
	if !strings.Contains(clean, "<a") {
		return clean
	}

	var b strings.Builder
	b.Grow(len(clean) + 32)

	z := html.NewTokenizer(strings.NewReader(clean))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return b.String()
			}
			// The tokenizer only fails on reader errors, which strings.Reader
			// never produces.
			return clean
		}

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.Write(z.Raw())
			continue
		}

		tok := z.Token()
		if tok.Data != "a" {
			b.Write(z.Raw())
			continue
		}

		attrs := tok.Attr[:0]
		for _, a := range tok.Attr {
			if a.Key != "rel" {
				attrs = append(attrs, a)
			}
		}
		tok.Attr = append(attrs, html.Attribute{Key: "rel", Val: LinkRel})
		b.WriteString(tok.String())
	}
}
