package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidEncoding is returned when serialized markup or extracted text is
// not valid UTF-8.
var ErrInvalidEncoding = errors.New("document is not valid utf-8")

// Document is a mutable tree for one transformation. It is built fresh per
// call and must not be shared between goroutines.
type Document struct {
	root *html.Node
}

// Parse builds a Document from sanitized markup. Malformed markup is repaired
// the way a browser would; the only error is a failure to read the input.
func Parse(sanitized string) (*Document, error) {
	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(strings.NewReader(sanitized), root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	return &Document{root: root}, nil
}

// Root returns the synthetic body element holding the parsed content.
func (d *Document) Root() *html.Node {
	return d.root
}

// Render serializes the content of the document (not the synthetic root).
func (d *Document) Render() (string, error) {
	buf := &bytes.Buffer{}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(buf, c); err != nil {
			return "", err
		}
	}

	if !utf8.Valid(buf.Bytes()) {
		return "", ErrInvalidEncoding
	}
	return buf.String(), nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr replaces key's value, or appends the attribute if absent.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
