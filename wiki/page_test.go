package wiki

import (
	"errors"
	"strings"
	"testing"

	"github.com/danielledeleo/wikilite/render"
)

func TestValidatePageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"simple", "Home", "Home", nil},
		{"spaces kept inside", "Front Page", "Front Page", nil},
		{"trimmed", "  Home \t", "Home", nil},
		{"unicode", "Café", "Café", nil},
		{"colon allowed", "Help:Syntax", "Help:Syntax", nil},
		{"empty", "", "", ErrEmptyPageName},
		{"only whitespace", " \n ", "", ErrEmptyPageName},
		{"slash", "a/b", "", ErrBadPageName},
		{"control character", "bad\x00name", "", ErrBadPageName},
		{"inner newline", "two\nlines", "", ErrBadPageName},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidatePageName(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidatePageName(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ValidatePageName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSetOutput(t *testing.T) {
	p := NewPage("Home", &render.Output{HTML: "<h1 id=\"a\">A</h1>", TOC: "<ul></ul>", Text: "A"})
	if p.Name != "Home" || p.Content != "<h1 id=\"a\">A</h1>" || p.Text != "A" {
		t.Errorf("unexpected page %+v", p)
	}
	if p.TOC == nil || *p.TOC != "<ul></ul>" {
		t.Errorf("expected TOC to be set, got %v", p.TOC)
	}

	p.SetOutput(&render.Output{HTML: "<p>plain</p>", Text: "plain"})
	if p.TOC != nil {
		t.Errorf("expected nil TOC without headings, got %q", *p.TOC)
	}
	if p.Content != "<p>plain</p>" {
		t.Errorf("Content = %q", p.Content)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "hello", "hello"},
		{"empty", "", ""},
		{"long ascii", strings.Repeat("a", render.PreviewLimit+10), strings.Repeat("a", render.PreviewLimit)},
		{"long multibyte", strings.Repeat("ü", render.PreviewLimit+1), strings.Repeat("ü", render.PreviewLimit)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &Page{Name: "P", Text: tc.text}
			preview := p.Preview()
			if preview.Name != "P" {
				t.Errorf("Name = %q", preview.Name)
			}
			if preview.PreviewText != tc.want {
				t.Errorf("PreviewText has %d characters, want %d", len([]rune(preview.PreviewText)), len([]rune(tc.want)))
			}
		})
	}
}
