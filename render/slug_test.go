package render

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Intro", "intro"},
		{"Hello World", "hello-world"},
		{"Multiple   Spaces\tand\ttabs", "multiple-spaces-and-tabs"},
		{"Hello, World!", "hello-world"},
		{"--Leading and trailing--", "leading-and-trailing"},
		{"already-hyphenated", "already-hyphenated"},
		{"Version 2.0", "version-20"},
		{"Café Menu", "caf-menu"},
		{"日本語", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Slugify(tt.text); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAssignSlugs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "duplicates are numbered from two",
			input: "<h1>Intro</h1><h2>Intro</h2><h3>Intro</h3>",
			want:  []string{"intro", "intro-2", "intro-3"},
		},
		{
			name:  "duplicates by base slug not by text",
			input: "<h1>Hello World</h1><h1>hello   world</h1>",
			want:  []string{"hello-world", "hello-world-2"},
		},
		{
			name:  "suffix never collides with an existing slug",
			input: "<h1>Intro</h1><h1>Intro</h1><h1>Intro 2</h1>",
			want:  []string{"intro", "intro-2", "intro-2-2"},
		},
		{
			name:  "no usable characters",
			input: "<h1>日本語</h1><h2>中文</h2>",
			want:  []string{"heading", "heading-2"},
		},
		{
			name:  "existing id is replaced",
			input: `<h1 id="custom">Title</h1>`,
			want:  []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.input)
			headings := Headings(doc)
			slugs := AssignSlugs(headings)

			if len(headings) != len(tt.want) {
				t.Fatalf("got %d headings, want %d", len(headings), len(tt.want))
			}
			for i, h := range headings {
				if slugs[h.Node] != tt.want[i] {
					t.Errorf("heading %d: slug %q, want %q", i, slugs[h.Node], tt.want[i])
				}
				if id := getAttr(h.Node, "id"); id != tt.want[i] {
					t.Errorf("heading %d: id attribute %q, want %q", i, id, tt.want[i])
				}
			}
		})
	}
}

func TestHeadings(t *testing.T) {
	doc := mustParse(t, "<h1>  One </h1><p>text</p><div><h4>Two <em>parts</em></h4></div><h6></h6>")

	headings := Headings(doc)
	if len(headings) != 2 {
		t.Fatalf("got %d headings, want 2", len(headings))
	}
	if headings[0].Level != 1 || headings[0].Text != "One" {
		t.Errorf("headings[0] = %d %q", headings[0].Level, headings[0].Text)
	}
	if headings[1].Level != 4 || headings[1].Text != "Two parts" {
		t.Errorf("headings[1] = %d %q", headings[1].Level, headings[1].Text)
	}
}
