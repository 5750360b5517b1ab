package wiki

import (
	"strings"
	"time"
	"unicode"

	"github.com/danielledeleo/wikilite/render"
	"github.com/google/uuid"
)

// Page is a stored wiki page. Content, TOC and Text are the pipeline outputs
// written on create or edit; reads return them verbatim.
type Page struct {
	ID        int64     `db:"page_id" json:"-"`
	UUID      uuid.UUID `db:"page_uuid" json:"pageUuid"`
	Name      string    `db:"page_name" json:"pageName"`
	Content   string    `db:"page_content" json:"pageContent"`
	Text      string    `db:"page_text" json:"-"`
	TOC       *string   `db:"page_toc" json:"pageToc"` // nil when the page has no headings
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Files     []*File   `db:"-" json:"pageFiles,omitempty"`
}

// NewPage builds an unsaved page from pipeline output.
func NewPage(name string, out *render.Output) *Page {
	p := &Page{Name: name}
	p.SetOutput(out)
	return p
}

// SetOutput copies the three pipeline outputs onto the page.
func (p *Page) SetOutput(out *render.Output) {
	p.Content = out.HTML
	p.Text = out.Text
	p.TOC = nil
	if out.TOC != "" {
		toc := out.TOC
		p.TOC = &toc
	}
}

// PagePreview is the listing form of a page.
type PagePreview struct {
	UUID        uuid.UUID `json:"pageUuid"`
	Name        string    `json:"pageName"`
	UpdatedAt   time.Time `json:"updatedAt"`
	PreviewText string    `json:"previewText"`
}

// Preview trims the stored text to render.PreviewLimit characters.
func (p *Page) Preview() *PagePreview {
	return &PagePreview{
		UUID:        p.UUID,
		Name:        p.Name,
		UpdatedAt:   p.UpdatedAt,
		PreviewText: render.TrimPreview(p.Text, render.PreviewLimit),
	}
}

// ValidatePageName trims surrounding whitespace and rejects names that cannot
// be used as a single path segment.
func ValidatePageName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyPageName
	}
	for _, r := range name {
		if r == '/' || unicode.IsControl(r) {
			return "", ErrBadPageName
		}
	}
	return name, nil
}
