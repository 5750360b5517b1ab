// Package embedded holds the help pages compiled into the binary.
package embedded

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/danielledeleo/wikilite/wiki"
)

//go:embed help/*.html
var helpFS embed.FS

// HelpPage is one built-in page. Name is derived from the file name:
// "Wiki Syntax.html" becomes "Wiki Syntax".
type HelpPage struct {
	Name    string
	Content string
}

// PageStore is the part of the page service needed to seed help pages.
type PageStore interface {
	GetPage(name string, includeFiles bool) (*wiki.Page, error)
	AddPage(ctx context.Context, name, content string, uploads []*wiki.Upload) (*wiki.Page, error)
}

// Pages loads every help page from fsys, sorted by name. Only .html files
// directly under help/ are read.
func Pages(fsys fs.FS) ([]HelpPage, error) {
	entries, err := fs.ReadDir(fsys, "help")
	if err != nil {
		return nil, err
	}

	var pages []HelpPage
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		content, err := fs.ReadFile(fsys, "help/"+entry.Name())
		if err != nil {
			return nil, err
		}

		pages = append(pages, HelpPage{
			Name:    strings.TrimSuffix(entry.Name(), ".html"),
			Content: string(content),
		})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })
	return pages, nil
}

// Help returns the help pages compiled into the binary.
func Help() ([]HelpPage, error) {
	return Pages(helpFS)
}

// Seed creates each of pages that does not exist yet. Existing pages are
// left as they are so that edits survive restarts. It returns the number of
// pages created.
func Seed(ctx context.Context, store PageStore, pages []HelpPage) (int, error) {
	created := 0
	for _, p := range pages {
		_, err := store.GetPage(p.Name, false)
		if err == nil {
			continue
		}
		if !errors.Is(err, wiki.ErrNotFound) {
			return created, err
		}

		if _, err := store.AddPage(ctx, p.Name, p.Content, nil); err != nil {
			if errors.Is(err, wiki.ErrConflict) {
				continue
			}
			return created, err
		}
		created++
		slog.Info("help page created", "category", "page", "action", "seed", "page", p.Name)
	}
	return created, nil
}
