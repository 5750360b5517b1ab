package service

import (
	"bytes"
	"context"
	"crypto/sha512"
	"database/sql"
	"encoding/base64"
	"errors"
	"html"
	"log/slog"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/danielledeleo/wikilite/wiki/repository"
	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// RecentPagesLimit is the number of pages listed by RecentPages.
const RecentPagesLimit = 10

// PageService defines the interface for page operations.
type PageService interface {
	// AddPage transforms content and stores it as a new page with uploads.
	AddPage(ctx context.Context, name, content string, uploads []*wiki.Upload) (*wiki.Page, error)

	// EditPage replaces the name and content of an existing page.
	EditPage(ctx context.Context, id uuid.UUID, name, content string) (*wiki.Page, error)

	// GetPage retrieves a page by name, optionally with its file metadata.
	GetPage(name string, includeFiles bool) (*wiki.Page, error)

	// RecentPages lists previews of the most recently updated pages.
	RecentPages() ([]*wiki.PagePreview, error)

	// GetRevisionHistory lists a page's revisions, newest first.
	GetRevisionHistory(name string) ([]*wiki.Revision, error)

	// GetRevision retrieves one revision of a page including its raw content.
	GetRevision(name string, id int) (*wiki.Revision, error)

	// DiffRevisions renders an HTML diff of the raw content of two revisions.
	// An oldID of 0 compares against the revision before newID.
	DiffRevisions(name string, oldID, newID int) (string, error)

	// GetBacklinks lists previews of pages that link to name.
	GetBacklinks(name string) ([]*wiki.PagePreview, error)
}

// pageService is the default implementation of PageService.
type pageService struct {
	pages     repository.PageRepository
	revisions repository.RevisionRepository
	links     repository.LinkRepository
	files     repository.FileRepository
	rendering RenderingService
}

// NewPageService creates a new PageService.
func NewPageService(
	pages repository.PageRepository,
	revisions repository.RevisionRepository,
	links repository.LinkRepository,
	files repository.FileRepository,
	rendering RenderingService,
) PageService {
	return &pageService{
		pages:     pages,
		revisions: revisions,
		links:     links,
		files:     files,
		rendering: rendering,
	}
}

// hashContent returns the revision hash of raw content.
func hashContent(name, content string) string {
	x := sha512.Sum384([]byte(name + content))
	return base64.URLEncoding.EncodeToString(x[:])
}

// AddPage transforms content and stores it as a new page with uploads.
func (s *pageService) AddPage(ctx context.Context, name, content string, uploads []*wiki.Upload) (*wiki.Page, error) {
	name, err := wiki.ValidatePageName(name)
	if err != nil {
		return nil, err
	}

	out, err := s.rendering.Transform(ctx, content)
	if err != nil {
		return nil, err
	}

	page := wiki.NewPage(name, out)
	rev := &wiki.Revision{Content: content, Hash: hashContent(name, content)}

	if err := s.pages.InsertPage(page, rev, uploads, out.Links); err != nil {
		return nil, err
	}

	slog.Info("page created", "category", "page", "action", "create", "page", page.Name, "uuid", page.UUID, "files", len(page.Files))
	return page, nil
}

// EditPage replaces the name and content of an existing page.
func (s *pageService) EditPage(ctx context.Context, id uuid.UUID, name, content string) (*wiki.Page, error) {
	name, err := wiki.ValidatePageName(name)
	if err != nil {
		return nil, err
	}

	out, err := s.rendering.Transform(ctx, content)
	if err != nil {
		return nil, err
	}

	page := wiki.NewPage(name, out)
	page.UUID = id
	rev := &wiki.Revision{Content: content, Hash: hashContent(name, content)}

	if err := s.pages.UpdatePage(page, rev, out.Links); err != nil {
		return nil, err
	}

	slog.Info("page updated", "category", "page", "action", "edit", "page", page.Name, "uuid", page.UUID, "revision", rev.ID)
	return page, nil
}

// GetPage retrieves a page by name, optionally with its file metadata.
func (s *pageService) GetPage(name string, includeFiles bool) (*wiki.Page, error) {
	page, err := s.pages.SelectPageByName(name)
	if err == sql.ErrNoRows {
		return nil, wiki.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	if includeFiles {
		page.Files, err = s.files.SelectFilesByPageID(page.ID)
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}

// RecentPages lists previews of the most recently updated pages.
func (s *pageService) RecentPages() ([]*wiki.PagePreview, error) {
	pages, err := s.pages.SelectRecentPages(RecentPagesLimit)
	if err != nil {
		return nil, err
	}
	return previews(pages), nil
}

// GetRevisionHistory lists a page's revisions, newest first.
func (s *pageService) GetRevisionHistory(name string) ([]*wiki.Revision, error) {
	page, err := s.GetPage(name, false)
	if err != nil {
		return nil, err
	}
	return s.revisions.SelectRevisionHistory(page.ID)
}

// GetRevision retrieves one revision of a page including its raw content.
func (s *pageService) GetRevision(name string, id int) (*wiki.Revision, error) {
	page, err := s.GetPage(name, false)
	if err != nil {
		return nil, err
	}

	rev, err := s.revisions.SelectRevision(page.ID, id)
	if err == sql.ErrNoRows {
		return nil, wiki.ErrRevisionNotFound
	}
	return rev, err
}

// DiffRevisions renders an HTML diff of the raw content of two revisions.
func (s *pageService) DiffRevisions(name string, oldID, newID int) (string, error) {
	page, err := s.GetPage(name, false)
	if err != nil {
		return "", err
	}

	newRev, err := s.revisions.SelectRevision(page.ID, newID)
	if err == sql.ErrNoRows {
		return "", wiki.ErrRevisionNotFound
	} else if err != nil {
		return "", err
	}

	if oldID == 0 {
		oldID = newID - 1
	}

	// The first revision is compared against an empty page.
	oldContent := ""
	if oldID > 0 {
		oldRev, err := s.revisions.SelectRevision(page.ID, oldID)
		if err == sql.ErrNoRows {
			return "", wiki.ErrRevisionNotFound
		} else if err != nil {
			return "", err
		}
		oldContent = oldRev.Content
	}

	return diffHTML(oldContent, newRev.Content), nil
}

// diffHTML marks up the differences between two strings. All text is escaped.
func diffHTML(oldText, newText string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buff bytes.Buffer
	for _, diff := range diffs {
		text := html.EscapeString(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			_, _ = buff.WriteString("<ins>")
			_, _ = buff.WriteString(text)
			_, _ = buff.WriteString("</ins>")
		case diffmatchpatch.DiffDelete:
			_, _ = buff.WriteString("<del>")
			_, _ = buff.WriteString(text)
			_, _ = buff.WriteString("</del>")
		case diffmatchpatch.DiffEqual:
			_, _ = buff.WriteString("<span>")
			_, _ = buff.WriteString(text)
			_, _ = buff.WriteString("</span>")
		}
	}
	return buff.String()
}

// GetBacklinks lists previews of pages that link to name. The target does not
// have to exist yet.
func (s *pageService) GetBacklinks(name string) ([]*wiki.PagePreview, error) {
	if _, err := wiki.ValidatePageName(name); err != nil {
		if errors.Is(err, wiki.ErrEmptyPageName) {
			return nil, wiki.ErrNotFound
		}
		return nil, err
	}

	pages, err := s.links.SelectBacklinks(name)
	if err != nil {
		return nil, err
	}
	return previews(pages), nil
}

func previews(pages []*wiki.Page) []*wiki.PagePreview {
	out := make([]*wiki.PagePreview, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Preview())
	}
	return out
}
