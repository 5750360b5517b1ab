package repository

import (
	"github.com/danielledeleo/wikilite/wiki"
	"github.com/google/uuid"
)

// PageRepository defines the interface for page persistence operations.
type PageRepository interface {
	// InsertPage stores a new page, its first revision, its uploads and its
	// outgoing links in one transaction. ID, UUID and timestamps are filled in.
	InsertPage(page *wiki.Page, rev *wiki.Revision, uploads []*wiki.Upload, links []string) error

	// UpdatePage replaces the name and stored outputs of the page with
	// page.UUID and appends rev to its history.
	UpdatePage(page *wiki.Page, rev *wiki.Revision, links []string) error

	// SelectPageByName retrieves a page without its file metadata.
	SelectPageByName(name string) (*wiki.Page, error)

	// SelectPageByUUID retrieves a page without its file metadata.
	SelectPageByUUID(id uuid.UUID) (*wiki.Page, error)

	// SelectRecentPages retrieves up to limit pages, most recently updated first.
	SelectRecentPages(limit int) ([]*wiki.Page, error)
}

// RevisionRepository defines the interface for page history.
type RevisionRepository interface {
	// SelectRevisionHistory lists a page's revisions newest first, without content.
	SelectRevisionHistory(pageID int64) ([]*wiki.Revision, error)

	// SelectRevision retrieves one revision including its raw content.
	SelectRevision(pageID int64, revisionID int) (*wiki.Revision, error)
}

// LinkRepository defines the interface for the page link graph.
type LinkRepository interface {
	// SelectBacklinks returns pages linking to the page called name.
	SelectBacklinks(name string) ([]*wiki.Page, error)
}
