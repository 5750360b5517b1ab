package repository

import (
	"github.com/danielledeleo/wikilite/wiki"
	"github.com/google/uuid"
)

// FileRepository defines the interface for attachment lookups.
type FileRepository interface {
	// SelectFilesByPageID lists the metadata of every file attached to a page.
	SelectFilesByPageID(pageID int64) ([]*wiki.File, error)

	// SelectFileBlob retrieves a file's content and content type.
	SelectFileBlob(id uuid.UUID) (*wiki.FileBlob, error)
}
