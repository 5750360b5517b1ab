package storage

import (
	"github.com/danielledeleo/wikilite/wiki"
	"github.com/google/uuid"
)

// File repository methods for sqliteDb

func (db *sqliteDb) SelectFilesByPageID(pageID int64) ([]*wiki.File, error) {
	files := []*wiki.File{}
	if err := db.SelectFilesByPageIDStmt.Select(&files, pageID); err != nil {
		return nil, err
	}
	return files, nil
}

func (db *sqliteDb) SelectFileBlob(id uuid.UUID) (*wiki.FileBlob, error) {
	blob := &wiki.FileBlob{}
	if err := db.SelectFileBlobStmt.Get(blob, id); err != nil {
		return nil, err
	}
	return blob, nil
}
