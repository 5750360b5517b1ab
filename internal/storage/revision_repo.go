package storage

import (
	"github.com/danielledeleo/wikilite/wiki"
)

// Revision repository methods for sqliteDb

func (db *sqliteDb) SelectRevisionHistory(pageID int64) ([]*wiki.Revision, error) {
	revisions := []*wiki.Revision{}
	err := db.conn.Select(&revisions, `
		SELECT revision_id, page_id, page_name, hashval, length(raw_content) AS content_length, created_at
		FROM revisions
		WHERE page_id = ?
		ORDER BY revision_id DESC`, pageID)
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

func (db *sqliteDb) SelectRevision(pageID int64, revisionID int) (*wiki.Revision, error) {
	rev := &wiki.Revision{}
	err := db.conn.Get(rev, `
		SELECT revision_id, page_id, page_name, raw_content, hashval, length(raw_content) AS content_length, created_at
		FROM revisions
		WHERE page_id = ? AND revision_id = ?`, pageID, revisionID)
	if err != nil {
		return nil, err
	}
	return rev, nil
}
