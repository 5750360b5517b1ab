package storage

import (
	"github.com/danielledeleo/wikilite/wiki"
)

// Search repository methods for sqliteDb

func (db *sqliteDb) SearchPages(match string, limit int) ([]*wiki.SearchResult, error) {
	results := []*wiki.SearchResult{}
	err := db.conn.Select(&results, `
		SELECT rowid AS row_id, page_name AS title, page_text AS body
		FROM pages_fts
		WHERE pages_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, err
	}
	return results, nil
}
