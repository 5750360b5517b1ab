package storage

import (
	"github.com/danielledeleo/wikilite/wiki"
)

// Link repository methods for sqliteDb

func (db *sqliteDb) SelectBacklinks(name string) ([]*wiki.Page, error) {
	pages := []*wiki.Page{}
	err := db.conn.Select(&pages, `
		SELECT p.page_id, p.created_at, p.updated_at, p.page_uuid, p.page_name, p.page_content, p.page_text, p.page_toc
		FROM page_links pl
		JOIN pages p ON pl.page_id = p.page_id
		WHERE pl.target_name = ?
		ORDER BY p.page_name ASC`, name)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// CountLinks returns the total number of rows in the page_links table.
func (db *sqliteDb) CountLinks() (int, error) {
	var count int
	err := db.conn.Get(&count, `SELECT COUNT(*) FROM page_links`)
	return count, err
}
