package storage

import (
	_ "embed"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// RunMigrations executes the database schema and any necessary migrations.
// This function is idempotent and safe to run multiple times.
func RunMigrations(db *sqlx.DB) error {
	// Execute the embedded schema
	_, err := db.Exec(schemaSQL)
	if err != nil {
		return err
	}

	// Migration: Add page_toc column to pages if it doesn't exist.
	// Early databases stored no table of contents.
	var tocColExists int
	err = db.Get(&tocColExists, `SELECT COUNT(*) FROM pragma_table_info('pages') WHERE name = 'page_toc'`)
	if err != nil {
		return err
	}
	if tocColExists == 0 {
		_, err = db.Exec(`ALTER TABLE pages ADD COLUMN page_toc TEXT`)
		if err != nil {
			return err
		}
		slog.Info("migration applied", "category", "storage", "action", "add_column", "table", "pages", "column", "page_toc")
	}

	// Migration: Give every page without history a first revision built from
	// its stored content, so history and diffs work for pages written before
	// revisions were recorded.
	res, err := db.Exec(`
		INSERT INTO revisions (revision_id, page_id, page_name, raw_content, hashval, created_at)
		SELECT 1, p.page_id, p.page_name, p.page_content, '', p.updated_at
		FROM pages p
		WHERE NOT EXISTS (SELECT 1 FROM revisions r WHERE r.page_id = p.page_id)`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("migration applied", "category", "storage", "action", "backfill_revisions", "pages", n)
	}

	// Rebuild the search index if it is out of step with the pages table, for
	// instance after pages were imported with triggers disabled.
	return rebuildSearchIndex(db)
}

// rebuildSearchIndex repopulates pages_fts from pages when the row counts differ.
func rebuildSearchIndex(db *sqlx.DB) error {
	var pages, indexed int
	if err := db.Get(&pages, `SELECT COUNT(*) FROM pages`); err != nil {
		return err
	}
	if err := db.Get(&indexed, `SELECT COUNT(*) FROM pages_fts_docsize`); err != nil {
		return err
	}
	if pages == indexed {
		return nil
	}

	if _, err := db.Exec(`INSERT INTO pages_fts(pages_fts) VALUES ('rebuild')`); err != nil {
		return err
	}
	slog.Info("migration applied", "category", "storage", "action", "rebuild_search_index", "pages", pages, "indexed", indexed)
	return nil
}
