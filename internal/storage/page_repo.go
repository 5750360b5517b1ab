package storage

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Page repository methods for sqliteDb

func (db *sqliteDb) SelectPageByName(name string) (*wiki.Page, error) {
	page := &wiki.Page{}
	if err := db.SelectPageByNameStmt.Get(page, name); err != nil {
		return nil, err
	}
	return page, nil
}

func (db *sqliteDb) SelectPageByUUID(id uuid.UUID) (*wiki.Page, error) {
	page := &wiki.Page{}
	if err := db.SelectPageByUUIDStmt.Get(page, id); err != nil {
		return nil, err
	}
	return page, nil
}

func (db *sqliteDb) SelectRecentPages(limit int) ([]*wiki.Page, error) {
	pages := []*wiki.Page{}
	if err := db.SelectRecentPagesStmt.Select(&pages, limit); err != nil {
		return nil, err
	}
	return pages, nil
}

// withTx runs fn inside a transaction, committing when fn succeeds and rolling
// back otherwise.
func (db *sqliteDb) withTx(operation string, fn func(tx *sqlx.Tx) error) (err error) {
	var tx *sqlx.Tx
	tx, err = db.conn.Beginx()
	if err != nil {
		slog.Error("failed to begin transaction", "category", "storage", "operation", operation, "error", err)
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("transaction rollback failed", "category", "storage", "operation", operation, "error", rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			slog.Error("transaction commit failed", "category", "storage", "operation", operation, "error", err)
		}
	}()

	return fn(tx)
}

func (db *sqliteDb) InsertPage(page *wiki.Page, rev *wiki.Revision, uploads []*wiki.Upload, links []string) error {
	now := time.Now().UTC()
	page.UUID = uuid.New()
	page.CreatedAt = now
	page.UpdatedAt = now

	err := db.withTx("InsertPage", func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO pages (created_at, updated_at, page_uuid, page_name, page_content, page_text, page_toc)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			page.CreatedAt, page.UpdatedAt, page.UUID, page.Name, page.Content, page.Text, page.TOC)
		if err != nil {
			return err
		}
		if page.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		files := make([]*wiki.File, 0, len(uploads))
		for _, upload := range uploads {
			file, err := insertFile(tx, page.ID, upload, now)
			if err != nil {
				return err
			}
			files = append(files, file)
		}
		page.Files = files

		rev.ID = 1
		if err := insertRevision(tx, page, rev); err != nil {
			return err
		}
		return replaceLinks(tx, page.ID, links)
	})

	if err != nil {
		if isConstraintViolation(err) {
			return wiki.ErrConflict
		}
		slog.Error("page insert failed", "category", "storage", "operation", "InsertPage", "page", page.Name, "error", err)
		return err
	}
	return nil
}

func (db *sqliteDb) UpdatePage(page *wiki.Page, rev *wiki.Revision, links []string) error {
	page.UpdatedAt = time.Now().UTC()

	err := db.withTx("UpdatePage", func(tx *sqlx.Tx) error {
		var current struct {
			ID        int64     `db:"page_id"`
			CreatedAt time.Time `db:"created_at"`
		}
		err := tx.Get(&current, `SELECT page_id, created_at FROM pages WHERE page_uuid = ?`, page.UUID)
		if err == sql.ErrNoRows {
			return wiki.ErrNotFound
		} else if err != nil {
			return err
		}
		page.ID = current.ID
		page.CreatedAt = current.CreatedAt

		_, err = tx.Exec(`
			UPDATE pages
			SET updated_at = ?, page_name = ?, page_content = ?, page_text = ?, page_toc = ?
			WHERE page_id = ?`,
			page.UpdatedAt, page.Name, page.Content, page.Text, page.TOC, page.ID)
		if err != nil {
			return err
		}

		if err := tx.Get(&rev.ID, `SELECT COALESCE(MAX(revision_id), 0) + 1 FROM revisions WHERE page_id = ?`, page.ID); err != nil {
			return err
		}
		if err := insertRevision(tx, page, rev); err != nil {
			return err
		}
		return replaceLinks(tx, page.ID, links)
	})

	switch {
	case err == nil:
		return nil
	case err == wiki.ErrNotFound:
		return err
	case isConstraintViolation(err):
		return wiki.ErrConflict
	default:
		slog.Error("page update failed", "category", "storage", "operation", "UpdatePage", "page", page.UUID, "error", err)
		return err
	}
}

func insertFile(tx *sqlx.Tx, pageID int64, upload *wiki.Upload, now time.Time) (*wiki.File, error) {
	file := &wiki.File{
		UUID:        uuid.New(),
		Name:        upload.Name,
		Size:        int64(len(upload.Content)),
		ContentType: upload.ContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := tx.Exec(`
		INSERT INTO files (created_at, updated_at, file_uuid, file_name, file_size, content_type, file_content)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.CreatedAt, file.UpdatedAt, file.UUID, file.Name, file.Size, file.ContentType, upload.Content)
	if err != nil {
		return nil, err
	}
	if file.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`INSERT INTO page_files (page_id, file_id) VALUES (?, ?)`, pageID, file.ID); err != nil {
		return nil, err
	}
	return file, nil
}

func insertRevision(tx *sqlx.Tx, page *wiki.Page, rev *wiki.Revision) error {
	rev.PageID = page.ID
	rev.Name = page.Name
	rev.CreatedAt = page.UpdatedAt
	rev.Length = len(rev.Content)

	_, err := tx.Exec(`
		INSERT INTO revisions (revision_id, page_id, page_name, raw_content, hashval, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.PageID, rev.Name, rev.Content, rev.Hash, rev.CreatedAt)
	return err
}

func replaceLinks(tx *sqlx.Tx, pageID int64, targets []string) error {
	if _, err := tx.Exec(`DELETE FROM page_links WHERE page_id = ?`, pageID); err != nil {
		return err
	}

	for _, target := range targets {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO page_links (page_id, target_name) VALUES (?, ?)`, pageID, target); err != nil {
			return err
		}
	}
	return nil
}
