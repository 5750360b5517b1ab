package storage

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MemoryDatabase opens a private in-memory database. It must be used through
// a single connection; Open takes care of that.
const MemoryDatabase = ":memory:"

// connectionParams are applied by the modernc driver to every new connection.
// Transactions take the write lock up front so concurrent writers queue on
// busy_timeout instead of failing on lock upgrade.
var connectionParams = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_txlock=immediate",
}

// Open connects to the SQLite database at path. File databases use WAL
// journaling.
func Open(path string) (*sqlx.DB, error) {
	params := append([]string{}, connectionParams...)
	if path != MemoryDatabase {
		params = append(params, "_pragma=journal_mode(WAL)")
	}

	db, err := sqlx.Open("sqlite", path+"?"+strings.Join(params, "&"))
	if err != nil {
		return nil, err
	}

	if path == MemoryDatabase {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// PreparedStatements holds the prepared SQL statements used for read queries.
// This struct is exported to allow reuse in test utilities.
type PreparedStatements struct {
	SelectPageByNameStmt    *sqlx.Stmt
	SelectPageByUUIDStmt    *sqlx.Stmt
	SelectRecentPagesStmt   *sqlx.Stmt
	SelectFilesByPageIDStmt *sqlx.Stmt
	SelectFileBlobStmt      *sqlx.Stmt
}

const pageColumns = `page_id, created_at, updated_at, page_uuid, page_name, page_content, page_text, page_toc`

// InitializeStatements prepares all the SQL statements needed for read queries.
// This function is exported to allow reuse in test utilities.
func InitializeStatements(conn *sqlx.DB) (*PreparedStatements, error) {
	stmts := &PreparedStatements{}
	var err error

	q := `SELECT ` + pageColumns + ` FROM pages`

	stmts.SelectPageByNameStmt, err = conn.Preparex(q + ` WHERE page_name = ?`)
	if err != nil {
		return nil, err
	}

	stmts.SelectPageByUUIDStmt, err = conn.Preparex(q + ` WHERE page_uuid = ?`)
	if err != nil {
		return nil, err
	}

	stmts.SelectRecentPagesStmt, err = conn.Preparex(q + ` ORDER BY updated_at DESC, page_id DESC LIMIT ?`)
	if err != nil {
		return nil, err
	}

	stmts.SelectFilesByPageIDStmt, err = conn.Preparex(`
		SELECT f.file_id, f.created_at, f.updated_at, f.file_uuid, f.file_name, f.file_size, f.content_type
		FROM files f
		JOIN page_files pf ON f.file_id = pf.file_id
		WHERE pf.page_id = ?
		ORDER BY f.file_id ASC`)
	if err != nil {
		return nil, err
	}

	stmts.SelectFileBlobStmt, err = conn.Preparex(`SELECT file_size, content_type, file_content FROM files WHERE file_uuid = ?`)
	if err != nil {
		return nil, err
	}

	return stmts, nil
}

// sqliteDb is the main database struct that embeds all repository functionality.
// Methods are defined in separate files:
//   - page_repo.go: Page writes and lookups
//   - revision_repo.go: Page history
//   - file_repo.go: Attachments
//   - link_repo.go: Backlinks
//   - search_repo.go: Full-text search
type sqliteDb struct {
	*PreparedStatements
	conn *sqlx.DB
}

// Init initializes the storage layer with an existing database connection.
// The database connection should already have migrations applied via RunMigrations.
func Init(db *sqlx.DB) (*sqliteDb, error) {
	store := &sqliteDb{conn: db}

	var err error
	store.PreparedStatements, err = InitializeStatements(db)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Close releases the prepared statements. The connection is owned by the caller.
func (db *sqliteDb) Close() error {
	var errs []error
	for _, stmt := range []*sqlx.Stmt{
		db.SelectPageByNameStmt,
		db.SelectPageByUUIDStmt,
		db.SelectRecentPagesStmt,
		db.SelectFilesByPageIDStmt,
		db.SelectFileBlobStmt,
	} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

// isConstraintViolation reports whether err is any SQLite constraint failure,
// such as a duplicate page name.
func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
