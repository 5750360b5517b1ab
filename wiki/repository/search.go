package repository

import "github.com/danielledeleo/wikilite/wiki"

// SearchRepository defines the interface for the full-text index.
type SearchRepository interface {
	// SearchPages runs an FTS5 match expression and returns up to limit rows.
	SearchPages(match string, limit int) ([]*wiki.SearchResult, error)
}
