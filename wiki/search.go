package wiki

// SearchResult is one full-text match. Body is the page's stored text.
type SearchResult struct {
	RowID int64  `db:"row_id" json:"rowId"`
	Title string `db:"title" json:"title"`
	Body  string `db:"body" json:"body"`
}
