package wiki

import "time"

// Revision is one submitted version of a page. Content holds the raw markup
// as submitted, before sanitization.
type Revision struct {
	ID        int       `db:"revision_id" json:"revisionId"`
	PageID    int64     `db:"page_id" json:"-"`
	Name      string    `db:"page_name" json:"pageName"`
	Content   string    `db:"raw_content" json:"-"`
	Hash      string    `db:"hashval" json:"hash"`
	Length    int       `db:"content_length" json:"length"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
