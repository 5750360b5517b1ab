package wiki

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata of an attachment. The bytes are only loaded by
// FileBlob lookups.
type File struct {
	ID          int64     `db:"file_id" json:"-"`
	UUID        uuid.UUID `db:"file_uuid" json:"fileUuid"`
	Name        string    `db:"file_name" json:"fileName"`
	Size        int64     `db:"file_size" json:"fileSize"`
	ContentType string    `db:"content_type" json:"contentType"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// FileBlob is an attachment's content as served to clients.
type FileBlob struct {
	Size        int64  `db:"file_size"`
	ContentType string `db:"content_type"`
	Content     []byte `db:"file_content"`
}

// Upload is a file submitted together with a new page.
type Upload struct {
	Name        string
	ContentType string
	Content     []byte
}
