package service

import (
	"database/sql"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/danielledeleo/wikilite/wiki/repository"
	"github.com/google/uuid"
)

// FileService defines the interface for attachment downloads.
type FileService interface {
	// GetFile retrieves the bytes and content type of a file.
	GetFile(id uuid.UUID) (*wiki.FileBlob, error)
}

type fileService struct {
	repo repository.FileRepository
}

// NewFileService creates a new FileService.
func NewFileService(repo repository.FileRepository) FileService {
	return &fileService{repo: repo}
}

func (s *fileService) GetFile(id uuid.UUID) (*wiki.FileBlob, error) {
	blob, err := s.repo.SelectFileBlob(id)
	if err == sql.ErrNoRows {
		return nil, wiki.ErrNotFound
	}
	return blob, err
}
