package service

import (
	"strings"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/danielledeleo/wikilite/wiki/repository"
)

const (
	// MaxSearchTokens bounds the number of query words matched.
	MaxSearchTokens = 20
	// SearchLimit is the maximum number of results returned.
	SearchLimit = 50
)

// SearchService defines the interface for full-text search.
type SearchService interface {
	// Search matches pages containing any word of query.
	Search(query string) ([]*wiki.SearchResult, error)
}

type searchService struct {
	repo repository.SearchRepository
}

// NewSearchService creates a new SearchService.
func NewSearchService(repo repository.SearchRepository) SearchService {
	return &searchService{repo: repo}
}

func (s *searchService) Search(query string) ([]*wiki.SearchResult, error) {
	match := MatchExpression(query)
	if match == "" {
		return []*wiki.SearchResult{}, nil
	}
	return s.repo.SearchPages(match, SearchLimit)
}

// MatchExpression turns free text into an FTS5 query matching any of its
// first MaxSearchTokens words. Each word is a quoted string, so FTS5 operators
// in the input are matched literally.
func MatchExpression(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) > MaxSearchTokens {
		tokens = tokens[:MaxSearchTokens]
	}

	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}
