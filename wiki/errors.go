package wiki

import "errors"

// Sentinel errors for wiki operations
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("page name already in use")
	ErrTransform        = errors.New("page content could not be transformed")
	ErrContentTooLarge  = errors.New("page content too large")
	ErrEmptyPageName    = errors.New("page name cannot be empty")
	ErrBadPageName      = errors.New("page name must not contain / or control characters")
	ErrRevisionNotFound = errors.New("revision not found")
	ErrBadUUID          = errors.New("malformed uuid")
)
