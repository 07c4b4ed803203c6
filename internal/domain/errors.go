package domain

import "errors"

// Domain errors
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrInvalidFile        = errors.New("invalid file")
)
