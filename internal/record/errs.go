package record

import "errors"

var (
	ErrURLEmpty        = errors.New("URL cannot be empty")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidID       = errors.New("invalid record id")
)
