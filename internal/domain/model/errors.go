package model

import "errors"

// Sentinel error kinds for dataset decoding.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidValue  = errors.New("invalid cell value")
)
