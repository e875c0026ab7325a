package repository

import "errors"

// Sentinel kinds for data file errors.
var (
	ErrNoDataFile = errors.New("no data file found")
	ErrSave       = errors.New("save data file failed")
)
