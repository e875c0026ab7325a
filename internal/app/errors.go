package service

import "errors"

// Sentinel kinds for dashboard service errors.
var (
	// ErrUpload wraps every rejected or failed upload.
	ErrUpload         = errors.New("upload failed")
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
	ErrUploadEmpty    = errors.New("upload has no data rows")
	ErrReadOnly       = errors.New("dashboard serves a fixed snapshot")
)
