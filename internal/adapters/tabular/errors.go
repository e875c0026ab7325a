package tabular

import "errors"

// Sentinel kinds for tabular errors.
var (
	ErrDecode            = errors.New("decode spreadsheet failed")
	ErrEncode            = errors.New("encode spreadsheet failed")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
