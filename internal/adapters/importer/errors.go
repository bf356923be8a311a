package importer

import "errors"

// Sentinel kinds for import errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmpty             = errors.New("no rounds found")
	ErrMissingColumn     = errors.New("missing required column")
	ErrInvalidRow        = errors.New("invalid row")
)
