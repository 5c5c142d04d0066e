package extraction

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("document is corrupt or unreadable")
	ErrEmptyDocument     = errors.New("document contains no extractable text")
)
