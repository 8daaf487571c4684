package epub

import "errors"

// Sentinel errors returned by the epub package.
var (
	// ErrInvalidEPub indicates the file is not a valid ePub
	// (e.g., missing container.xml and no .opf file found).
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrNoContent indicates no spine document yielded any paragraph text.
	ErrNoContent = errors.New("epub: no readable content")
)
