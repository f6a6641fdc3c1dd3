package archive

import "errors"

var (
	ErrFormat        = errors.New("archive: invalid format")
	ErrUnsupported   = errors.New("archive: unsupported feature")
	ErrNotFound      = errors.New("archive: entry not found")
	ErrChecksum      = errors.New("archive: checksum mismatch")
	ErrInvalidText   = errors.New("archive: entry is not valid text")
	ErrInvalidName   = errors.New("archive: invalid entry name")
	ErrNoEntry       = errors.New("archive: write before Create")
	ErrClosed        = errors.New("archive: writer already finished")
	ErrLimitExceeded = errors.New("archive: limit exceeded")
)
