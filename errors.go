package musicxml

import "errors"

var (
	ErrMalformedTag     = errors.New("musicxml: malformed tag")
	ErrSelfClosingRoot  = errors.New("musicxml: root tag cannot be self-closing")
	ErrMismatchedTag    = errors.New("musicxml: mismatched closing tag")
	ErrUnbalanced       = errors.New("musicxml: missing one or more matched tags")
	ErrDepthExceeded    = errors.New("musicxml: nesting depth exceeded")
	ErrMissingContainer = errors.New("musicxml: container entry missing")
	ErrMissingRootfile  = errors.New("musicxml: rootfile not declared")
	ErrInvalidScore     = errors.New("musicxml: invalid score layout")
	ErrInvalidElement   = errors.New("musicxml: invalid element")
	ErrInvalidPayload   = errors.New("musicxml: invalid payload")
	ErrLimitExceeded    = errors.New("musicxml: limit exceeded")
)
