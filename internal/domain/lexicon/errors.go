package lexicon

import "errors"

// Sentinel kinds for lexicon errors.
var (
	ErrInvalidLexicon = errors.New("invalid lexicon")
	ErrLoadLexicon    = errors.New("load lexicon")
)
