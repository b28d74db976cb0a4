package engine

import searcherrors "github.com/gcbaptista/go-search-server/internal/errors"

// Errors returned by Server, for use with errors.Is.
var (
	ErrInvalidCharacter = searcherrors.ErrInvalidCharacter
	ErrDuplicateID      = searcherrors.ErrDuplicateID
	ErrNegativeID       = searcherrors.ErrNegativeID
	ErrEmptyMinusTerm   = searcherrors.ErrEmptyMinusTerm
	ErrDoubleMinus      = searcherrors.ErrDoubleMinus
	ErrDocumentNotFound = searcherrors.ErrDocumentNotFound
	ErrInvalidInput     = searcherrors.ErrInvalidInput
)
