package raido

import "errors"

// Sentinel errors returned by construction functions and Package writes.
// Match them with errors.Is; the wrapped message carries the specifics.
var (
	// ErrInvalidFieldCount reports a note whose field value count does not
	// match its model's field count.
	ErrInvalidFieldCount = errors.New("field value count does not match model")

	// ErrDuplicateID reports two models or two decks sharing an id within
	// one package.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrEmptyTemplateSet reports a model constructed with no templates.
	ErrEmptyTemplateSet = errors.New("model has no templates")

	// ErrEncoding reports a field value that cannot be represented in the
	// collection's text encoding.
	ErrEncoding = errors.New("field value not representable")
)
