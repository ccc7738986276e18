package listing

import "errors"

var (
	// -- Resource State --
	ErrListingNotFound = errors.New("listing not found")
	ErrForbidden       = errors.New("only the listing owner can do this")

	// -- Validation & Input --
	ErrInvalidTitle     = errors.New("title cannot be empty")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter ISO code")
	ErrInvalidStatus    = errors.New("status must be active, draft or archived")
	ErrCategoryMismatch = errors.New("category does not belong to the selected catalogue")
	ErrNoChanges        = errors.New("no fields to update")
)
