package commission

import "errors"

var (
	// -- Resource State --
	ErrRequestNotFound = errors.New("commission request not found")
	ErrNotPending      = errors.New("commission request was already answered")
	ErrForbidden       = errors.New("only the listing owner can answer this request")

	// -- Validation & Input --
	ErrOwnListing        = errors.New("cannot request a commission on your own listing")
	ErrListingClosed     = errors.New("listing is not open for commissions")
	ErrMessageTooLong    = errors.New("message is too long")
	ErrEmptyRequestInput = errors.New("message cannot be empty")
)

const maxMessageLength = 2000
