package taxonomy

import "errors"

var (
	// -- Resource State --
	ErrCatalogueNotFound     = errors.New("catalogue not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrFilterNotFound        = errors.New("filter not found")
	ErrOptionNotFound        = errors.New("filter option not found")
	ErrAssignmentNotFound    = errors.New("filter is not assigned to this category")
	ErrFilterAlreadyAssigned = errors.New("filter may already be assigned to this category")

	// -- Validation & Input --
	ErrInvalidName  = errors.New("name cannot be empty")
	ErrNoChanges    = errors.New("no fields to update")
	ErrStaleOrder   = errors.New("order does not match the current list; reload and retry")
	ErrReorderWrite = errors.New("reorder failed; list reloaded from store")

	// -- Constants (External Systems) --
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
)
