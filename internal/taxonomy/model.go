package taxonomy

import "time"

// Catalogue is a top-level grouping such as "Art" or "Merch".
type Catalogue struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	SortOrder  int         `json:"sortOrder"`
	IsActive   bool        `json:"isActive"`
	Categories []*Category `json:"categories,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Category belongs to exactly one catalogue.
type Category struct {
	ID          int64     `json:"id"`
	CatalogueID int64     `json:"catalogueId"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter is a global sub-category dimension ("Subject", "Style") offered on
// the categories it is assigned to.
type Filter struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	SortOrder int             `json:"sortOrder"`
	IsActive  bool            `json:"isActive"`
	Options   []*FilterOption `json:"options"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type FilterOption struct {
	ID        int64  `json:"id"`
	FilterID  int64  `json:"filterId"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

type CreateCatalogueInput struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

type UpdateCatalogueInput struct {
	Name      *string `json:"name"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

type CreateCategoryInput struct {
	CatalogueID int64  `json:"catalogueId"`
	Name        string `json:"name"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateCategoryInput has no catalogue field: moving a category between
// catalogues is not supported.
type UpdateCategoryInput struct {
	Name      *string `json:"name"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

type CreateFilterInput struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

type UpdateFilterInput struct {
	Name      *string `json:"name"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

type CreateOptionInput struct {
	FilterID int64  `json:"filterId"`
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

type UpdateOptionInput struct {
	Name      *string `json:"name"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

func activeOrDefault(b *bool) bool {
	return b == nil || *b
}
