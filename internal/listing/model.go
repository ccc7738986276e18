package listing

import (
	"time"

	"arkom-be/internal/browse"
)

const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"

	DefaultCurrency = "USD"
)

// Listing is a service an artist offers for commission. The embedded
// discovery data decides where it shows up when shoppers browse.
type Listing struct {
	ID          int64  `json:"id"`
	ArtistID    int64  `json:"artistId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	browse.SearchCategoryData
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateListingInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"priceCents"`
	Currency    string  `json:"currency"`
	Status      *string `json:"status"`
	browse.SearchCategoryData
}

// UpdateListingInput changes only the fields that are set. Discovery, when
// present, replaces the whole discovery snapshot, so it can also clear the
// catalogue or category.
type UpdateListingInput struct {
	Title       *string                    `json:"title"`
	Description *string                    `json:"description"`
	PriceCents  *int64                     `json:"priceCents"`
	Currency    *string                    `json:"currency"`
	Status      *string                    `json:"status"`
	Discovery   *browse.SearchCategoryData `json:"discovery"`
}

func (in UpdateListingInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.PriceCents == nil &&
		in.Currency == nil && in.Status == nil && in.Discovery == nil
}

type BrowseResult struct {
	Items []*Listing `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
