package commission

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Request is a client's ask for a commission against a listing. ArtistID
// and ListingTitle come from the listing.
type Request struct {
	ID           int64     `json:"id"`
	ListingID    int64     `json:"listingId"`
	ListingTitle string    `json:"listingTitle"`
	ArtistID     int64     `json:"artistId"`
	ClientID     int64     `json:"clientId"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
