package notification

import "time"

const (
	TypeCommissionRequested = "commission_requested"
	TypeCommissionAccepted  = "commission_accepted"
	TypeCommissionDeclined  = "commission_declined"
)

// pollLimit caps one poll response; older items stay reachable by passing a
// later since.
const pollLimit = 50

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotifyParams struct {
	UserID  int64
	Type    string
	Title   string
	Message string
	Link    string
}

type PollResult struct {
	Items       []*Notification `json:"items"`
	UnreadCount int             `json:"unreadCount"`
}
