package profile

import "time"

type Profile struct {
	UserID      int64     `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpsertInput struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}

// Contact is what other modules need to reach a user.
type Contact struct {
	UserID      int64
	DisplayName string
	Email       string
}
