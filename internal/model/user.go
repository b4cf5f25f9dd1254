package model

import "time"

// User is an account record. Accounts are provisioned by the external
// identity service — this application only ever reads them, to attach an
// author to snippets. There are deliberately no credential fields here;
// passwords and tokens live with the identity service, never in this store.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the public projection of a user attached to snippets on read.
// This is the only shape of user data that ever leaves the API.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl"`
}

// PublicProfile returns the user's author projection.
func (u *User) PublicProfile() *Author {
	return &Author{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}
