package model

import "time"

// UserType is the account kind. Exactly one per account, fixed at sign-up.
type UserType string

const (
	TypeUser     UserType = "user"
	TypeMusician UserType = "musician"
)

// Valid reports whether t is one of the two known account kinds.
func (t UserType) Valid() bool {
	return t == TypeUser || t == TypeMusician
}

// User represents a user account: the auth credential plus the role-shaped
// profile fields. Musicians carry followers/followersCount/postsCount,
// regular users carry followingMusicians/favoriteGenres.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
	DisplayName  string    `json:"displayName"`
	UserType     UserType  `json:"userType"`
	About        string    `json:"about,omitempty"` // musician bio

	// Musician-only fields.
	Followers      []int64 `json:"followers,omitempty"`
	FollowersCount int     `json:"followersCount,omitempty"`
	PostsCount     int     `json:"postsCount,omitempty"`

	// Regular-user-only fields.
	FollowingMusicians []int64  `json:"followingMusicians,omitempty"`
	FavoriteGenres     []string `json:"favoriteGenres,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsMusician reports whether the account is a musician account.
func (u *User) IsMusician() bool {
	return u.UserType == TypeMusician
}
