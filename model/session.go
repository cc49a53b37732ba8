package model

// Session is the in-memory representation of an authenticated user: identity
// fields merged with the stored profile.
//
// When the profile row is missing (an orphaned credential), UserType stays
// empty and role checks must treat the session as neither role.
type Session struct {
	UID         int64    `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	UserType    UserType `json:"userType,omitempty"`
	About       string   `json:"about,omitempty"`

	Followers      []int64 `json:"followers,omitempty"`
	FollowersCount int     `json:"followersCount,omitempty"`
	PostsCount     int     `json:"postsCount,omitempty"`

	FollowingMusicians []int64  `json:"followingMusicians,omitempty"`
	FavoriteGenres     []string `json:"favoriteGenres,omitempty"`
}

// IsMusician reports whether the session belongs to a musician account.
func (s *Session) IsMusician() bool {
	return s != nil && s.UserType == TypeMusician
}

// IsRegularUser reports whether the session belongs to a regular user account.
func (s *Session) IsRegularUser() bool {
	return s != nil && s.UserType == TypeUser
}

// Merge overlays profile fields from u onto the session. Identity fields are
// kept; the merge is additive, matching a profile refresh.
func (s *Session) Merge(u *User) {
	if u == nil {
		return
	}
	if u.DisplayName != "" {
		s.DisplayName = u.DisplayName
	}
	if u.UserType != "" {
		s.UserType = u.UserType
	}
	if u.About != "" {
		s.About = u.About
	}
	if u.Followers != nil {
		s.Followers = u.Followers
	}
	if u.FollowersCount != 0 {
		s.FollowersCount = u.FollowersCount
	}
	if u.PostsCount != 0 {
		s.PostsCount = u.PostsCount
	}
	if u.FollowingMusicians != nil {
		s.FollowingMusicians = u.FollowingMusicians
	}
	if u.FavoriteGenres != nil {
		s.FavoriteGenres = u.FavoriteGenres
	}
}
