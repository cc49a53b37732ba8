package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// PostType tells which media field (if any) a post carries.
type PostType string

const (
	PostText  PostType = "text"
	PostImage PostType = "image"
	PostVideo PostType = "video"
	PostAudio PostType = "audio"
)

// MaxPostContentLen bounds post text, enforced before any write.
const MaxPostContentLen = 500

// IDList is a set of user IDs stored as a JSON column.
type IDList []int64

// Scan implements sql.Scanner.
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = nil
		return nil
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains reports whether id is in the list.
func (l IDList) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Comment on a post. No authoring path exists yet; the list stays empty.
type Comment struct {
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentList is stored as a JSON column.
type CommentList []Comment

// Scan implements sql.Scanner.
func (l *CommentList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = nil
		return nil
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer.
func (l CommentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Post is a stored musician post. At most one of ImageURL/VideoURL/AudioURL
// is set and Type agrees with the populated field.
type Post struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	AuthorID  int64       `json:"authorId" gorm:"index;not null"`
	Content   string      `json:"content" gorm:"size:500"`
	ImageURL  string      `json:"imageUrl,omitempty" gorm:"size:512"`
	VideoURL  string      `json:"videoUrl,omitempty" gorm:"size:512"`
	AudioURL  string      `json:"audioUrl,omitempty" gorm:"size:512"`
	Type      PostType    `json:"type" gorm:"size:10;default:'text'"`
	Timestamp time.Time   `json:"timestamp" gorm:"autoCreateTime;index"`
	Likes     IDList      `json:"likes" gorm:"type:json"`
	Comments  CommentList `json:"comments" gorm:"type:json"`
}

// TableName sets the posts table name.
func (Post) TableName() string {
	return "posts"
}

// FeedAuthor is the author summary attached to a feed post.
type FeedAuthor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// FeedPost is the display-ready post record delivered to feed clients.
type FeedPost struct {
	ID        string      `json:"id"`
	AuthorID  int64       `json:"authorId"`
	Author    FeedAuthor  `json:"user"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	VideoURL  string      `json:"videoUrl,omitempty"`
	AudioURL  string      `json:"audioUrl,omitempty"`
	Type      PostType    `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Likes     IDList      `json:"likes"`
	Comments  CommentList `json:"comments"`
}
