// Package post creates musician posts and handles like toggles.
package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"submerge/logger"
	"submerge/model"
	"submerge/repository"
)

var (
	// ErrNotMusician is returned when a non-musician tries to post.
	ErrNotMusician = errors.New("only musicians can create posts")

	// ErrValidation is returned for empty or oversized post content.
	ErrValidation = errors.New("validation failed")

	// ErrUpload is returned when the media upload fails. No post is written.
	ErrUpload = errors.New("media upload failed")
)

// Uploader stores a media asset and returns its public URL.
type Uploader interface {
	UploadMedia(ctx context.Context, mediaType, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// Notifier signals that the posts collection changed.
type Notifier func(ctx context.Context, reason string) error

// MediaUpload describes an asset attached to a new post.
type MediaUpload struct {
	Kind        model.PostType // image, video or audio
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Composer validates and writes posts.
type Composer struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	uploader Uploader
	notify   Notifier
}

// NewComposer creates a post composer. notify may be nil.
func NewComposer(posts repository.PostRepository, users repository.UserRepository, uploader Uploader, notify Notifier) *Composer {
	if notify == nil {
		notify = func(context.Context, string) error { return nil }
	}
	return &Composer{posts: posts, users: users, uploader: uploader, notify: notify}
}

// Create validates the actor and content, uploads the media asset when one
// is attached, and writes the post. An upload failure aborts the whole
// creation; no post row with a broken media reference is ever written.
func (c *Composer) Create(ctx context.Context, actor *model.Session, text string, media *MediaUpload) (*model.Post, error) {
	if !actor.IsMusician() {
		return nil, ErrNotMusician
	}

	text = strings.TrimSpace(text)
	if text == "" && media == nil {
		return nil, fmt.Errorf("%w: a post needs content or media", ErrValidation)
	}
	if len([]rune(text)) > model.MaxPostContentLen {
		return nil, fmt.Errorf("%w: content exceeds %d characters", ErrValidation, model.MaxPostContentLen)
	}

	post := &model.Post{
		ID:        uuid.NewString(),
		AuthorID:  actor.UID,
		Content:   text,
		Type:      model.PostText,
		Timestamp: time.Now(),
		Likes:     model.IDList{},
		Comments:  model.CommentList{},
	}

	if media != nil {
		switch media.Kind {
		case model.PostImage, model.PostVideo, model.PostAudio:
		default:
			return nil, fmt.Errorf("%w: unknown media kind %q", ErrValidation, media.Kind)
		}

		url, err := c.uploader.UploadMedia(ctx, string(media.Kind), media.Filename, media.Reader, media.Size, media.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpload, err)
		}

		post.Type = media.Kind
		switch media.Kind {
		case model.PostImage:
			post.ImageURL = url
		case model.PostVideo:
			post.VideoURL = url
		case model.PostAudio:
			post.AudioURL = url
		}
	}

	if err := c.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := c.users.IncrementPostsCount(ctx, actor.UID); err != nil {
		logger.Warn("failed to bump posts count",
			logger.Int64("author", actor.UID),
			logger.ErrorField(err))
	}
	if err := c.notify(ctx, "post created"); err != nil {
		logger.Warn("failed to publish post change", logger.ErrorField(err))
	}
	return post, nil
}

// ToggleLike flips uid's membership in the post's likes set. The operation
// is idempotent per state and commutative: toggling twice restores the
// original set.
func (c *Composer) ToggleLike(ctx context.Context, postID string, uid int64) (*model.Post, error) {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.Likes.Contains(uid) {
		next := make(model.IDList, 0, len(post.Likes)-1)
		for _, id := range post.Likes {
			if id != uid {
				next = append(next, id)
			}
		}
		post.Likes = next
	} else {
		post.Likes = append(post.Likes, uid)
	}

	if err := c.posts.UpdateLikes(ctx, postID, post.Likes); err != nil {
		return nil, err
	}
	if err := c.notify(ctx, "likes changed"); err != nil {
		logger.Warn("failed to publish post change", logger.ErrorField(err))
	}
	return post, nil
}
