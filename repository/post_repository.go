package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"submerge/model"
)

// PostRepository defines the interface for post data access.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetAll(ctx context.Context) ([]*model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	UpdateLikes(ctx context.Context, id string, likes model.IDList) error
}

// gormPostRepository is the GORM implementation.
type gormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a GORM post repository.
func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

// Create inserts a post.
func (r *gormPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetAll returns every post, newest first. The feed transform re-sorts and
// filters; the store order is just a stable starting point.
func (r *gormPostRepository) GetAll(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return posts, nil
}

// GetByID returns one post. Returns ErrNotFound when no row matches.
func (r *gormPostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post %s: %w", id, err)
	}
	return &post, nil
}

// UpdateLikes overwrites a post's likes set. Last writer wins, which is the
// store's consistency model.
func (r *gormPostRepository) UpdateLikes(ctx context.Context, id string, likes model.IDList) error {
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("likes", likes).Error
	if err != nil {
		return fmt.Errorf("failed to update likes for post %s: %w", id, err)
	}
	return nil
}
