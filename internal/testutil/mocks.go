// Package testutil provides in-memory fakes for repository and cache
// interfaces used across package tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"submerge/model"
	"submerge/repository"
)

// MemUserRepository is an in-memory repository.UserRepository.
type MemUserRepository struct {
	mu     sync.Mutex
	nextID int64
	Users  map[int64]*model.User

	// FailProfileWrite makes CreateProfile fail, simulating the gap between
	// credential creation and profile write.
	FailProfileWrite bool
}

// NewMemUserRepository creates an empty in-memory user repository.
func NewMemUserRepository() *MemUserRepository {
	return &MemUserRepository{Users: make(map[int64]*model.User)}
}

func (r *MemUserRepository) CreateUser(_ context.Context, user *model.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == user.Email {
			return 0, repository.ErrDuplicateUser
		}
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.Users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *MemUserRepository) CreateProfile(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailProfileWrite {
		return errProfileWrite
	}
	existing, ok := r.Users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *user
	updated.Email = existing.Email
	updated.PasswordHash = existing.PasswordHash
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.Users[user.ID] = &updated
	return nil
}

func (r *MemUserRepository) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *MemUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemUserRepository) GetUsersByIDs(_ context.Context, ids []int64) (map[int64]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.Users[id]; ok {
			copied := *u
			out[id] = &copied
		}
	}
	return out, nil
}

func (r *MemUserRepository) SaveFollowing(_ context.Context, userID int64, following []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.FollowingMusicians = append([]int64(nil), following...)
	return nil
}

func (r *MemUserRepository) SaveFollowers(_ context.Context, musicianID int64, followers []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[musicianID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Followers = append([]int64(nil), followers...)
	u.FollowersCount = len(followers)
	return nil
}

func (r *MemUserRepository) IncrementPostsCount(_ context.Context, musicianID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[musicianID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PostsCount++
	return nil
}

// MemPostRepository is an in-memory repository.PostRepository.
type MemPostRepository struct {
	mu    sync.Mutex
	Posts map[string]*model.Post
}

// NewMemPostRepository creates an empty in-memory post repository.
func NewMemPostRepository() *MemPostRepository {
	return &MemPostRepository{Posts: make(map[string]*model.Post)}
}

func (r *MemPostRepository) Create(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *post
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	r.Posts[stored.ID] = &stored
	return nil
}

func (r *MemPostRepository) GetAll(_ context.Context) ([]*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Post, 0, len(r.Posts))
	for _, p := range r.Posts {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *MemPostRepository) GetByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *MemPostRepository) UpdateLikes(_ context.Context, id string, likes model.IDList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Likes = append(model.IDList(nil), likes...)
	return nil
}

// MemSessionStore is an in-memory session store.
type MemSessionStore struct {
	mu       sync.Mutex
	Sessions map[int64]*model.Session
}

// NewMemSessionStore creates an empty in-memory session store.
func NewMemSessionStore() *MemSessionStore {
	return &MemSessionStore{Sessions: make(map[int64]*model.Session)}
}

func (s *MemSessionStore) Get(_ context.Context, uid int64) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[uid]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *MemSessionStore) Set(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.Sessions[sess.UID] = &copied
	return nil
}

func (s *MemSessionStore) Delete(_ context.Context, uid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, uid)
	return nil
}

type profileWriteError struct{}

func (profileWriteError) Error() string { return "profile write failed" }

var errProfileWrite = profileWriteError{}
