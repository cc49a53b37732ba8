// Package feed builds display-ready feed snapshots from stored posts and
// streams them to websocket viewers.
package feed

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"submerge/cache"
	"submerge/logger"
	"submerge/model"
	"submerge/repository"
)

// State is the feed lifecycle phase. There is no terminal error state; a
// failed refresh keeps the previous snapshot and the next trigger retries.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLive    State = "live"
)

// ProfileSource caches resolved author profiles between snapshots.
type ProfileSource interface {
	Get(ctx context.Context, uid int64) (*model.User, error)
	Set(ctx context.Context, user *model.User) error
}

// Synchronizer keeps an in-memory feed snapshot in sync with the posts table
// and pushes personalized copies to connected clients. Triggers are the
// posts-changed channel and a ticker backstop.
type Synchronizer struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	profiles ProfileSource
	hub      *Hub
	tick     time.Duration

	mu       sync.RWMutex
	state    State
	snapshot []model.FeedPost

	genMu   sync.Mutex
	nextGen uint64
	applied uint64
}

// NewSynchronizer creates a feed synchronizer. hub and profiles may be nil.
func NewSynchronizer(posts repository.PostRepository, users repository.UserRepository, profiles ProfileSource, hub *Hub, tick time.Duration) *Synchronizer {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	s := &Synchronizer{
		posts:    posts,
		users:    users,
		profiles: profiles,
		hub:      hub,
		tick:     tick,
		state:    StateIdle,
	}
	if hub != nil {
		hub.onRegister = s.render
	}
	return s
}

// State returns the current lifecycle phase.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Run performs the initial load and then refreshes on post-change
// notifications and on the ticker until ctx is cancelled.
func (s *Synchronizer) Run(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		logger.Error("initial feed load failed", logger.ErrorField(err))
	}

	var notifications <-chan *redis.Message
	sub := cache.SubscribePostsChanged(ctx)
	if sub != nil {
		defer sub.Close()
		notifications = sub.Channel()
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-notifications:
			if !ok {
				// The subscription died. Tell viewers the live trigger is
				// gone and keep serving on the ticker backstop.
				logger.Warn("posts-changed subscription lost, falling back to ticker")
				s.notifySubscriptionLost()
				notifications = nil
				continue
			}
			logger.Debug("feed refresh triggered", logger.String("reason", msg.Payload))
			if err := s.Refresh(ctx); err != nil {
				logger.Error("feed refresh failed", logger.ErrorField(err))
			}
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				logger.Error("feed refresh failed", logger.ErrorField(err))
			}
		}
	}
}

// Refresh rebuilds the snapshot from the posts table. Results of an older
// refresh arriving after a newer one are discarded.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.genMu.Lock()
	s.nextGen++
	gen := s.nextGen
	s.genMu.Unlock()

	posts, err := s.posts.GetAll(ctx)
	if err != nil {
		return err
	}

	authors, err := s.resolveAuthors(ctx, posts)
	if err != nil {
		return err
	}

	feed := make([]model.FeedPost, 0, len(posts))
	for _, post := range posts {
		if post.AuthorID == 0 {
			continue
		}
		author, ok := authors[post.AuthorID]
		if !ok || !author.IsMusician() {
			continue
		}
		feed = append(feed, reshape(post, author))
	}
	sortByTimestamp(feed)

	s.genMu.Lock()
	if gen <= s.applied {
		s.genMu.Unlock()
		return nil
	}
	s.applied = gen
	s.genMu.Unlock()

	s.mu.Lock()
	s.snapshot = feed
	s.state = StateLive
	s.mu.Unlock()

	s.publish()
	return nil
}

// resolveAuthors loads the unique author set for a batch of posts, cache
// first, one repository round trip for the misses.
func (s *Synchronizer) resolveAuthors(ctx context.Context, posts []*model.Post) (map[int64]*model.User, error) {
	unique := make(map[int64]struct{})
	for _, post := range posts {
		if post.AuthorID != 0 {
			unique[post.AuthorID] = struct{}{}
		}
	}

	resolved := make(map[int64]*model.User, len(unique))
	missing := make([]int64, 0, len(unique))
	for uid := range unique {
		if s.profiles != nil {
			if user, err := s.profiles.Get(ctx, uid); err == nil && user != nil {
				resolved[uid] = user
				continue
			}
		}
		missing = append(missing, uid)
	}

	if len(missing) > 0 {
		fetched, err := s.users.GetUsersByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for uid, user := range fetched {
			resolved[uid] = user
			if s.profiles != nil {
				if err := s.profiles.Set(ctx, user); err != nil {
					logger.Warn("failed to cache author profile",
						logger.Int64("uid", uid),
						logger.ErrorField(err))
				}
			}
		}
	}
	return resolved, nil
}

func reshape(post *model.Post, author *model.User) model.FeedPost {
	likes := post.Likes
	if likes == nil {
		likes = model.IDList{}
	}
	comments := post.Comments
	if comments == nil {
		comments = model.CommentList{}
	}
	return model.FeedPost{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Author: model.FeedAuthor{
			ID:   author.ID,
			Name: author.DisplayName,
		},
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		VideoURL:  post.VideoURL,
		AudioURL:  post.AudioURL,
		Type:      post.Type,
		Timestamp: post.Timestamp,
		Likes:     likes,
		Comments:  comments,
	}
}

// sortByTimestamp orders newest first. A zero timestamp compares equal to
// everything, so records missing one keep their incoming relative order.
func sortByTimestamp(feed []model.FeedPost) {
	sort.SliceStable(feed, func(i, j int) bool {
		a, b := feed[i].Timestamp, feed[j].Timestamp
		if a.IsZero() || b.IsZero() {
			return false
		}
		return a.After(b)
	})
}

// SnapshotFor returns the current snapshot personalized for a viewer: posts
// by followed musicians come first, both groups keeping their sorted order.
func (s *Synchronizer) SnapshotFor(following []int64) []model.FeedPost {
	s.mu.RLock()
	base := s.snapshot
	s.mu.RUnlock()
	return partitionFollowed(base, following)
}

// partitionFollowed stable-partitions the feed so followed authors lead.
func partitionFollowed(feed []model.FeedPost, following []int64) []model.FeedPost {
	if len(following) == 0 {
		out := make([]model.FeedPost, len(feed))
		copy(out, feed)
		return out
	}
	followed := make(map[int64]struct{}, len(following))
	for _, id := range following {
		followed[id] = struct{}{}
	}
	out := make([]model.FeedPost, 0, len(feed))
	rest := make([]model.FeedPost, 0, len(feed))
	for _, post := range feed {
		if _, ok := followed[post.AuthorID]; ok {
			out = append(out, post)
		} else {
			rest = append(rest, post)
		}
	}
	return append(out, rest...)
}

// publish queues a personalized snapshot fan-out on the hub. The hub loop
// does the per-client rendering and delivery, so the send can never race a
// disconnect.
func (s *Synchronizer) publish() {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(s.render)
}

// render builds one client's snapshot frame.
func (s *Synchronizer) render(client *Client) []byte {
	msg := &WSMessage{
		Type:      MsgTypeSnapshot,
		Posts:     s.SnapshotFor(client.Following),
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal feed snapshot", logger.ErrorField(err))
		return nil
	}
	return data
}

// notifySubscriptionLost sends an error frame to every connected client.
// The feed itself stays up; only the live change trigger degraded.
func (s *Synchronizer) notifySubscriptionLost() {
	if s.hub == nil {
		return
	}
	msg := &WSMessage{
		Type:      MsgTypeError,
		Error:     "live updates interrupted, feed refreshes periodically",
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal feed error frame", logger.ErrorField(err))
		return
	}
	s.hub.Broadcast(func(*Client) []byte { return data })
}
