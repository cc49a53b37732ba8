// Package follow maintains the user→musician follow relation.
package follow

import (
	"context"
	"errors"
	"fmt"

	"submerge/logger"
	"submerge/model"
	"submerge/repository"
)

var (
	// ErrNotRegularUser is returned when a non-user account tries to follow.
	ErrNotRegularUser = errors.New("only regular users can follow musicians")

	// ErrNotMusician is returned when the follow target is not a musician.
	ErrNotMusician = errors.New("follow target is not a musician")
)

// Invalidator drops cached profiles after a follow mutation. May be nil.
type Invalidator func(ctx context.Context, uid int64) error

// Service updates follow sets on both sides of the relation.
type Service struct {
	users      repository.UserRepository
	invalidate Invalidator
}

// NewService creates a follow service.
func NewService(users repository.UserRepository, invalidate Invalidator) *Service {
	if invalidate == nil {
		invalidate = func(context.Context, int64) error { return nil }
	}
	return &Service{users: users, invalidate: invalidate}
}

// Follow adds musicianID to the actor's followed set and the actor to the
// musician's followers. Both writes are last-writer-wins; following an
// already-followed musician is a no-op.
func (s *Service) Follow(ctx context.Context, actor *model.Session, musicianID int64) error {
	return s.update(ctx, actor, musicianID, true)
}

// Unfollow removes the relation. Unfollowing a musician not in the set is a
// no-op.
func (s *Service) Unfollow(ctx context.Context, actor *model.Session, musicianID int64) error {
	return s.update(ctx, actor, musicianID, false)
}

func (s *Service) update(ctx context.Context, actor *model.Session, musicianID int64, add bool) error {
	if !actor.IsRegularUser() {
		return ErrNotRegularUser
	}

	musician, err := s.users.GetUserByID(ctx, musicianID)
	if err != nil {
		return fmt.Errorf("failed to load musician %d: %w", musicianID, err)
	}
	if musician == nil || !musician.IsMusician() {
		return ErrNotMusician
	}

	user, err := s.users.GetUserByID(ctx, actor.UID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", actor.UID, err)
	}
	if user == nil {
		return repository.ErrNotFound
	}

	following := toggleMembership(user.FollowingMusicians, musicianID, add)
	if err := s.users.SaveFollowing(ctx, user.ID, following); err != nil {
		return err
	}

	followers := toggleMembership(musician.Followers, user.ID, add)
	if err := s.users.SaveFollowers(ctx, musician.ID, followers); err != nil {
		return err
	}

	for _, uid := range []int64{user.ID, musician.ID} {
		if err := s.invalidate(ctx, uid); err != nil {
			logger.Warn("failed to invalidate cached profile",
				logger.Int64("uid", uid),
				logger.ErrorField(err))
		}
	}
	return nil
}

// toggleMembership returns the set with id present (add) or absent (!add).
// Already-satisfied states come back unchanged, which makes both operations
// idempotent.
func toggleMembership(set []int64, id int64, add bool) []int64 {
	present := false
	for _, v := range set {
		if v == id {
			present = true
			break
		}
	}
	if add == present {
		if set == nil {
			return []int64{}
		}
		return set
	}
	if add {
		return append(append([]int64(nil), set...), id)
	}
	out := make([]int64, 0, len(set)-1)
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
