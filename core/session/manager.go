// Package session manages the authenticated user session: credential
// operations plus hydration of the combined identity/profile record.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"submerge/core/auth"
	"submerge/logger"
	"submerge/model"
	"submerge/repository"
)

var (
	// ErrInvalidCredentials is returned on sign-in with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailInUse is returned on sign-up with an already registered email.
	ErrEmailInUse = errors.New("email already in use")

	// ErrValidation is returned when sign-up fields fail client-side checks.
	ErrValidation = errors.New("validation failed")

	// ErrNoSession is returned when no session exists for the given uid.
	ErrNoSession = errors.New("no active session")
)

// Store is the session persistence used by the manager. Implemented by
// cache.SessionCache.
type Store interface {
	Get(ctx context.Context, uid int64) (*model.Session, error)
	Set(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, uid int64) error
}

// SignUpParams are the fields collected at registration.
type SignUpParams struct {
	Email       string
	Password    string
	DisplayName string
	UserType    model.UserType
	About       string
}

// Manager owns the process-wide session state. All writes go through it;
// other components read the session it resolves.
type Manager struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	store  Store
}

// NewManager creates a session manager.
func NewManager(users repository.UserRepository, tokens *auth.TokenIssuer, store Store) *Manager {
	return &Manager{users: users, tokens: tokens, store: store}
}

func (m *Manager) validateSignUp(p SignUpParams) error {
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(p.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if !p.UserType.Valid() {
		return fmt.Errorf("%w: account type must be user or musician", ErrValidation)
	}
	if p.UserType == model.TypeMusician && strings.TrimSpace(p.About) == "" {
		return fmt.Errorf("%w: musicians must provide an about line", ErrValidation)
	}
	return nil
}

// profileForRole shapes the role-dependent profile fields. Musicians carry
// followers/followersCount/postsCount, regular users carry
// followingMusicians/favoriteGenres; neither carries the other role's fields.
func profileForRole(p SignUpParams) *model.User {
	user := &model.User{
		Email:       p.Email,
		DisplayName: p.DisplayName,
		UserType:    p.UserType,
	}
	switch p.UserType {
	case model.TypeMusician:
		user.About = strings.TrimSpace(p.About)
		user.Followers = []int64{}
		user.FollowersCount = 0
		user.PostsCount = 0
	case model.TypeUser:
		user.FollowingMusicians = []int64{}
		user.FavoriteGenres = []string{}
	}
	return user
}

// SignUp creates the credential and then writes the role-shaped profile.
// The two writes are sequential and not transactional: when the profile
// write fails the credential is kept, a warning is logged and the caller
// gets a minimal role-less session. CompleteProfile can finish the job later.
func (m *Manager) SignUp(ctx context.Context, p SignUpParams) (*model.Session, string, error) {
	if err := m.validateSignUp(p); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return nil, "", err
	}

	credential := &model.User{Email: p.Email, PasswordHash: hash}
	uid, err := m.users.CreateUser(ctx, credential)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", fmt.Errorf("failed to create credential: %w", err)
	}

	sess := &model.Session{UID: uid, Email: p.Email}

	profile := profileForRole(p)
	profile.ID = uid
	if err := m.users.CreateProfile(ctx, profile); err != nil {
		// Orphaned credential: keep it, deny role-gated actions until the
		// profile is completed.
		logger.Warn("profile write failed after credential creation",
			logger.Int64("uid", uid),
			logger.ErrorField(err))
	} else {
		sess.Merge(profile)
	}

	token, err := m.tokens.Generate(uid, p.Email)
	if err != nil {
		return nil, "", err
	}
	if err := m.store.Set(ctx, sess); err != nil {
		logger.Warn("failed to cache session", logger.Int64("uid", uid), logger.ErrorField(err))
	}
	return sess, token, nil
}

// SignIn checks the credential and hydrates a session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*model.Session, string, error) {
	user, err := m.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	sess := sessionFromUser(user)
	token, err := m.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	if err := m.store.Set(ctx, sess); err != nil {
		logger.Warn("failed to cache session", logger.Int64("uid", user.ID), logger.ErrorField(err))
	}
	return sess, token, nil
}

// LogOut clears the stored session.
func (m *Manager) LogOut(ctx context.Context, uid int64) error {
	return m.store.Delete(ctx, uid)
}

// Resolve returns the session for a validated token's uid: the stored
// session when present, otherwise a fresh hydration. When even the profile
// row is gone a minimal role-less session is synthesized so downstream role
// checks deny musician-only actions.
func (m *Manager) Resolve(ctx context.Context, claims *auth.Claims) (*model.Session, error) {
	if sess, err := m.store.Get(ctx, claims.UserID); err == nil && sess != nil {
		return sess, nil
	} else if err != nil {
		logger.Warn("session store read failed", logger.Int64("uid", claims.UserID), logger.ErrorField(err))
	}

	user, err := m.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate session: %w", err)
	}
	var sess *model.Session
	if user == nil {
		sess = &model.Session{UID: claims.UserID, Email: claims.Email}
	} else {
		sess = sessionFromUser(user)
	}
	if err := m.store.Set(ctx, sess); err != nil {
		logger.Warn("failed to cache session", logger.Int64("uid", claims.UserID), logger.ErrorField(err))
	}
	return sess, nil
}

// RefreshUserData re-reads the profile and merges it over the stored
// session. The merge is additive, not a replacement.
func (m *Manager) RefreshUserData(ctx context.Context, uid int64) (*model.Session, error) {
	sess, err := m.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	user, err := m.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh user data: %w", err)
	}
	if user != nil {
		sess.Merge(user)
	}
	if err := m.store.Set(ctx, sess); err != nil {
		logger.Warn("failed to cache refreshed session", logger.Int64("uid", uid), logger.ErrorField(err))
	}
	return sess, nil
}

// CompleteProfile writes the role-shaped profile for a credential that has
// none, the recovery path for a sign-up whose profile write failed.
func (m *Manager) CompleteProfile(ctx context.Context, uid int64, p SignUpParams) (*model.Session, error) {
	user, err := m.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoSession
	}
	if user.UserType != "" {
		return nil, fmt.Errorf("%w: profile already exists", ErrValidation)
	}
	p.Email = user.Email
	if !p.UserType.Valid() {
		return nil, fmt.Errorf("%w: account type must be user or musician", ErrValidation)
	}
	if p.UserType == model.TypeMusician && strings.TrimSpace(p.About) == "" {
		return nil, fmt.Errorf("%w: musicians must provide an about line", ErrValidation)
	}

	profile := profileForRole(p)
	profile.ID = uid
	if err := m.users.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	sess := &model.Session{UID: uid, Email: user.Email}
	sess.Merge(profile)
	if err := m.store.Set(ctx, sess); err != nil {
		logger.Warn("failed to cache session", logger.Int64("uid", uid), logger.ErrorField(err))
	}
	return sess, nil
}

func sessionFromUser(u *model.User) *model.Session {
	sess := &model.Session{UID: u.ID, Email: u.Email}
	sess.Merge(u)
	return sess
}
