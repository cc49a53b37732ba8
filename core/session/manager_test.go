package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"submerge/core/auth"
	"submerge/internal/testutil"
	"submerge/model"
)

func newTestManager() (*Manager, *testutil.MemUserRepository, *testutil.MemSessionStore) {
	users := testutil.NewMemUserRepository()
	store := testutil.NewMemSessionStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewManager(users, tokens, store), users, store
}

func musicianParams() SignUpParams {
	return SignUpParams{
		Email:       "artist@example.com",
		Password:    "hunter22",
		DisplayName: "The Artist",
		UserType:    model.TypeMusician,
		About:       "makes waves",
	}
}

func listenerParams() SignUpParams {
	return SignUpParams{
		Email:       "fan@example.com",
		Password:    "hunter22",
		DisplayName: "A Fan",
		UserType:    model.TypeUser,
	}
}

func TestSignUpMusicianProfileShape(t *testing.T) {
	m, users, _ := newTestManager()

	sess, token, err := m.SignUp(context.Background(), musicianParams())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, sess.IsMusician())

	stored := users.Users[sess.UID]
	require.NotNil(t, stored)
	assert.Equal(t, model.TypeMusician, stored.UserType)
	assert.NotNil(t, stored.Followers)
	assert.Empty(t, stored.Followers)
	assert.Zero(t, stored.FollowersCount)
	assert.Zero(t, stored.PostsCount)
	// No regular-user fields on a musician profile.
	assert.Nil(t, stored.FollowingMusicians)
	assert.Nil(t, stored.FavoriteGenres)
}

func TestSignUpRegularUserProfileShape(t *testing.T) {
	m, users, _ := newTestManager()

	sess, _, err := m.SignUp(context.Background(), listenerParams())
	require.NoError(t, err)
	assert.True(t, sess.IsRegularUser())

	stored := users.Users[sess.UID]
	require.NotNil(t, stored)
	assert.NotNil(t, stored.FollowingMusicians)
	assert.Empty(t, stored.FollowingMusicians)
	assert.NotNil(t, stored.FavoriteGenres)
	assert.Empty(t, stored.FavoriteGenres)
	// No musician fields on a regular-user profile.
	assert.Nil(t, stored.Followers)
	assert.Zero(t, stored.FollowersCount)
}

func TestSignUpValidation(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	cases := []SignUpParams{
		{Email: "no-at-sign", Password: "hunter22", UserType: model.TypeUser},
		{Email: "a@b.c", Password: "short", UserType: model.TypeUser},
		{Email: "a@b.c", Password: "hunter22", UserType: "admin"},
		{Email: "a@b.c", Password: "hunter22", UserType: model.TypeMusician, About: "  "},
	}
	for _, p := range cases {
		_, _, err := m.SignUp(ctx, p)
		assert.ErrorIs(t, err, ErrValidation, "params %+v", p)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_, _, err := m.SignUp(ctx, listenerParams())
	require.NoError(t, err)

	_, _, err = m.SignUp(ctx, listenerParams())
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignUpKeepsCredentialWhenProfileWriteFails(t *testing.T) {
	m, users, _ := newTestManager()
	users.FailProfileWrite = true

	sess, token, err := m.SignUp(context.Background(), musicianParams())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Role-less session: musician-only actions must be denied downstream.
	assert.False(t, sess.IsMusician())
	assert.False(t, sess.IsRegularUser())

	// Recovery: complete the profile later.
	users.FailProfileWrite = false
	completed, err := m.CompleteProfile(context.Background(), sess.UID, musicianParams())
	require.NoError(t, err)
	assert.True(t, completed.IsMusician())
}

func TestSignInAndResolve(t *testing.T) {
	m, _, store := newTestManager()
	ctx := context.Background()

	created, _, err := m.SignUp(ctx, musicianParams())
	require.NoError(t, err)

	sess, token, err := m.SignIn(ctx, "artist@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.UID, sess.UID)
	assert.True(t, sess.IsMusician())

	// Resolve from the store.
	claims, err := auth.NewTokenIssuer("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	resolved, err := m.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, sess.UID, resolved.UID)

	// Resolve survives a cold store by re-hydrating from the repository.
	require.NoError(t, store.Delete(ctx, sess.UID))
	resolved, err = m.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.True(t, resolved.IsMusician())
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_, _, err := m.SignUp(ctx, musicianParams())
	require.NoError(t, err)

	_, _, err = m.SignIn(ctx, "artist@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = m.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveSynthesizesMinimalSession(t *testing.T) {
	m, _, _ := newTestManager()

	claims := &auth.Claims{UserID: 404, Email: "ghost@example.com"}
	sess, err := m.Resolve(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, int64(404), sess.UID)
	assert.Empty(t, sess.UserType)
	assert.False(t, sess.IsMusician())
}

func TestLogOutClearsSession(t *testing.T) {
	m, _, store := newTestManager()
	ctx := context.Background()

	sess, _, err := m.SignUp(ctx, listenerParams())
	require.NoError(t, err)
	require.NotNil(t, store.Sessions[sess.UID])

	require.NoError(t, m.LogOut(ctx, sess.UID))
	assert.Nil(t, store.Sessions[sess.UID])
}

func TestRefreshUserDataMergesProfile(t *testing.T) {
	m, users, _ := newTestManager()
	ctx := context.Background()

	sess, _, err := m.SignUp(ctx, listenerParams())
	require.NoError(t, err)

	// Another writer updates the profile behind the session's back.
	users.Users[sess.UID].FollowingMusicians = []int64{7, 9}
	users.Users[sess.UID].FavoriteGenres = []string{"Techno"}

	refreshed, err := m.RefreshUserData(ctx, sess.UID)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, refreshed.FollowingMusicians)
	assert.Equal(t, []string{"Techno"}, refreshed.FavoriteGenres)
	assert.Equal(t, sess.Email, refreshed.Email)
}
