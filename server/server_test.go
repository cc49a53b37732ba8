package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"submerge/cache"
	"submerge/config"
	"submerge/core/auth"
	"submerge/core/discovery"
	"submerge/core/feed"
	"submerge/core/follow"
	"submerge/core/playback"
	"submerge/core/post"
	"submerge/core/session"
	"submerge/internal/testutil"
	"submerge/model"
)

type fakeUploader struct {
	calls int
}

func (u *fakeUploader) UploadMedia(_ context.Context, mediaType, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	u.calls++
	return fmt.Sprintf("https://cdn.example.com/%ss/%s", mediaType, filename), nil
}

type testEnv struct {
	router   http.Handler
	users    *testutil.MemUserRepository
	posts    *testutil.MemPostRepository
	uploader *fakeUploader
}

func newTestEnv(t *testing.T, discoveryURL string) *testEnv {
	t.Helper()

	users := testutil.NewMemUserRepository()
	posts := testutil.NewMemPostRepository()
	uploader := &fakeUploader{}

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	sessions := session.NewManager(users, tokens, testutil.NewMemSessionStore())
	composer := post.NewComposer(posts, users, uploader, nil)
	follows := follow.NewService(users, nil)

	discoveryClient := discovery.NewClient(discoveryURL, "submerge-test", time.Second)
	playbackClient := playback.NewClient("", "", time.Second)

	feedHub := feed.NewHub()
	feedSync := feed.NewSynchronizer(posts, users, nil, feedHub, time.Minute)

	handler := NewAPIHandler(&config.Config{}, tokens, sessions, composer, follows,
		discoveryClient, cache.NewTrackCache(time.Minute), feedSync, feedHub,
		playbackClient, uploader)

	return &testEnv{
		router:   NewRouter(handler),
		users:    users,
		posts:    posts,
		uploader: uploader,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email, userType string) (token string, uid int64) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       email,
		"password":    "secret123",
		"displayName": email,
		"userType":    userType,
		"about":       "bio",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string         `json:"token"`
		User  *model.Session `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, resp.User.UID
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t, "")

	token, uid := env.register(t, "artist@example.com", "musician")
	require.NotEmpty(t, token)

	rec := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, uid, me.UID)
	assert.Equal(t, model.TypeMusician, me.UserType)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "artist@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "artist@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t, "")
	env.register(t, "taken@example.com", "user")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       "taken@example.com",
		"password":    "secret123",
		"displayName": "other",
		"userType":    "user",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePostEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	musicianToken, _ := env.register(t, "artist@example.com", "musician")
	userToken, _ := env.register(t, "fan@example.com", "user")

	rec := env.do(t, http.MethodPost, "/api/posts", musicianToken, map[string]string{
		"content": "new single out now",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.PostText, created.Type)
	assert.Equal(t, "new single out now", created.Content)

	rec = env.do(t, http.MethodPost, "/api/posts", userToken, map[string]string{
		"content": "i am not a musician",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/posts", musicianToken, map[string]string{
		"content": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPostsReturnsFeedView(t *testing.T) {
	env := newTestEnv(t, "")
	musicianToken, _ := env.register(t, "artist@example.com", "musician")
	userToken, _ := env.register(t, "fan@example.com", "user")

	rec := env.do(t, http.MethodPost, "/api/posts", musicianToken, map[string]string{
		"content": "hello feed",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/posts", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Posts []model.FeedPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "hello feed", resp.Posts[0].Content)
	assert.Equal(t, "artist@example.com", resp.Posts[0].Author.Name)
}

func TestLikeEndpointToggles(t *testing.T) {
	env := newTestEnv(t, "")
	musicianToken, _ := env.register(t, "artist@example.com", "musician")
	userToken, uid := env.register(t, "fan@example.com", "user")

	rec := env.do(t, http.MethodPost, "/api/posts", musicianToken, map[string]string{
		"content": "like me",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, "/api/posts/"+created.ID+"/like", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var liked model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &liked))
	assert.True(t, liked.Likes.Contains(uid))

	rec = env.do(t, http.MethodPost, "/api/posts/"+created.ID+"/like", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &liked))
	assert.False(t, liked.Likes.Contains(uid))

	rec = env.do(t, http.MethodPost, "/api/posts/missing/like", userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	musicianToken, musicianID := env.register(t, "artist@example.com", "musician")
	userToken, uid := env.register(t, "fan@example.com", "user")

	path := fmt.Sprintf("/api/follow/%d", musicianID)

	rec := env.do(t, http.MethodPost, path, userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fan, err := env.users.GetUserByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Contains(t, fan.FollowingMusicians, musicianID)

	rec = env.do(t, http.MethodDelete, path, userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fan, err = env.users.GetUserByID(context.Background(), uid)
	require.NoError(t, err)
	assert.NotContains(t, fan.FollowingMusicians, musicianID)

	// Musicians cannot follow.
	rec = env.do(t, http.MethodPost, path, musicianToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"t1","title":"Deep Water","genre":"Electronic","user":{"name":"Nautilus"}},
			{"id":"t2","title":"Dry Land","genre":"Rock","user":{"name":"Shoreline"}}
		]}`))
	}))
	defer provider.Close()

	env := newTestEnv(t, provider.URL)

	rec := env.do(t, http.MethodGet, "/api/search?q=water", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Query   string        `json:"query"`
		Results []model.Track `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "water", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Deep Water", resp.Results[0].Title)
}

func TestTrendingCategoryEndpoint(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"t1","title":"Anthem","genre":"Rock","user":{"name":"Band"}}]}`))
	}))
	defer provider.Close()

	env := newTestEnv(t, provider.URL)

	rec := env.do(t, http.MethodGet, "/api/trending/rock", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/trending/nosuchcategory", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamEndpointRedirects(t *testing.T) {
	env := newTestEnv(t, "https://provider.example.com")

	rec := env.do(t, http.MethodGet, "/api/tracks/abc123/stream", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://provider.example.com/v1/tracks/abc123/stream", rec.Header().Get("Location"))
}

func TestPlaybackUnconfiguredReturns503(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.register(t, "fan@example.com", "user")

	rec := env.do(t, http.MethodPost, "/api/playback/play", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUploadRequiresMusician(t *testing.T) {
	env := newTestEnv(t, "")
	token, _ := env.register(t, "fan@example.com", "user")

	rec := env.do(t, http.MethodPost, "/api/upload", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, env.uploader.calls)
}
