package post

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"submerge/internal/testutil"
	"submerge/model"
)

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) UploadMedia(_ context.Context, mediaType, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url + "/" + mediaType + "s/" + filename, nil
}

func newTestComposer(up *fakeUploader) (*Composer, *testutil.MemPostRepository, *testutil.MemUserRepository) {
	posts := testutil.NewMemPostRepository()
	users := testutil.NewMemUserRepository()
	return NewComposer(posts, users, up, nil), posts, users
}

func musicianSession(uid int64) *model.Session {
	return &model.Session{UID: uid, UserType: model.TypeMusician}
}

func TestCreateRejectsEmptyPost(t *testing.T) {
	up := &fakeUploader{url: "https://media.example"}
	c, posts, _ := newTestComposer(up)

	_, err := c.Create(context.Background(), musicianSession(1), "", nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, posts.Posts)
	assert.Zero(t, up.calls, "validation must run before any upload")

	_, err = c.Create(context.Background(), musicianSession(1), "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsNonMusician(t *testing.T) {
	c, posts, _ := newTestComposer(&fakeUploader{})

	for _, sess := range []*model.Session{
		{UID: 2, UserType: model.TypeUser},
		{UID: 3}, // role-less minimal session
		nil,
	} {
		_, err := c.Create(context.Background(), sess, "hello", nil)
		assert.ErrorIs(t, err, ErrNotMusician)
	}
	assert.Empty(t, posts.Posts)
}

func TestCreateTextPost(t *testing.T) {
	c, posts, users := newTestComposer(&fakeUploader{})
	users.Users[1] = &model.User{ID: 1, UserType: model.TypeMusician}

	created, err := c.Create(context.Background(), musicianSession(1), "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, model.PostText, created.Type)
	assert.Empty(t, created.ImageURL)
	assert.Empty(t, created.VideoURL)
	assert.Empty(t, created.AudioURL)
	assert.NotNil(t, created.Likes)
	assert.Empty(t, created.Likes)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Timestamp.IsZero())

	require.Len(t, posts.Posts, 1)
	assert.Equal(t, 1, users.Users[1].PostsCount)
}

func TestCreateRejectsOversizedContent(t *testing.T) {
	c, _, _ := newTestComposer(&fakeUploader{})

	_, err := c.Create(context.Background(), musicianSession(1), strings.Repeat("x", model.MaxPostContentLen+1), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateImagePostSetsOnlyImageURL(t *testing.T) {
	up := &fakeUploader{url: "https://media.example"}
	c, _, _ := newTestComposer(up)

	created, err := c.Create(context.Background(), musicianSession(1), "look", &MediaUpload{
		Kind:        model.PostImage,
		Filename:    "cover.jpg",
		ContentType: "image/jpeg",
		Reader:      strings.NewReader("bytes"),
		Size:        5,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PostImage, created.Type)
	assert.Equal(t, "https://media.example/images/cover.jpg", created.ImageURL)
	assert.Empty(t, created.VideoURL)
	assert.Empty(t, created.AudioURL)
}

func TestCreateAbortsOnUploadFailure(t *testing.T) {
	up := &fakeUploader{err: errors.New("storage down")}
	c, posts, _ := newTestComposer(up)

	_, err := c.Create(context.Background(), musicianSession(1), "look", &MediaUpload{
		Kind:   model.PostAudio,
		Reader: strings.NewReader("bytes"),
	})
	assert.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, posts.Posts, "no partial post after a failed upload")
}

func TestCreateRejectsUnknownMediaKind(t *testing.T) {
	c, _, _ := newTestComposer(&fakeUploader{})

	_, err := c.Create(context.Background(), musicianSession(1), "x", &MediaUpload{Kind: "gif"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggleLikeIsCommutative(t *testing.T) {
	c, posts, _ := newTestComposer(&fakeUploader{})
	require.NoError(t, posts.Create(context.Background(), &model.Post{ID: "p1", AuthorID: 1, Likes: model.IDList{9}}))

	after, err := c.ToggleLike(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, model.IDList{9, 5}, after.Likes)

	after, err = c.ToggleLike(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, model.IDList{9}, after.Likes)
}
