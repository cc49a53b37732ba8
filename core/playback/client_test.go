package playback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandForwardsWithBearerToken(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotBody = string(body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", time.Second)
	out, err := c.Command(context.Background(), "seek", json.RawMessage(`{"position":42}`))
	require.NoError(t, err)

	assert.Equal(t, "POST /player/seek", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.JSONEq(t, `{"position":42}`, gotBody)
	assert.JSONEq(t, `{"ok":true}`, string(out))
}

func TestUnknownCommandRejectedWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.Command(context.Background(), "selfdestruct", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.False(t, called)
}

func TestStateUsesGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/player/state", r.URL.Path)
		w.Write([]byte(`{"isPlaying":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	out, err := c.State(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"isPlaying":false}`, string(out))
}

func TestNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.Command(context.Background(), "play", nil)
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("", "", 0).Enabled())
	assert.True(t, NewClient("http://player.local", "", 0).Enabled())
}
