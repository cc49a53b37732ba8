package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"submerge/core/feed"
	"submerge/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedWebSocketHandler upgrades the connection and registers the viewer on
// the feed hub. The client receives the current snapshot immediately and a
// fresh one after every feed refresh.
func (h *APIHandler) FeedWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := &feed.Client{
		Hub:       h.feedHub,
		Conn:      conn,
		Send:      make(chan []byte, 16),
		UID:       sess.UID,
		Following: sess.FollowingMusicians,
	}
	h.feedHub.Register(client)

	// The request context ends with this handler; the pumps outlive it.
	go client.WritePump()
	go client.ReadPump(context.Background())
}
