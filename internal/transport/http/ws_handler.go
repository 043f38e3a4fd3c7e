package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/core"
)

// WSHandler upgrades HTTP connections and bridges them to hub sessions.
// Each inbound text frame is one protocol command line.
type WSHandler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	wc := newWSConn(conn, r.RemoteAddr, h.log)
	defer wc.Close()

	sess := core.NewSession(uuid.NewString(), wc)
	h.hub.Register(sess)
	defer h.hub.Unregister(sess)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go wc.writeLoop(ctx)

	err = h.readLoop(ctx, conn, sess)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		if s := websocket.CloseStatus(err); s == -1 {
			h.log.Warn().Err(err).Str("session", sess.ID).Msg("ws connection closed with error")
		}
	}
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		line := strings.TrimSpace(string(data))
		h.hub.Submit(sess, line)
	}
}
