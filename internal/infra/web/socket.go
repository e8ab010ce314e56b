package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"chat-assistant/internal/infra/logging"
	"chat-assistant/internal/infra/metrics"
	"chat-assistant/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxFrame   = maxBodyBytes
)

// Frame types.
const (
	frameChat   = "chat"
	framePing   = "ping"
	framePong   = "pong"
	frameTyping = "typing"
	frameError  = "error"
)

type inboundFrame struct {
	Type      string          `json:"type"`
	Message   string          `json:"message,omitempty"`
	Context   json.RawMessage `json:"context,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

type outboundFrame struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// SocketHandler serves the duplex chat connection. Frames on one connection
// are handled strictly in arrival order by the read loop.
type SocketHandler struct {
	uc       usecase.ChatUseCase
	upgrader websocket.Upgrader
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewSocketHandler(uc usecase.ChatUseCase, origins []string, timeout time.Duration, logger *zerolog.Logger) *SocketHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SocketHandler{
		uc: uc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(origins),
		},
		timeout: timeout,
		log:     logger,
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(f outboundFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	metrics.IncWSFrame("out", f.Type)
	return c.conn.WriteJSON(f)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		logging.With(r.Context(), h.log).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	connID := ulid.Make().String()
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = connID
	}

	// The request context ends when Serve returns; the connection outlives
	// any per-request timeout middleware.
	ctx := logging.WithConnID(context.WithoutCancel(r.Context()), connID)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := logging.With(ctx, h.log)

	metrics.WSConnected()
	defer metrics.WSDisconnected()
	log.Info().Str("session_id", sessionID).Msg("websocket connected")

	c := &wsConn{conn: conn}
	defer conn.Close()

	conn.SetReadLimit(wsMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	go func() {
		t := time.NewTicker(wsPingPeriod)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := c.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, r, err := conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			break
		}
		// A frame that does not decode into inboundFrame is the client's
		// fault; the connection stays open.
		var in inboundFrame
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			log.Debug().Err(err).Msg("websocket frame rejected")
			if err := c.send(outboundFrame{Type: frameError, Error: "invalid frame"}); err != nil {
				break
			}
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		metrics.IncWSFrame("in", in.Type)

		if err := h.handleFrame(ctx, c, &sessionID, in); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
			break
		}
	}
	log.Info().Str("session_id", sessionID).Msg("websocket disconnected")
}

func (h *SocketHandler) handleFrame(ctx context.Context, c *wsConn, sessionID *string, in inboundFrame) error {
	switch in.Type {
	case framePing:
		return c.send(outboundFrame{Type: framePong})
	case frameChat:
		if in.SessionID != "" {
			*sessionID = in.SessionID
		}
		if err := c.send(outboundFrame{Type: frameTyping, SessionID: *sessionID}); err != nil {
			return err
		}
		rctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()
		reply, err := h.uc.Process(rctx, usecase.ChatRequest{
			Message:    in.Message,
			RawContext: in.Context,
			SessionID:  *sessionID,
			UserID:     logging.UserID(ctx),
		})
		if err != nil {
			status, msg := errorStatus(err)
			if status >= http.StatusInternalServerError {
				logging.With(ctx, h.log).Error().Err(err).Msg("websocket chat failed")
			}
			return c.send(outboundFrame{Type: frameError, Error: msg})
		}
		*sessionID = reply.SessionID
		return c.send(outboundFrame{Type: frameChat, Data: reply, SessionID: reply.SessionID})
	default:
		return c.send(outboundFrame{Type: frameError, Error: "unknown frame type"})
	}
}
