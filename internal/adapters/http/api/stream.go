package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/pkg/logger"
)

const (
	streamWriteWait   = 10 * time.Second
	streamCommandWait = 2 * time.Second
	streamSendBuffer  = 64
	streamReadLimit   = 64 << 10
)

// Stream message types. The server sends snapshot, event, ack, error and
// pong. Clients send transcript, delivery and ping.
const (
	msgSnapshot   = "snapshot"
	msgEvent      = "event"
	msgAck        = "ack"
	msgError      = "error"
	msgPong       = "pong"
	msgTranscript = "transcript"
	msgDelivery   = "delivery"
	msgPing       = "ping"
)

// StreamDependencies feeds the live game stream.
type StreamDependencies interface {
	Game(ctx context.Context, id string) (game.View, error)
	Subscribe(ctx context.Context, gameID string) (<-chan game.Event, func(), error)
}

type streamMessage struct {
	Type      string      `json:"type"`
	Ref       string      `json:"ref,omitempty"`
	View      *game.View  `json:"view,omitempty"`
	Event     *game.Event `json:"event,omitempty"`
	Duplicate bool        `json:"duplicate,omitempty"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// clientMessage is a command pushed over the stream. Ref is echoed back on
// the matching ack or error.
type clientMessage struct {
	Type     string                  `json:"type"`
	Ref      string                  `json:"ref"`
	PitchID  string                  `json:"pitch_id"`
	ChunkID  string                  `json:"chunk_id"`
	Text     string                  `json:"text"`
	Delivery *model.DeliveryAnalysis `json:"delivery"`
}

// StreamHandler serves the websocket feed of a game. The feed opens with a
// snapshot, then relays every game event until the game ends.
type StreamHandler struct {
	deps         StreamDependencies
	pitches      PitchDependencies
	limiter      *Limiter
	logger       logger.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies, pitches PitchDependencies, limiter *Limiter, log logger.Logger, pingInterval time.Duration) *StreamHandler {
	return &StreamHandler{
		deps:    deps,
		pitches: pitches,
		limiter: limiter,
		logger:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		pingInterval: pingInterval,
	}
}

// HandleStream handles GET /games/{id}/stream.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	gameID := r.PathValue("id")

	view, err := h.deps.Game(r.Context(), gameID)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	events, unsubscribe, err := h.deps.Subscribe(r.Context(), gameID)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "stream upgrade failed", logger.String("game_id", gameID), logger.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	c := &streamConn{
		handler: h,
		conn:    conn,
		gameID:  gameID,
		send:    make(chan streamMessage, streamSendBuffer),
		done:    make(chan struct{}),
	}
	c.send <- streamMessage{Type: msgSnapshot, View: &view}

	h.logger.Debug(ctx, "stream opened", logger.String("game_id", gameID))
	go c.readPump(ctx)
	c.writePump(events)
	h.logger.Debug(ctx, "stream closed", logger.String("game_id", gameID))
}

type streamConn struct {
	handler *StreamHandler
	conn    *websocket.Conn
	gameID  string
	send    chan streamMessage
	done    chan struct{}
}

func (c *streamConn) readPump(ctx context.Context) {
	defer close(c.done)

	pongWait := 2 * c.handler.pingInterval
	c.conn.SetReadLimit(streamReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.handler.logger.Debug(ctx, "stream read error", logger.String("game_id", c.gameID), logger.Error(err))
			}
			return
		}
		var m clientMessage
		if err := json.Unmarshal(data, &m); err != nil {
			c.fail("", WrapKind("api.stream", ErrBadRequest, err))
			continue
		}
		c.handle(ctx, m)
	}
}

func (c *streamConn) handle(ctx context.Context, m clientMessage) {
	const op = "api.stream"
	switch m.Type {
	case msgPing:
		c.reply(streamMessage{Type: msgPong, Ref: m.Ref})
		return
	case msgTranscript, msgDelivery:
	default:
		c.fail(m.Ref, WrapKind(op, ErrBadRequest, fmt.Errorf("unknown message type %q", m.Type)))
		return
	}

	if !c.handler.limiter.Allow(c.gameID) {
		c.fail(m.Ref, NewKind(op, ErrRateLimited))
		return
	}
	cctx, cancel := context.WithTimeout(ctx, streamCommandWait)
	defer cancel()

	var (
		dup bool
		err error
	)
	if m.Type == msgTranscript {
		dup, err = c.handler.pitches.PushTranscript(cctx, c.gameID, m.PitchID, m.ChunkID, m.Text)
	} else if m.Delivery == nil {
		err = WrapKind(op, ErrBadRequest, errors.New("missing delivery"))
	} else {
		err = c.handler.pitches.PushDelivery(cctx, c.gameID, m.PitchID, *m.Delivery)
	}
	if err != nil {
		c.fail(m.Ref, err)
		return
	}
	c.reply(streamMessage{Type: msgAck, Ref: m.Ref, Duplicate: dup})
}

// reply queues a message for the writer, dropping it if the writer is behind.
func (c *streamConn) reply(m streamMessage) {
	select {
	case c.send <- m:
	default:
	}
}

func (c *streamConn) fail(ref string, err error) {
	_, code := classify(err)
	c.reply(streamMessage{Type: msgError, Ref: ref, Code: code, Message: err.Error()})
}

func (c *streamConn) writePump(events <-chan game.Event) {
	ticker := time.NewTicker(c.handler.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				c.flush()
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
					time.Now().Add(streamWriteWait))
				return
			}
			if err := c.write(streamMessage{Type: msgEvent, Event: &e}); err != nil {
				return
			}
		case m := <-c.send:
			if err := c.write(m); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// flush writes whatever replies are still queued.
func (c *streamConn) flush() {
	for {
		select {
		case m := <-c.send:
			if err := c.write(m); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *streamConn) write(m streamMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return c.conn.WriteJSON(m)
}
