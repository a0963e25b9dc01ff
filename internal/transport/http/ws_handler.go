package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"geoplay-service/internal/app"
	"geoplay-service/internal/domain"
	"geoplay-service/internal/geo"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WSHandler struct {
	service  *app.GameService
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type modePayload struct {
	Mode string `json:"mode"`
}

type difficultyPayload struct {
	Difficulty string `json:"difficulty"`
}

type regionPayload struct {
	Region string `json:"region"`
}

type readyPayload struct {
	Mode    string          `json:"mode"`
	Region  string          `json:"region"`
	Targets []domain.Target `json:"targets"`
}

type clickPayload struct {
	Name string `json:"name"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type joinedPayload struct {
	SessionID string          `json:"sessionId"`
	State     app.State       `json:"state"`
	Regions   []domain.Region `json:"regions"`
}

type soundPayload struct {
	Kind domain.SoundKind `json:"kind"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errUnsupported = errors.New("unsupported message type")

// ServeWS upgrades HTTP requests to websockets and binds each connection to
// one game session. The session id is taken from ?sessionId= or generated.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	logger := h.logger.With().Str("session", sessionID).Logger()
	ctx := r.Context()

	session, state := h.service.Join(ctx, sessionID)
	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(ctx, sessionID)

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		SessionID: sessionID,
		State:     state,
		Regions:   geo.Regions(),
	}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				for _, msg := range h.translate(ev) {
					select {
					case send <- msg:
					case <-writerDone:
						return
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	logger.Info().Msg("player joined")

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(ctx, session, inbound)
		if err != nil {
			reply = &outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
		if reply != nil && !enqueue(send, writerDone, *reply) {
			break
		}
	}

	logger.Info().Msg("player left")
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer goroutine. It reports false once the
// writer has stopped, so a dead connection cannot block the caller.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

// dispatch applies one client message. State changes reach the client
// through the session subscription, so most messages have no direct reply.
func (h *WSHandler) dispatch(ctx context.Context, session *app.Session, msg inboundMessage) (*outboundMessage[any], error) {
	switch msg.Type {
	case "setMode":
		var p modePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		mode, err := domain.ParseMode(p.Mode)
		if err != nil {
			return nil, err
		}
		session.SetMode(mode)
	case "setDifficulty":
		var p difficultyPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		level, err := domain.ParseDifficulty(p.Difficulty)
		if err != nil {
			return nil, err
		}
		return nil, session.SetDifficulty(level)
	case "selectRegion":
		var p regionPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		session.SelectRegion(p.Region)
	case "start":
		return nil, h.service.Start(ctx, session.ID())
	case "ready":
		var p readyPayload
		if len(msg.Payload) > 0 {
			if err := decodePayload(msg.Payload, &p); err != nil {
				return nil, err
			}
		}
		var mode domain.Mode
		if p.Mode != "" {
			parsed, err := domain.ParseMode(p.Mode)
			if err != nil {
				return nil, err
			}
			mode = parsed
		}
		return nil, h.service.Ready(ctx, session.ID(), mode, p.Region, p.Targets)
	case "click":
		var p clickPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		_, err := h.service.Click(ctx, session.ID(), p.Name)
		return nil, err
	case "pause":
		session.TogglePause()
	case "hint":
		return nil, session.RequestHint()
	case "toggleSound":
		session.ToggleSound()
	case "reset":
		session.Reset()
	case "leaderboard":
		return &outboundMessage[any]{Type: "leaderboard", Payload: h.service.Leaderboard()}, nil
	default:
		return nil, errUnsupported
	}
	return nil, nil
}

// translate maps a session event to the messages sent to the client.
func (h *WSHandler) translate(ev app.Event) []outboundMessage[any] {
	switch ev.Type {
	case app.EventState:
		return []outboundMessage[any]{{Type: "state", Payload: ev.State}}
	case app.EventSound:
		return []outboundMessage[any]{{Type: "sound", Payload: soundPayload{Kind: ev.Sound}}}
	case app.EventGameOver:
		return []outboundMessage[any]{
			{Type: "gameOver", Payload: ev.Result},
			{Type: "leaderboard", Payload: h.service.Leaderboard()},
		}
	}
	return nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}
