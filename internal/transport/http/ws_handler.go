package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"quizo-service/internal/app"
	"quizo-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	Option string `json:"option"`
}

type startedPayload struct {
	SessionID string `json:"sessionId"`
	Topic     string `json:"topic"`
	Loaded    int    `json:"loaded"`
	Rejected  int    `json:"rejected"`
}

type resultPayload struct {
	Attempt domain.AttemptRecord `json:"attempt"`
	Display string               `json:"display"`
	Synced  bool                 `json:"synced"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and plays one quiz session per
// connection. Closing the connection before completion aborts the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		http.Error(w, "missing topic", http.StatusBadRequest)
		return
	}
	player := playerFrom(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	started, err := h.service.Start(r.Context(), player, topic)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer func() {
		if err := h.service.Abort(context.Background(), started.SessionID, player.Email); err != nil {
			log.Printf("ws abort %s: %v", started.SessionID, err)
		}
	}()

	out := newOutbox(16)

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(out.done)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// Unblocks the read loop in play.
				_ = conn.Close()
				return
			}
		}
	}()

	if out.push("started", startedPayload{
		SessionID: started.SessionID,
		Topic:     topic,
		Loaded:    started.Report.Loaded,
		Rejected:  started.Rejected,
	}) && out.push("question", started.Question) {
		h.play(r.Context(), conn, out, started.SessionID, player.Email)
	}

	close(out.send)
	<-out.done
}

// outbox feeds the writer goroutine. push gives up once the writer has exited.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(size int) outbox {
	return outbox{send: make(chan outboundMessage[any], size), done: make(chan struct{})}
}

func (o outbox) push(msgType string, payload any) bool {
	select {
	case o.send <- outboundMessage[any]{Type: msgType, Payload: payload}:
		return true
	case <-o.done:
		return false
	}
}

func (h *WSHandler) play(ctx context.Context, conn *websocket.Conn, out outbox, sessionID, email string) {
	fail := func(err error) bool {
		return out.push("error", errorPayload{Message: err.Error()})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !fail(errors.New("invalid answer payload")) {
					return
				}
				continue
			}
			res, err := h.service.Answer(ctx, sessionID, email, payload.Option)
			if errors.Is(err, domain.ErrNoSelection) {
				if !fail(err) {
					return
				}
				continue
			}
			if err != nil {
				fail(err)
				return
			}
			if !out.push("answerResult", res.Advance) {
				return
			}
			if !res.Advance.Completed {
				if !out.push("question", *res.Next) {
					return
				}
				continue
			}
			out.push("result", resultPayload{
				Attempt: *res.Attempt,
				Display: domain.FormatScore(res.Attempt.OverallPoints),
				Synced:  res.Synced,
			})
			return
		case "question":
			q, err := h.service.Current(ctx, sessionID, email)
			if err != nil {
				fail(err)
				return
			}
			if !out.push("question", q) {
				return
			}
		case "abort":
			return
		default:
			if !fail(errors.New("unsupported message type")) {
				return
			}
		}
	}
}
