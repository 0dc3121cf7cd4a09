package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"tulu-service/internal/app"
	"tulu-service/internal/logger"
)

// WSHandler runs one quiz session per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		log:     log,
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
	QuestionID  *int `json:"questionId"`
	OptionIndex *int `json:"optionIndex"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ignoredPayload struct {
	Reason string `json:"reason"`
}

// ServeWS starts a session on ?sceneId= and streams its state. Scenes without
// a playable quiz are refused before the upgrade.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("sceneId")
	if sceneID == "" {
		writeError(w, http.StatusBadRequest, "missing sceneId")
		return
	}

	// the session outlives the request context, which ends on upgrade
	ctx := context.WithoutCancel(r.Context())
	started, err := h.service.Start(ctx, sceneID)
	if err != nil {
		if app.IsRefusal(err) {
			h.log.Info("quiz refused", "scene_id", sceneID, "reason", err)
		} else {
			h.log.Error("starting quiz failed", "scene_id", sceneID, "error", err)
		}
		status, detail := statusFor(err)
		writeError(w, status, detail)
		return
	}
	sessionID := started.SessionID
	defer h.service.Close(ctx, sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	log := h.log.With("session_id", sessionID, "scene_id", sceneID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: ignoredPayload{Reason: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not allow concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	send <- outboundMessage{Type: "session", Payload: started}

	go func() {
		defer close(updatesDone)
		first := true
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				if first {
					// the subscription opens with the view already sent as "session"
					first = false
					continue
				}
				if !enqueue(send, closeSignals, writerDone, outboundMessage{Type: "state", Payload: view}) {
					return
				}
			case <-closeSignals:
				return
			case <-writerDone:
				return
			}
		}
	}()

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == nil || payload.OptionIndex == nil {
				if !reply(send, closeSignals, writerDone, "ignored", ignoredPayload{Reason: "invalid answer payload"}) {
					break read
				}
				continue
			}
			_, accepted, err := h.service.Answer(ctx, sessionID, *payload.QuestionID, *payload.OptionIndex)
			if err != nil {
				reply(send, closeSignals, writerDone, "error", ignoredPayload{Reason: err.Error()})
				break read
			}
			if !accepted && !reply(send, closeSignals, writerDone, "ignored", ignoredPayload{Reason: "answer not accepted"}) {
				break read
			}
		case "close":
			break read
		default:
			if !reply(send, closeSignals, writerDone, "ignored", ignoredPayload{Reason: "unsupported message type"}) {
				break read
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func reply(send chan<- outboundMessage, done, writerDone <-chan struct{}, typ string, payload any) bool {
	return enqueue(send, done, writerDone, outboundMessage{Type: typ, Payload: payload})
}

// enqueue hands msg to the writer. It reports false once the connection is
// shutting down or the writer has stopped after a failed write.
func enqueue(send chan<- outboundMessage, done, writerDone <-chan struct{}, msg outboundMessage) bool {
	select {
	case send <- msg:
		return true
	case <-done:
		return false
	case <-writerDone:
		return false
	}
}
