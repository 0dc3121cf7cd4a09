package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tulu-service/internal/quiz"
)

func TestWebSocketQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "am_scene1"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var started quiz.View
	readNext(t, conn, "session", &started)
	if started.Phase != quiz.PhaseAnswering || started.Total != 4 || started.Question == nil {
		t.Fatalf("unexpected session view: %+v", started)
	}
	if started.CorrectIndex != nil {
		t.Fatalf("session view leaks the correct index")
	}

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionId": started.Question.ID, "optionIndex": 1},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	var explaining quiz.View
	readNext(t, conn, "state", &explaining)
	if explaining.Phase != quiz.PhaseExplaining || explaining.Correct == nil || !*explaining.Correct {
		t.Fatalf("expected correct explanation, got %+v", explaining)
	}

	// same answer again is a no-op
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	readNext(t, conn, "ignored", nil)

	env.sched.Advance(quiz.DefaultTiming.AdvanceDelay)
	var next quiz.View
	readNext(t, conn, "state", &next)
	if next.Phase != quiz.PhaseAnswering || next.Index != 1 {
		t.Fatalf("expected answering(1) after the delay, got %s(%d)", next.Phase, next.Index)
	}

	if err := conn.WriteJSON(map[string]any{"type": "close"}); err != nil {
		t.Fatalf("write close: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for env.sessions.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not released after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketRefusesSceneWithoutQuiz(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "scene2"), nil)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Detail != "no quiz available" {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func wsURL(server *httptest.Server, sceneID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/quiz?sceneId=" + sceneID
}

func readNext(t *testing.T, conn *websocket.Conn, expect string, into any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	if into != nil {
		if err := json.Unmarshal(msg.Payload, into); err != nil {
			t.Fatalf("decode %s payload: %v", expect, err)
		}
	}
}

func TestEnqueueStopsOnceWriterIsGone(t *testing.T) {
	send := make(chan outboundMessage) // nobody drains it, like a writer that died
	done := make(chan struct{})
	writerDone := make(chan struct{})
	close(writerDone)

	result := make(chan bool, 1)
	go func() {
		result <- reply(send, done, writerDone, "ignored", ignoredPayload{Reason: "answer not accepted"})
	}()
	select {
	case ok := <-result:
		if ok {
			t.Fatalf("expected the reply to be dropped")
		}
	case <-time.After(time.Second):
		t.Fatalf("reply blocked after the writer stopped")
	}

	buffered := make(chan outboundMessage, 1)
	if !enqueue(buffered, done, make(chan struct{}), outboundMessage{Type: "state"}) {
		t.Fatalf("expected the message to be queued while the writer runs")
	}
	close(done)
	if enqueue(make(chan outboundMessage), done, make(chan struct{}), outboundMessage{Type: "state"}) {
		t.Fatalf("expected enqueue to give up once the connection is closing")
	}
}
