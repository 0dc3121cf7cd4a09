package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tulu-service/internal/config"
	"tulu-service/internal/logger"
	"tulu-service/internal/tutor"
)

func TestLookupAgainstSeedBundle(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("Merhaba!\n\nqwerty\n")

	if err := runLookup(context.Background(), config.Config{}, logger.Nop(), "", in, &out); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Merhaba!: ") || strings.Contains(got, "Merhaba!: Word not found") {
		t.Fatalf("expected a dictionary hit for merhaba, got:\n%s", got)
	}
	if !strings.Contains(got, "qwerty: Word not found in dictionary") {
		t.Fatalf("expected the not-found entry for an unknown word, got:\n%s", got)
	}
}

func TestLookupUnknownScene(t *testing.T) {
	err := runLookup(context.Background(), config.Config{}, logger.Nop(), "nope", strings.NewReader(""), &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected an error for an unknown scene")
	}
}

func TestAskEchoesSession(t *testing.T) {
	var sessions []any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		sessions = append(sessions, body["session_id"])
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "Evet!", "session_id": "s-1"})
	}))
	defer srv.Close()

	cfg := config.Config{}
	cfg.Client.APIURL = srv.URL
	var out bytes.Buffer
	if err := runAsk(context.Background(), cfg, logger.Nop(), strings.NewReader("merhaba?\n\nnasılsın?\n"), &out); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(sessions) != 2 || sessions[0] != nil || sessions[1] != "s-1" {
		t.Fatalf("unexpected session ids sent: %#v", sessions)
	}
	if !strings.Contains(out.String(), tutor.Greeting) {
		t.Fatalf("expected greeting first")
	}
}

func TestAskRequiresAPI(t *testing.T) {
	if err := runAsk(context.Background(), config.Config{}, logger.Nop(), strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected an error without an api url")
	}
}
