package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
	"tulu-service/internal/tts"
)

// Speaker produces mp3 audio for text.
type Speaker interface {
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

// RESTHandler serves the JSON API.
type RESTHandler struct {
	services Services
	log      *logger.Logger
}

func (h *RESTHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tulu API - Turkish Learning Platform"})
}

func (h *RESTHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.services.Catalog.ListSeries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if series == nil {
		series = []domain.Series{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (h *RESTHandler) ListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := h.services.Catalog.ListScenes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if scenes == nil {
		scenes = []domain.Scene{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes})
}

func (h *RESTHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	scene, err := h.services.Catalog.GetScene(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *RESTHandler) LookupWord(w http.ResponseWriter, r *http.Request) {
	entry, err := h.services.Lexicon.LookupWord(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type quizSummary struct {
	SceneID string `json:"scene_id"`
	Total   int    `json:"total"`
}

func (h *RESTHandler) DescribeQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.services.Quizzes.Describe(r.Context(), mux.Vars(r)["sceneId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizSummary{SceneID: q.SceneID, Total: len(q.Questions)})
}

type tutorRequest struct {
	Question  string  `json:"question"`
	SessionID *string `json:"session_id"`
}

func (h *RESTHandler) AskTutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	reply, err := h.services.Tutor.Ask(r.Context(), req.Question, sessionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *RESTHandler) TutorHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.services.Tutor.History(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if messages == nil {
		messages = []domain.ChatExchange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *RESTHandler) Speak(w http.ResponseWriter, r *http.Request) {
	if h.services.Speech == nil {
		h.fail(w, r, tts.ErrUnavailable)
		return
	}
	data, err := h.services.Speech.Speak(r.Context(), r.URL.Query().Get("text"), r.URL.Query().Get("voice"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", tts.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}

func (h *RESTHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, detail)
}
