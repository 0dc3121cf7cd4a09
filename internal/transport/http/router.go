package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"tulu-service/internal/app"
	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
	"tulu-service/internal/tts"
)

// Services holds everything the router serves.
type Services struct {
	Catalog *app.CatalogService
	Lexicon *app.LexiconService
	Quizzes *app.QuizService
	Tutor   *app.TutorService
	// Speech may be nil; /api/tts then answers 503.
	Speech Speaker

	Log         *logger.Logger
	CORSOrigins string
}

// NewRouter wires the REST API under /api and the quiz websocket under /ws.
func NewRouter(s Services) http.Handler {
	if s.Log == nil {
		s.Log = logger.Nop()
	}
	r := mux.NewRouter()
	r.Use(corsMiddleware(s.CORSOrigins))

	rest := &RESTHandler{services: s, log: s.Log}
	ws := NewWSHandler(s.Quizzes, s.Log)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", rest.Root).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/series", rest.ListSeries).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/scenes", rest.ListScenes).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/scenes/{id}", rest.GetScene).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/word/{token}", rest.LookupWord).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/quizzes/{sceneId}", rest.DescribeQuiz).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tutor", rest.AskTutor).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/tutor/history/{sessionId}", rest.TutorHistory).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tts", rest.Speak).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/ws/quiz", ws.ServeWS).Methods(http.MethodGet)
	return r
}

func corsMiddleware(origins string) mux.MiddlewareFunc {
	if origins == "" {
		origins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// statusFor maps domain errors to a status and the detail shown to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSceneNotFound):
		return http.StatusNotFound, "Scene not found"
	case errors.Is(err, domain.ErrWordNotFound):
		return http.StatusNotFound, "Word not found"
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, domain.ErrQuizNotFound.Error()
	case errors.Is(err, domain.ErrInvalidQuiz):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, app.ErrEmptyQuestion):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, tts.ErrUnknownVoice):
		return http.StatusBadRequest, "unknown voice"
	case errors.Is(err, tts.ErrBadRequest):
		return http.StatusBadRequest, "text parameter required (max 500 characters)"
	case errors.Is(err, tts.ErrUnavailable):
		return http.StatusServiceUnavailable, "text-to-speech unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
