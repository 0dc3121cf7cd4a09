package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
	"tulu-service/internal/quiz"
)

// SessionRepository abstracts where running quiz sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *quiz.Session)
	Get(sessionID string) (*quiz.Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz definitions by scene id (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, sceneID string) (domain.Quiz, error)
}

// QuizService runs per-scene quiz sessions.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	timing   quiz.Timing
	sched    quiz.Scheduler
	newID    func() string
	log      *logger.Logger
}

// QuizOption tweaks a QuizService at construction.
type QuizOption func(*QuizService)

// WithTiming overrides the auto-advance and completion delays.
func WithTiming(t quiz.Timing) QuizOption {
	return func(s *QuizService) { s.timing = t }
}

// WithScheduler swaps the timer source, e.g. for a manual scheduler in tests.
func WithScheduler(sched quiz.Scheduler) QuizOption {
	return func(s *QuizService) { s.sched = sched }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) QuizOption {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, log *logger.Logger, opts ...QuizOption) *QuizService {
	if log == nil {
		log = logger.Nop()
	}
	s := &QuizService{
		sessions: store,
		quizzes:  quizzes,
		timing:   quiz.DefaultTiming,
		sched:    quiz.SystemScheduler,
		newID:    uuid.NewString,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Describe returns the quiz definition for a scene without starting a session.
func (s *QuizService) Describe(ctx context.Context, sceneID string) (domain.Quiz, error) {
	q, err := s.quizzes.GetQuiz(ctx, sceneID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(q.Questions) == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return q, nil
}

// Start opens a new session on the scene's quiz.
func (s *QuizService) Start(ctx context.Context, sceneID string) (quiz.View, error) {
	q, err := s.quizzes.GetQuiz(ctx, sceneID)
	if err != nil {
		return quiz.View{}, err
	}
	session, err := quiz.Start(s.newID(), q, s.timing, s.sched)
	if err != nil {
		s.log.Warn("refusing to start quiz", "scene_id", sceneID, "error", err)
		return quiz.View{}, err
	}
	s.sessions.Put(session)
	s.log.Info("quiz session started", "session_id", session.ID(), "scene_id", sceneID, "questions", len(q.Questions))
	return session.View(), nil
}

// Answer records an answer. accepted is false when the answer was a no-op
// (wrong phase, wrong question, out of range, already answered).
func (s *QuizService) Answer(_ context.Context, sessionID string, questionID, optionIndex int) (view quiz.View, accepted bool, err error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return quiz.View{}, false, domain.ErrSessionNotFound
	}
	view, accepted = session.SelectAnswer(questionID, optionIndex)
	if !accepted {
		s.log.Debug("answer ignored", "session_id", sessionID, "question_id", questionID, "option", optionIndex)
	}
	return view, accepted, nil
}

// View returns the current state of a session.
func (s *QuizService) View(_ context.Context, sessionID string) (quiz.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return quiz.View{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel of session views, including timer-driven
// transitions. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan quiz.View, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Close stops the session's pending transitions and forgets it. Closing an
// unknown session is not an error.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.log.Info("quiz session closed", "session_id", sessionID)
}

// IsRefusal reports whether err means a quiz could not be started for a scene.
func IsRefusal(err error) bool {
	return errors.Is(err, domain.ErrQuizNotFound) || errors.Is(err, domain.ErrInvalidQuiz)
}
