package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
	"tulu-service/internal/tutor"
)

// HistoryLimit caps how many exchanges the history endpoint returns.
const HistoryLimit = 100

// ErrEmptyQuestion is returned for blank tutor questions.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ChatModel answers a question given the earlier exchanges of the session,
// oldest first.
type ChatModel interface {
	Answer(ctx context.Context, history []domain.ChatExchange, question string) (string, error)
}

// HistoryRepository persists tutor exchanges.
type HistoryRepository interface {
	Append(ctx context.Context, exchange domain.ChatExchange) error
	// Recent returns up to limit exchanges of the session, oldest first.
	Recent(ctx context.Context, sessionID string, limit int) ([]domain.ChatExchange, error)
}

// TutorService answers tutor questions and keeps per-session context.
type TutorService struct {
	model        ChatModel
	history      HistoryRepository
	contextTurns int
	newID        func() string
	now          func() time.Time
	log          *logger.Logger
}

// NewTutorService builds the service. model may be nil, in which case every
// question is answered from the keyword table.
func NewTutorService(model ChatModel, history HistoryRepository, contextTurns int, log *logger.Logger) *TutorService {
	if log == nil {
		log = logger.Nop()
	}
	return &TutorService{
		model:        model,
		history:      history,
		contextTurns: contextTurns,
		newID:        uuid.NewString,
		now:          time.Now,
		log:          log,
	}
}

// Ask answers question within sessionID, minting a session id when empty.
// Model failures fall back to canned answers and are never returned.
func (s *TutorService) Ask(ctx context.Context, question, sessionID string) (domain.TutorReply, error) {
	if strings.TrimSpace(question) == "" {
		return domain.TutorReply{}, ErrEmptyQuestion
	}
	if sessionID == "" {
		sessionID = s.newID()
	}
	log := s.log.With("session_id", sessionID)

	if s.model == nil {
		return domain.TutorReply{Answer: tutor.FallbackAnswer(question), SessionID: sessionID}, nil
	}

	var earlier []domain.ChatExchange
	if s.contextTurns > 0 {
		var err error
		earlier, err = s.history.Recent(ctx, sessionID, s.contextTurns)
		if err != nil {
			log.Warn("loading tutor context failed", "error", err)
			earlier = nil
		}
	}

	answer, err := s.model.Answer(ctx, earlier, question)
	if err != nil {
		log.Error("tutor model failed, using fallback", "error", err)
		return domain.TutorReply{Answer: tutor.FallbackAnswer(question), SessionID: sessionID}, nil
	}

	exchange := domain.ChatExchange{
		ID:        s.newID(),
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
		Timestamp: s.now().UTC(),
	}
	if err := s.history.Append(ctx, exchange); err != nil {
		log.Warn("saving tutor exchange failed", "error", err)
	}
	return domain.TutorReply{Answer: answer, SessionID: sessionID}, nil
}

// History returns up to HistoryLimit exchanges of a session ordered by time.
func (s *TutorService) History(ctx context.Context, sessionID string) ([]domain.ChatExchange, error) {
	return s.history.Recent(ctx, sessionID, HistoryLimit)
}
