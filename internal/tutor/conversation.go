package tutor

import (
	"context"
	"strings"
	"sync"
	"time"

	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
)

// Apology replaces the tutor's answer when the service cannot be reached.
const Apology = "Sorry, I couldn't process your question. Please try again."

// Greeting opens every conversation.
const Greeting = "Merhaba! 👋 I'm Tulu, your Turkish language tutor. Ask me anything about Turkish words, grammar, pronunciation, or culture!"

// Asker is the remote tutor. sessionID is empty on the first turn.
type Asker interface {
	Ask(ctx context.Context, question, sessionID string) (domain.TutorReply, error)
}

// Conversation is the client side of a tutor chat: the message log and the
// session id the service handed out.
type Conversation struct {
	asker Asker
	log   *logger.Logger
	now   func() time.Time

	mu        sync.Mutex
	sessionID string
	messages  []domain.ChatMessage
}

func NewConversation(asker Asker, log *logger.Logger) *Conversation {
	if log == nil {
		log = logger.Nop()
	}
	c := &Conversation{asker: asker, log: log, now: time.Now}
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleAssistant, Text: Greeting, Timestamp: c.now()})
	return c
}

// Send asks question and returns the assistant message appended to the log.
// Transport failures produce the apology and leave the session id alone.
// Blank questions are ignored and return false.
func (c *Conversation) Send(ctx context.Context, question string) (domain.ChatMessage, bool) {
	if strings.TrimSpace(question) == "" {
		return domain.ChatMessage{}, false
	}

	c.mu.Lock()
	sessionID := c.sessionID
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleUser, Text: question, Timestamp: c.now()})
	c.mu.Unlock()

	reply, err := c.asker.Ask(ctx, question, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	answer := domain.ChatMessage{Role: domain.RoleAssistant, Timestamp: c.now()}
	if err != nil {
		c.log.Warn("tutor request failed", "session_id", sessionID, "error", err)
		answer.Text = Apology
	} else {
		answer.Text = reply.Answer
		if reply.SessionID != "" {
			c.sessionID = reply.SessionID
		}
	}
	c.messages = append(c.messages, answer)
	return answer, true
}

// SessionID is the id to echo on the next request; empty before the first
// successful answer.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages returns a copy of the conversation so far.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
