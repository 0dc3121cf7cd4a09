// Package quiz runs a per-scene multiple-choice quiz: one question at a time,
// an explanation after each answer, timed auto-advance and a final score.
package quiz

import (
	"fmt"
	"sync"

	"tulu-service/internal/domain"
)

// Phase is the state of a session.
type Phase string

const (
	PhaseAnswering  Phase = "answering"
	PhaseExplaining Phase = "explaining"
	PhaseCompleted  Phase = "completed"
)

// Session is a single student's run through a quiz.
//
// Transitions happen under mu. Every timed callback remembers the epoch it
// was scheduled in and does nothing once the epoch moved on or the session
// was closed, so a discarded session is never mutated by a late timer.
type Session struct {
	id     string
	quiz   domain.Quiz
	timing Timing
	sched  Scheduler

	mu          sync.Mutex
	phase       Phase
	current     int
	chosen      int
	answers     map[int]int
	running     int
	score       int
	epoch       uint64
	pending     Task
	closed      bool
	subscribers map[chan View]struct{}
}

// Start opens a session on the first question. A quiz without questions (or
// otherwise unplayable) is refused with domain.ErrInvalidQuiz. sched must not
// run callbacks synchronously from AfterFunc; nil means SystemScheduler.
func Start(id string, quiz domain.Quiz, timing Timing, sched Scheduler) (*Session, error) {
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("start quiz: %w", err)
	}
	if sched == nil {
		sched = SystemScheduler
	}
	return &Session{
		id:          id,
		quiz:        quiz,
		timing:      timing,
		sched:       sched,
		phase:       PhaseAnswering,
		chosen:      -1,
		answers:     make(map[int]int, len(quiz.Questions)),
		subscribers: make(map[chan View]struct{}),
	}, nil
}

func (s *Session) ID() string      { return s.id }
func (s *Session) SceneID() string { return s.quiz.SceneID }

// SelectAnswer records the answer for the current question and shows its
// explanation. It reports false, changing nothing, when the session is not
// waiting for an answer to questionID or optionIndex is out of range.
func (s *Session) SelectAnswer(questionID, optionIndex int) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.phase != PhaseAnswering {
		return s.viewLocked(), false
	}
	q := s.quiz.Questions[s.current]
	if q.ID != questionID || optionIndex < 0 || optionIndex >= len(q.Options) {
		return s.viewLocked(), false
	}
	if _, answered := s.answers[questionID]; answered {
		return s.viewLocked(), false
	}

	s.answers[questionID] = optionIndex
	if optionIndex == q.CorrectIndex {
		s.running++
	}
	s.phase = PhaseExplaining
	s.chosen = optionIndex

	s.epoch++
	epoch := s.epoch
	latest := Answer{QuestionID: questionID, OptionIndex: optionIndex}
	s.pending = s.sched.AfterFunc(s.timing.AdvanceDelay, func() { s.advance(epoch, latest) })

	return s.broadcastLocked(), true
}

func (s *Session) advance(epoch uint64, latest Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		return
	}
	s.pending = nil

	if s.current < len(s.quiz.Questions)-1 {
		s.current++
		s.phase = PhaseAnswering
		s.chosen = -1
		s.epoch++
		s.broadcastLocked()
		return
	}

	score := Score(s.quiz.Questions, s.answers, latest)
	s.epoch++
	next := s.epoch
	s.pending = s.sched.AfterFunc(s.timing.CompletionDelay, func() { s.complete(next, score) })
}

func (s *Session) complete(epoch uint64, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		return
	}
	s.pending = nil
	s.phase = PhaseCompleted
	s.score = score
	s.broadcastLocked()
}

// Close discards the session: pending transitions are cancelled and
// subscribers are released. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Answers returns a copy of the recorded answers keyed by question id.
func (s *Session) Answers() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Subscribe returns a channel of views, starting with the current one. The
// caller must invoke cancel; the channel is also closed when the session is.
func (s *Session) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() View {
	v := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// slow reader: drop its oldest view so the newest always lands
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}
