package quiz_test

import (
	"errors"
	"testing"
	"time"

	"tulu-service/internal/content"
	"tulu-service/internal/domain"
	"tulu-service/internal/quiz"
)

func TestSceneQuizEndToEnd(t *testing.T) {
	q := seedQuiz(t, "am_scene1")
	if len(q.Questions) != 4 {
		t.Fatalf("expected 4 questions in am_scene1, got %d", len(q.Questions))
	}
	sched := quiz.NewManualScheduler()
	session := mustStart(t, q, sched)

	for i, choice := range []int{1, 1, 2, 0} {
		view := session.View()
		if view.Phase != quiz.PhaseAnswering || view.Index != i {
			t.Fatalf("step %d: expected answering(%d), got %s(%d)", i, i, view.Phase, view.Index)
		}
		view, ok := session.SelectAnswer(view.Question.ID, choice)
		if !ok {
			t.Fatalf("step %d: answer rejected", i)
		}
		if view.Phase != quiz.PhaseExplaining || view.Correct == nil || !*view.Correct {
			t.Fatalf("step %d: expected correct explanation, got %+v", i, view)
		}
		sched.Advance(quiz.DefaultTiming.AdvanceDelay)
	}

	if view := session.View(); view.Phase != quiz.PhaseExplaining {
		t.Fatalf("expected summary to wait for the completion delay, got %s", view.Phase)
	}
	sched.Advance(quiz.DefaultTiming.CompletionDelay)

	view := session.View()
	if view.Phase != quiz.PhaseCompleted || view.Score == nil || *view.Score != 4 {
		t.Fatalf("expected completed(4), got %+v", view)
	}
	if view.Band != quiz.BandPerfect {
		t.Fatalf("expected perfect band, got %s", view.Band)
	}
	if sched.Pending() != 0 {
		t.Fatalf("expected no pending tasks, got %d", sched.Pending())
	}
}

func TestAllCorrectIsPerfectForEverySeedQuiz(t *testing.T) {
	bundle, err := content.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	for sceneID, q := range bundle.Quizzes {
		sched := quiz.NewManualScheduler()
		session := mustStart(t, q, sched)
		for _, question := range q.Questions {
			if _, ok := session.SelectAnswer(question.ID, question.CorrectIndex); !ok {
				t.Fatalf("%s: answer to %d rejected", sceneID, question.ID)
			}
			sched.Advance(quiz.DefaultTiming.AdvanceDelay)
		}
		sched.Advance(quiz.DefaultTiming.CompletionDelay)
		view := session.View()
		if view.Score == nil || *view.Score != len(q.Questions) || view.Band != quiz.BandPerfect {
			t.Fatalf("%s: expected perfect score %d, got %+v", sceneID, len(q.Questions), view)
		}
	}
}

func TestReanswerIsNoOp(t *testing.T) {
	q := seedQuiz(t, "am_scene1")
	sched := quiz.NewManualScheduler()
	session := mustStart(t, q, sched)

	first := q.Questions[0]
	if _, ok := session.SelectAnswer(first.ID, 0); !ok {
		t.Fatalf("first answer rejected")
	}
	before := session.View()

	if _, ok := session.SelectAnswer(first.ID, first.CorrectIndex); ok {
		t.Fatalf("re-answer should be rejected")
	}
	after := session.View()
	if session.Answers()[first.ID] != 0 {
		t.Fatalf("answer changed to %d", session.Answers()[first.ID])
	}
	if after.RunningScore != before.RunningScore || *after.Chosen != 0 {
		t.Fatalf("re-answer changed state: before %+v after %+v", before, after)
	}

	// still rejected once the session moved past the question
	sched.Advance(quiz.DefaultTiming.AdvanceDelay)
	if _, ok := session.SelectAnswer(first.ID, first.CorrectIndex); ok {
		t.Fatalf("answer for a past question should be rejected")
	}
}

func TestMalformedAnswersAreRejected(t *testing.T) {
	q := seedQuiz(t, "am_scene1")
	session := mustStart(t, q, quiz.NewManualScheduler())

	if _, ok := session.SelectAnswer(q.Questions[1].ID, 0); ok {
		t.Fatalf("answer for a question that is not current should be rejected")
	}
	if _, ok := session.SelectAnswer(q.Questions[0].ID, 4); ok {
		t.Fatalf("out of range option should be rejected")
	}
	if _, ok := session.SelectAnswer(q.Questions[0].ID, -1); ok {
		t.Fatalf("negative option should be rejected")
	}
	if len(session.Answers()) != 0 || session.View().Phase != quiz.PhaseAnswering {
		t.Fatalf("rejected answers must not change the session")
	}
}

func TestCloseCancelsPendingTransition(t *testing.T) {
	q := seedQuiz(t, "am_scene1")
	sched := quiz.NewManualScheduler()
	session := mustStart(t, q, sched)

	updates, cancel := session.Subscribe()
	defer cancel()
	<-updates // initial view

	session.SelectAnswer(q.Questions[0].ID, 1)
	<-updates

	session.Close()
	session.Close()
	if sched.Pending() != 0 {
		t.Fatalf("expected pending advance to be stopped, got %d", sched.Pending())
	}
	sched.Advance(10 * time.Second)

	if view := session.View(); view.Index != 0 || !view.Closed {
		t.Fatalf("closed session must not advance, got %+v", view)
	}
	if _, ok := session.SelectAnswer(q.Questions[0].ID, 1); ok {
		t.Fatalf("closed session must reject answers")
	}
	if _, open := <-updates; open {
		t.Fatalf("expected subscription closed with the session")
	}
}

func TestLateTimerAfterCloseIsNoOp(t *testing.T) {
	q := seedQuiz(t, "am_scene1")
	late := &capturingScheduler{}
	session := mustStart(t, q, late)

	session.SelectAnswer(q.Questions[0].ID, 1)
	session.Close()
	late.fire() // timer that raced Close

	if view := session.View(); view.Index != 0 || view.Phase != quiz.PhaseExplaining {
		t.Fatalf("late timer mutated a closed session: %+v", view)
	}
}

func TestFinalAnswerCountsInScore(t *testing.T) {
	q := domain.Quiz{SceneID: "one", Questions: []domain.Question{
		{ID: 7, Prompt: "?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3},
	}}
	sched := quiz.NewManualScheduler()
	session := mustStart(t, q, sched)
	session.SelectAnswer(7, 3)
	sched.Advance(quiz.DefaultTiming.AdvanceDelay + quiz.DefaultTiming.CompletionDelay)

	view := session.View()
	if view.Score == nil || *view.Score != 1 {
		t.Fatalf("expected the last answer to be scored, got %+v", view)
	}
}

func TestStartRejectsEmptyQuiz(t *testing.T) {
	session, err := quiz.Start("s1", domain.Quiz{SceneID: "empty"}, quiz.DefaultTiming, quiz.NewManualScheduler())
	if !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}
	if session != nil {
		t.Fatalf("expected no session")
	}
}

func TestViewHidesAnswerWhileAnswering(t *testing.T) {
	session := mustStart(t, seedQuiz(t, "am_scene1"), quiz.NewManualScheduler())
	view := session.View()
	if view.CorrectIndex != nil || view.Chosen != nil || view.Options != nil || view.Explanation != "" {
		t.Fatalf("answering view leaks answer data: %+v", view)
	}
	if view.Question == nil || len(view.Question.Options) != 4 {
		t.Fatalf("expected question with 4 options, got %+v", view.Question)
	}
}

func mustStart(t *testing.T, q domain.Quiz, sched quiz.Scheduler) *quiz.Session {
	t.Helper()
	session, err := quiz.Start("session-1", q, quiz.DefaultTiming, sched)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return session
}

func seedQuiz(t *testing.T, sceneID string) domain.Quiz {
	t.Helper()
	bundle, err := content.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	q, ok := bundle.Quizzes[sceneID]
	if !ok {
		t.Fatalf("no seed quiz for %s", sceneID)
	}
	return q
}

// capturingScheduler hands out tasks whose Stop always loses the race.
type capturingScheduler struct {
	fns []func()
}

func (c *capturingScheduler) AfterFunc(_ time.Duration, f func()) quiz.Task {
	c.fns = append(c.fns, f)
	return lostRace{}
}

func (c *capturingScheduler) fire() {
	for _, f := range c.fns {
		f()
	}
}

type lostRace struct{}

func (lostRace) Stop() bool { return false }
