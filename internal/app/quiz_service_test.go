package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tulu-service/internal/app"
	"tulu-service/internal/content"
	"tulu-service/internal/domain"
	"tulu-service/internal/infra/memory"
	"tulu-service/internal/quiz"
)

func TestStartAndPlayScene(t *testing.T) {
	ctx := context.Background()
	service, sched, _ := newTestService(t)

	view, err := service.Start(ctx, "am_scene1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if view.SessionID != "session-1" || view.Total != 4 || view.Phase != quiz.PhaseAnswering {
		t.Fatalf("unexpected initial view: %+v", view)
	}

	for _, choice := range []int{1, 1, 2, 0} {
		current, err := service.View(ctx, view.SessionID)
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		if _, ok, err := service.Answer(ctx, view.SessionID, current.Question.ID, choice); err != nil || !ok {
			t.Fatalf("answer rejected: ok=%v err=%v", ok, err)
		}
		sched.Advance(quiz.DefaultTiming.AdvanceDelay)
	}
	sched.Advance(quiz.DefaultTiming.CompletionDelay)

	final, _ := service.View(ctx, view.SessionID)
	if final.Phase != quiz.PhaseCompleted || *final.Score != 4 || final.Band != quiz.BandPerfect {
		t.Fatalf("expected perfect completion, got %+v", final)
	}
}

func TestSubscribeReceivesTimerTransitions(t *testing.T) {
	ctx := context.Background()
	service, sched, _ := newTestService(t)

	view, err := service.Start(ctx, "am_scene1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	ch, cancel, err := service.Subscribe(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()
	<-ch // initial snapshot

	if _, _, err := service.Answer(ctx, view.SessionID, view.Question.ID, 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if update := <-ch; update.Phase != quiz.PhaseExplaining {
		t.Fatalf("expected explaining, got %s", update.Phase)
	}

	sched.Advance(quiz.DefaultTiming.AdvanceDelay)
	update := <-ch
	if update.Phase != quiz.PhaseAnswering || update.Index != 1 {
		t.Fatalf("expected answering(1) after advance, got %s(%d)", update.Phase, update.Index)
	}
}

func TestStartRefusesMissingOrEmptyQuiz(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	if _, err := service.Start(ctx, "scene2"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if _, err := service.Start(ctx, "empty"); !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz, got %v", err)
	}
	if !app.IsRefusal(domain.ErrQuizNotFound) || app.IsRefusal(domain.ErrSessionNotFound) {
		t.Fatalf("IsRefusal misclassifies errors")
	}
}

func TestCloseForgetsSession(t *testing.T) {
	ctx := context.Background()
	service, sched, store := newTestService(t)

	view, _ := service.Start(ctx, "am_scene1")
	_, _, _ = service.Answer(ctx, view.SessionID, view.Question.ID, 1)
	service.Close(ctx, view.SessionID)
	service.Close(ctx, view.SessionID)

	if sched.Pending() != 0 {
		t.Fatalf("expected pending advance cancelled, got %d", sched.Pending())
	}
	if store.Len() != 0 {
		t.Fatalf("expected session deleted")
	}
	if _, _, err := service.Answer(ctx, view.SessionID, view.Question.ID, 1); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func newTestService(t *testing.T) (*app.QuizService, *quiz.ManualScheduler, *memory.SessionStore) {
	t.Helper()
	bundle, err := content.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	// a definition that slipped past validation in a custom store
	bundle.Quizzes["empty"] = domain.Quiz{SceneID: "empty"}

	sched := quiz.NewManualScheduler()
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewContentStore(bundle), 5*time.Minute)
	ids := 0
	service := app.NewQuizService(store, quizRepo, nil,
		app.WithScheduler(sched),
		app.WithIDs(func() string {
			ids++
			return "session-" + string(rune('0'+ids))
		}),
	)
	return service, sched, store
}
