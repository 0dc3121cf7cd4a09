package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"tulu-service/internal/content"
	"tulu-service/internal/domain"
	"tulu-service/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuizLoader: seedLoader(t)}
	repo := NewQuizRepository(client, loader, time.Minute, nil)

	q, err := repo.GetQuiz(context.Background(), "am_scene1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists("quiz:am_scene1") {
		t.Fatalf("expected quiz:am_scene1 in redis")
	}
	if ttl := mr.TTL("quiz:am_scene1"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("expected ttl with up to 10%% jitter, got %s", ttl)
	}

	// second call should hit cache, loader not incremented
	cached, err := repo.GetQuiz(context.Background(), "am_scene1")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if len(cached.Questions) != len(q.Questions) || cached.Questions[2].CorrectIndex != q.Questions[2].CorrectIndex {
		t.Fatalf("cached quiz differs from loaded quiz")
	}
}

func TestQuizRepositoryRecoversFromCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("quiz:am_scene1", "{not json")
	loader := &countingLoader{QuizLoader: seedLoader(t)}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute, nil)

	if _, err := repo.GetQuiz(context.Background(), "am_scene1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected reload from the store, calls=%d", loader.count())
	}

	if err := repo.Invalidate(context.Background(), "am_scene1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:am_scene1") {
		t.Fatalf("expected cache entry removed")
	}
}

type countingLoader struct {
	memory.QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, sceneID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, sceneID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func seedLoader(t *testing.T) memory.QuizLoader {
	t.Helper()
	bundle, err := content.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return memory.NewContentStore(bundle)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestQuizRepositoryFillsCacheDespiteCallerCancel(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewQuizRepository(newClient(mr), seedLoader(t), time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q, err := repo.GetQuiz(ctx, "am_scene1")
	if err != nil {
		t.Fatalf("shared load must not inherit the caller's cancellation, got %v", err)
	}
	if len(q.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(q.Questions))
	}
	if !mr.Exists("quiz:am_scene1") {
		t.Fatalf("expected the loaded quiz to be cached")
	}
}
