package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tulu-service/internal/domain"
)

// QuizLoader fetches a scene's quiz from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, sceneID string) (domain.Quiz, error)
}

// QuizRepository caches quiz definitions with a TTL so repeated session starts
// on the same scene do not hit the store. Concurrent misses share one load.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, sceneID string) (domain.Quiz, error) {
	if q, ok := r.cached(sceneID); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(sceneID, func() (interface{}, error) {
		if q, ok := r.cached(sceneID); ok {
			return q, nil
		}
		// every waiter shares this load, so the first caller's cancel must not end it
		q, err := r.loader.LoadQuiz(context.WithoutCancel(ctx), sceneID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if ttl := r.ttlWithJitter(); ttl > 0 {
			r.mu.Lock()
			r.cache[sceneID] = cachedQuiz{quiz: q, expiresAt: r.clock().Add(ttl)}
			r.mu.Unlock()
		}
		return q, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(sceneID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[sceneID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% extra so entries loaded together do not expire together
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
