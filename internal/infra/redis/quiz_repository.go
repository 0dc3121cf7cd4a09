package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
)

// QuizLoader fetches a scene's quiz from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, sceneID string) (domain.Quiz, error)
}

// QuizRepository caches quiz definitions in Redis as JSON and falls back to a
// loader on cache miss. Stored as: SET quiz:{sceneID} {json} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	log    *logger.Logger
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration, log *logger.Logger) *QuizRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, sceneID string) (domain.Quiz, error) {
	if q, ok := r.fromCache(ctx, sceneID); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(sceneID, func() (interface{}, error) {
		// shared by every waiter; detached so one caller leaving does not fail the rest
		ctx := context.WithoutCancel(ctx)
		// another caller may have filled it while we waited
		if q, ok := r.fromCache(ctx, sceneID); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuiz(ctx, sceneID)
		if err != nil {
			return domain.Quiz{}, err
		}

		raw, err := json.Marshal(q)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := r.client.Set(ctx, r.key(sceneID), raw, r.ttlWithJitter()).Err(); err != nil {
			r.log.Warn("caching quiz failed", "scene_id", sceneID, "error", err)
		}
		return q, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached copy, e.g. after reseeding.
func (r *QuizRepository) Invalidate(ctx context.Context, sceneID string) error {
	return r.client.Del(ctx, r.key(sceneID)).Err()
}

func (r *QuizRepository) fromCache(ctx context.Context, sceneID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.key(sceneID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("reading cached quiz failed", "scene_id", sceneID, "error", err)
		}
		return domain.Quiz{}, false
	}
	var q domain.Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		r.log.Warn("discarding corrupt cached quiz", "scene_id", sceneID, "error", err)
		return domain.Quiz{}, false
	}
	return q, true
}

func (r *QuizRepository) key(sceneID string) string {
	return "quiz:" + sceneID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
