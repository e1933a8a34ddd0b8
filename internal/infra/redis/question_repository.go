package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quizo-service/internal/app"
	"quizo-service/internal/domain"
)

// QuestionRepository caches a topic's raw questions in Redis and falls back
// to the loader on a miss.
// Questions are stored as JSON: SET questions:topic:{topic} [...] EX ttl
type QuestionRepository struct {
	client *redis.Client
	loader app.QuestionSource
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader app.QuestionSource, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	key := r.key(topic)
	if qs, ok := r.cached(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(topic, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := r.cached(ctx, key); ok {
			return qs, nil
		}

		qs, err := r.loader.ListQuestions(ctx, topic)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(qs)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, key, payload, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache questions for %q: %v", topic, err)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached copy of a topic.
func (r *QuestionRepository) Invalidate(ctx context.Context, topic string) {
	r.sf.Forget(topic)
	if err := r.client.Del(ctx, r.key(topic)).Err(); err != nil {
		log.Printf("invalidate questions for %q: %v", topic, err)
	}
}

func (r *QuestionRepository) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

func (r *QuestionRepository) key(topic string) string {
	return "questions:topic:" + topic
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
